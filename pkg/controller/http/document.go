package http

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/utils/safe"
)

// maxUploadSize bounds multipart document uploads
const maxUploadSize = 32 << 20

type documentRequest struct {
	Title       string `json:"title" validate:"max=200"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	Status      string `json:"status" validate:"omitempty,oneof=DRAFT APPROVED ARCHIVED"`
	Version     string `json:"version"`
}

func (req *documentRequest) toModel(id string) *model.Document {
	return &model.Document{
		ID:          id,
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		Owner:       req.Owner,
		Status:      types.DocumentStatus(req.Status),
		Version:     req.Version,
	}
}

func (s *Server) documentRoutes(r chi.Router) {
	r.Get("/", s.listDocuments)
	r.Post("/", s.createDocument)
	r.Get("/{documentID}", s.getDocument)
	r.Put("/{documentID}", s.updateDocument)
	r.Delete("/{documentID}", s.deleteDocument)
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.uc.Document.ListDocuments(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, docs)
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.uc.Document.GetDocument(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, doc)
}

// createDocument accepts a multipart form with a "file" part, or a JSON body for a
// document without file
func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var req documentRequest
		if err := decodeJSON(r, &req); err != nil {
			handleError(w, r, err)
			return
		}
		doc, err := s.uc.Document.CreateDocument(r.Context(), req.toModel(""))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, doc)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		handleError(w, r, goerr.Wrap(usecase.ErrValidation, "invalid multipart form", goerr.V("cause", err.Error())))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		handleError(w, r, goerr.Wrap(usecase.ErrValidation, "file part is required"))
		return
	}
	defer safe.Close(r.Context(), file)

	req := documentRequest{
		Title:       r.FormValue("title"),
		Category:    r.FormValue("category"),
		Description: r.FormValue("description"),
		Owner:       r.FormValue("owner"),
		Status:      r.FormValue("status"),
		Version:     r.FormValue("version"),
	}
	if err := validateRequest(&req); err != nil {
		handleError(w, r, err)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(header.Filename))
	}

	doc, err := s.uc.Document.UploadDocument(r.Context(), req.toModel(""), &usecase.Upload{
		FileName:    header.Filename,
		ContentType: contentType,
		Body:        file,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, doc)
}

func (s *Server) updateDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	doc, err := s.uc.Document.UpdateDocument(r.Context(), req.toModel(chi.URLParam(r, "documentID")))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, doc)
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.Document.DeleteDocument(r.Context(), chi.URLParam(r, "documentID")); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
}

// uploadHandler serves stored files. It is public like the static directory it replaces.
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	body, err := s.uc.Document.OpenUpload(r.Context(), name)
	if err != nil {
		if errors.Is(err, usecase.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		handleError(w, r, err)
		return
	}
	defer safe.Close(r.Context(), body)

	if contentType := mime.TypeByExtension(filepath.Ext(name)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	safe.Copy(r.Context(), w, body)
}
