package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

type controlRequest struct {
	Reference   string `json:"reference" validate:"required,max=50"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Owner       string `json:"owner"`
}

type soaRequest struct {
	ControlReference     string `json:"controlReference" validate:"required,max=50"`
	Applicable           bool   `json:"applicable"`
	Justification        string `json:"justification"`
	ImplementationStatus string `json:"implementationStatus" validate:"omitempty,oneof=NOT_IMPLEMENTED PARTIALLY_IMPLEMENTED IMPLEMENTED"`
	Evidence             string `json:"evidence"`
}

type gapRequest struct {
	ControlReference string `json:"controlReference"`
	Description      string `json:"description" validate:"required"`
	Severity         string `json:"severity"`
	Status           string `json:"status" validate:"omitempty,oneof=OPEN IN_PROGRESS CLOSED"`
	Owner            string `json:"owner"`
	RiskID           string `json:"riskId"`
	DueDate          string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
}

func (s *Server) controlRoutes(r chi.Router) {
	r.Get("/", s.listControls)
	r.Post("/", s.createControl)
	r.Get("/{id}", s.getControl)
	r.Put("/{id}", s.updateControl)
	r.Delete("/{id}", s.deleteControl)
}

func (s *Server) listControls(w http.ResponseWriter, r *http.Request) {
	controls, err := s.uc.Control.ListControls(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, controls)
}

func (s *Server) getControl(w http.ResponseWriter, r *http.Request) {
	control, err := s.uc.Control.GetControl(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, control)
}

func (s *Server) createControl(w http.ResponseWriter, r *http.Request) {
	var req controlRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	control, err := s.uc.Control.CreateControl(r.Context(), &model.Control{
		Reference:   req.Reference,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Owner:       req.Owner,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, control)
}

func (s *Server) updateControl(w http.ResponseWriter, r *http.Request) {
	var req controlRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	control, err := s.uc.Control.UpdateControl(r.Context(), &model.Control{
		ID:          chi.URLParam(r, "id"),
		Reference:   req.Reference,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Owner:       req.Owner,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, control)
}

func (s *Server) deleteControl(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.Control.DeleteControl(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) soaRoutes(r chi.Router) {
	r.Get("/", s.listSoA)
	r.Post("/", s.createSoA)
	r.Get("/{id}", s.getSoA)
	r.Put("/{id}", s.updateSoA)
	r.Delete("/{id}", s.deleteSoA)
}

func (req *soaRequest) toModel(id string) *model.SoAEntry {
	return &model.SoAEntry{
		ID:                   id,
		ControlReference:     req.ControlReference,
		Applicable:           req.Applicable,
		Justification:        req.Justification,
		ImplementationStatus: types.ImplementationStatus(req.ImplementationStatus),
		Evidence:             req.Evidence,
	}
}

func (s *Server) listSoA(w http.ResponseWriter, r *http.Request) {
	entries, err := s.uc.SoA.ListEntries(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, entries)
}

func (s *Server) getSoA(w http.ResponseWriter, r *http.Request) {
	entry, err := s.uc.SoA.GetEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, entry)
}

func (s *Server) createSoA(w http.ResponseWriter, r *http.Request) {
	var req soaRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	entry, err := s.uc.SoA.CreateEntry(r.Context(), req.toModel(""))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, entry)
}

func (s *Server) updateSoA(w http.ResponseWriter, r *http.Request) {
	var req soaRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	entry, err := s.uc.SoA.UpdateEntry(r.Context(), req.toModel(chi.URLParam(r, "id")))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, entry)
}

func (s *Server) deleteSoA(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.SoA.DeleteEntry(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) gapRoutes(r chi.Router) {
	r.Get("/", s.listGaps)
	r.Post("/", s.createGap)
	r.Get("/{id}", s.getGap)
	r.Put("/{id}", s.updateGap)
	r.Delete("/{id}", s.deleteGap)
}

func (req *gapRequest) toModel(id string) *model.Gap {
	return &model.Gap{
		ID:               id,
		ControlReference: req.ControlReference,
		Description:      req.Description,
		Severity:         req.Severity,
		Status:           types.GapStatus(req.Status),
		Owner:            req.Owner,
		RiskID:           req.RiskID,
		DueDate:          req.DueDate,
	}
}

func (s *Server) listGaps(w http.ResponseWriter, r *http.Request) {
	gaps, err := s.uc.Gap.ListGaps(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, gaps)
}

func (s *Server) getGap(w http.ResponseWriter, r *http.Request) {
	gap, err := s.uc.Gap.GetGap(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, gap)
}

func (s *Server) createGap(w http.ResponseWriter, r *http.Request) {
	var req gapRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	gap, err := s.uc.Gap.CreateGap(r.Context(), req.toModel(""))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, gap)
}

func (s *Server) updateGap(w http.ResponseWriter, r *http.Request) {
	var req gapRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	gap, err := s.uc.Gap.UpdateGap(r.Context(), req.toModel(chi.URLParam(r, "id")))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, gap)
}

func (s *Server) deleteGap(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.Gap.DeleteGap(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
}
