package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model/auth"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/usecase"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8,max=72"`
	Name       string `json:"name" validate:"required,max=100"`
	Role       string `json:"role" validate:"omitempty,oneof=admin risk_manager risk_owner risk_identifier auditor"`
	Department string `json:"department" validate:"max=100"`
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.uc.User.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, result)
}

// registerHandler creates an account. Only the first account may be created without session.
func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	user, err := s.uc.User.Register(r.Context(), auth.SessionFromContext(r.Context()), usecase.RegisterInput{
		Email:      req.Email,
		Password:   req.Password,
		Name:       req.Name,
		Role:       types.Role(req.Role),
		Department: req.Department,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, user)
}

func (s *Server) meHandler(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		handleError(w, r, goerr.Wrap(usecase.ErrUnauthorized, "no session"))
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, session)
}

func (s *Server) userRoutes(r chi.Router) {
	r.Get("/", s.listUsers)
	r.Post("/", s.registerHandler)
	r.Get("/departments", s.listDepartments)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.uc.User.ListUsers(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, users)
}

func (s *Server) listDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := s.uc.User.ListDepartments(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, departments)
}
