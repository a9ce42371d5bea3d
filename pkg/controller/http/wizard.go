package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/model/auth"
	"github.com/secmon-lab/themis/pkg/domain/types"
	"github.com/secmon-lab/themis/pkg/usecase"
	"github.com/secmon-lab/themis/pkg/utils/errutil"
	"github.com/secmon-lab/themis/pkg/utils/logging"
	"github.com/secmon-lab/themis/pkg/wizard"
)

type openWizardRequest struct {
	EditRiskID string `json:"editRiskId"`
	FocusArea  string `json:"focusArea" validate:"omitempty,max=50"`
}

type openWizardResponse struct {
	ID   string       `json:"id"`
	View *wizard.View `json:"view"`
}

type fieldsRequest struct {
	Fields map[string]string `json:"fields" validate:"required,min=1"`
}

type wizardTaskRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	Assignee    string `json:"assignee"`
	Status      string `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS BLOCKED COMPLETED"`
	DueDate     string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
}

// transitionResponse carries the wizard state also when a transition is rejected so that
// the frontend can show the notice
type transitionResponse struct {
	Error  string         `json:"error,omitempty"`
	Result *wizard.Result `json:"result"`
}

func (s *Server) wizardRoutes(r chi.Router) {
	r.Post("/", s.openWizard)
	r.Route("/{wizardID}", func(r chi.Router) {
		r.Get("/", s.getWizard)
		r.Delete("/", s.closeWizard)
		r.Patch("/fields", s.setWizardFields)
		r.Post("/risk-id", s.regenerateRiskID)
		r.Post("/tasks", s.addWizardTask)
		r.Delete("/tasks/{taskID}", s.removeWizardTask)
		r.Post("/next", s.transition(s.uc.Wizard.Next))
		r.Post("/previous", s.transition(s.uc.Wizard.Previous))
		r.Post("/save", s.transition(s.uc.Wizard.Save))
		r.Post("/submit", s.transition(s.uc.Wizard.Submit))
	})
}

func (s *Server) openWizard(w http.ResponseWriter, r *http.Request) {
	var req openWizardRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	id, view, err := s.uc.Wizard.Open(r.Context(), auth.SessionFromContext(r.Context()), usecase.OpenInput{
		EditRiskID: req.EditRiskID,
		FocusArea:  req.FocusArea,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, openWizardResponse{ID: id, View: view})
}

func (s *Server) getWizard(w http.ResponseWriter, r *http.Request) {
	view, err := s.uc.Wizard.Get(r.Context(), auth.SessionFromContext(r.Context()), chi.URLParam(r, "wizardID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, view)
}

func (s *Server) closeWizard(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.Wizard.Close(r.Context(), auth.SessionFromContext(r.Context()), chi.URLParam(r, "wizardID")); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) setWizardFields(w http.ResponseWriter, r *http.Request) {
	var req fieldsRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	view, err := s.uc.Wizard.SetFields(r.Context(), auth.SessionFromContext(r.Context()), chi.URLParam(r, "wizardID"), req.Fields)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, view)
}

func (s *Server) regenerateRiskID(w http.ResponseWriter, r *http.Request) {
	view, err := s.uc.Wizard.RegenerateRiskID(r.Context(), auth.SessionFromContext(r.Context()), chi.URLParam(r, "wizardID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, view)
}

func (s *Server) addWizardTask(w http.ResponseWriter, r *http.Request) {
	var req wizardTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	task, err := s.uc.Wizard.AddTask(r.Context(), auth.SessionFromContext(r.Context()), chi.URLParam(r, "wizardID"), &model.Task{
		Title:       req.Title,
		Description: req.Description,
		Assignee:    req.Assignee,
		Status:      types.TaskStatus(req.Status),
		DueDate:     req.DueDate,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, task)
}

func (s *Server) removeWizardTask(w http.ResponseWriter, r *http.Request) {
	err := s.uc.Wizard.RemoveTask(r.Context(), auth.SessionFromContext(r.Context()),
		chi.URLParam(r, "wizardID"), model.TaskID(chi.URLParam(r, "taskID")))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
}

type transitionFunc func(ctx context.Context, session *auth.Session, id string) (*wizard.Result, error)

// transition runs a step transition. Rejected transitions still return the wizard result.
func (s *Server) transition(fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		result, err := fn(ctx, auth.SessionFromContext(ctx), chi.URLParam(r, "wizardID"))
		if err == nil {
			writeJSON(ctx, w, http.StatusOK, transitionResponse{Result: result})
			return
		}
		if result == nil {
			handleError(w, r, err)
			return
		}

		status := statusOf(err)
		if status >= http.StatusInternalServerError {
			_ = errutil.Handle(ctx, err, "wizard transition failed")
		} else {
			logging.From(ctx).Info("wizard transition rejected", "error", err.Error(), "step", result.Step)
		}
		writeJSON(ctx, w, status, transitionResponse{Error: err.Error(), Result: result})
	}
}
