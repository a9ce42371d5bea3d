package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

type taskRequest struct {
	RiskID      string `json:"riskId" validate:"required"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	Assignee    string `json:"assignee"`
	Status      string `json:"status" validate:"omitempty,oneof=TODO IN_PROGRESS BLOCKED COMPLETED"`
	DueDate     string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
}

func (req *taskRequest) toModel(id model.TaskID) *model.Task {
	return &model.Task{
		ID:          id,
		RiskID:      req.RiskID,
		Title:       req.Title,
		Description: req.Description,
		Assignee:    req.Assignee,
		Status:      types.TaskStatus(req.Status),
		DueDate:     req.DueDate,
	}
}

func (s *Server) taskRoutes(r chi.Router) {
	r.Get("/", s.listTasks)
	r.Post("/", s.createTask)
	r.Get("/{taskID}", s.getTask)
	r.Put("/{taskID}", s.updateTask)
	r.Delete("/{taskID}", s.deleteTask)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.uc.Task.ListTasks(r.Context(), r.URL.Query().Get("riskId"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, tasks)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.uc.Task.GetTask(r.Context(), model.TaskID(chi.URLParam(r, "taskID")))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, task)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	task, err := s.uc.Task.CreateTask(r.Context(), req.toModel(""))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, task)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	task, err := s.uc.Task.UpdateTask(r.Context(), req.toModel(model.TaskID(chi.URLParam(r, "taskID"))))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, task)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.Task.DeleteTask(r.Context(), model.TaskID(chi.URLParam(r, "taskID"))); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
}
