package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/usecase"
)

func (s *Server) riskRoutes(r chi.Router) {
	r.Get("/", s.listRisks)
	r.Post("/", s.saveRisk)
	r.Get("/ids", s.listRiskIDs)
	r.Get("/next-id", s.nextRiskID)
	r.Get("/{riskID}", s.getRisk)
	r.Put("/{riskID}", s.saveRisk)
	r.Delete("/{riskID}", s.deleteRisk)
}

func (s *Server) listRisks(w http.ResponseWriter, r *http.Request) {
	risks, err := s.uc.Risk.ListRisks(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, risks)
}

func (s *Server) listRiskIDs(w http.ResponseWriter, r *http.Request) {
	ids, err := s.uc.Risk.ListRiskIDs(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, ids)
}

func (s *Server) nextRiskID(w http.ResponseWriter, r *http.Request) {
	id, err := s.uc.Risk.NextRiskID(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"riskId": id})
}

func (s *Server) getRisk(w http.ResponseWriter, r *http.Request) {
	risk, err := s.uc.Risk.GetRisk(r.Context(), chi.URLParam(r, "riskID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, risk)
}

// saveRisk creates or replaces a risk. On PUT the path risk ID wins over the body.
func (s *Server) saveRisk(w http.ResponseWriter, r *http.Request) {
	var risk model.Risk
	if err := decodeJSON(r, &risk); err != nil {
		handleError(w, r, err)
		return
	}

	if riskID := chi.URLParam(r, "riskID"); riskID != "" {
		if risk.RiskID != "" && risk.RiskID != riskID {
			handleError(w, r, goerr.Wrap(usecase.ErrValidation, "risk ID in body does not match path",
				goerr.V(usecase.RiskIDKey, riskID)))
			return
		}
		risk.RiskID = riskID
	}

	saved, err := s.uc.Risk.SaveRisk(r.Context(), &risk)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, saved)
}

func (s *Server) deleteRisk(w http.ResponseWriter, r *http.Request) {
	if err := s.uc.Risk.DeleteRisk(r.Context(), chi.URLParam(r, "riskID")); err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
}
