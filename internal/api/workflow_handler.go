package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/seoforge/seoforge/internal/backend"
	"github.com/seoforge/seoforge/internal/workflow"
)

type sessionCreateRequest struct {
	SiteURL      string `json:"site_url"`
	Industry     string `json:"industry"`
	Instructions string `json:"instructions"`
}

type chatRequest struct {
	Text string `json:"text"`
}

type confirmCompetitorsRequest struct {
	Picks []string `json:"picks"`
}

type manualCompetitorRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type selectSolutionRequest struct {
	SolutionID string `json:"solution_id"`
}

type confirmBriefRequest struct {
	Brief *backend.ContentBrief `json:"brief"`
}

type rewindRequest struct {
	Step int `json:"step"`
}

type rerunRequest struct {
	Instructions string `json:"instructions"`
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	var req sessionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.SiteURL) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("site_url required"))
		return
	}
	view, err := s.orch.StartSession(r.Context(), req.SiteURL, req.Industry, req.Instructions)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleSessionList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": s.orch.Sessions()})
}

func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	view, err := s.orch.SessionView(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSessionMessages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if r.URL.Query().Get("all") != "" {
		msgs, deactivated, err := s.orch.Transcript(id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		ids := make([]string, 0, len(deactivated))
		for mid := range deactivated {
			ids = append(ids, mid)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"messages": msgs, "deactivated": ids})
		return
	}
	msgs, err := s.orch.Messages(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": msgs})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("text required"))
		return
	}
	view, err := s.orch.HandleText(r.Context(), chi.URLParam(r, "sessionID"), req.Text)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleConfirmCompetitors(w http.ResponseWriter, r *http.Request) {
	var req confirmCompetitorsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	view, err := s.orch.ConfirmCompetitors(r.Context(), chi.URLParam(r, "sessionID"), req.Picks)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleManualCompetitor(w http.ResponseWriter, r *http.Request) {
	var req manualCompetitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	view, err := s.orch.AddManualCompetitor(r.Context(), chi.URLParam(r, "sessionID"), req.Name, req.URL)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSelectSolution(w http.ResponseWriter, r *http.Request) {
	var req selectSolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.SolutionID) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("solution_id required"))
		return
	}
	view, err := s.orch.SelectSolution(r.Context(), chi.URLParam(r, "sessionID"), req.SolutionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleConfirmBrief(w http.ResponseWriter, r *http.Request) {
	var req confirmBriefRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	view, err := s.orch.ConfirmBrief(r.Context(), chi.URLParam(r, "sessionID"), req.Brief)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAutoFix(w http.ResponseWriter, r *http.Request) {
	view, err := s.orch.AutoFix(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	view, err := s.orch.ApproveArticle(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleRewind(w http.ResponseWriter, r *http.Request) {
	var req rewindRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	view, err := s.orch.GoToStep(r.Context(), chi.URLParam(r, "sessionID"), workflow.Step(req.Step))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleRerun(w http.ResponseWriter, r *http.Request) {
	var req rerunRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	view, err := s.orch.Rerun(r.Context(), chi.URLParam(r, "sessionID"), req.Instructions)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	view, err := s.orch.ResetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDismissNotice(w http.ResponseWriter, r *http.Request) {
	err := s.orch.DismissNotice(chi.URLParam(r, "sessionID"), chi.URLParam(r, "noticeID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}
