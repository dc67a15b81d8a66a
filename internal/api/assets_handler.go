package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	chi "github.com/go-chi/chi/v5"

	"github.com/seoforge/seoforge/internal/assets"
)

type assetSessionCreateRequest struct {
	Kind string `json:"kind"`
}

type assetGenerateRequest struct {
	Prompt string `json:"prompt"`
}

type assetSelectBaseRequest struct {
	AssetID string `json:"asset_id"`
}

func (s *Server) handleAssetSessionCreate(w http.ResponseWriter, r *http.Request) {
	if s.assets == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("asset sessions disabled"))
		return
	}
	var req assetSessionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	view, err := s.assets.NewSession(assets.Kind(strings.ToLower(strings.TrimSpace(req.Kind))))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleAssetSessionStatus(w http.ResponseWriter, r *http.Request) {
	if s.assets == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("asset sessions disabled"))
		return
	}
	view, err := s.assets.SessionView(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAssetGenerate(w http.ResponseWriter, r *http.Request) {
	if s.assets == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("asset sessions disabled"))
		return
	}
	var req assetGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	item, err := s.assets.Generate(r.Context(), chi.URLParam(r, "sessionID"), req.Prompt)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleAssetSelectBase(w http.ResponseWriter, r *http.Request) {
	if s.assets == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("asset sessions disabled"))
		return
	}
	var req assetSelectBaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	view, err := s.assets.SelectBase(chi.URLParam(r, "sessionID"), req.AssetID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleAssetClearBase(w http.ResponseWriter, r *http.Request) {
	if s.assets == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("asset sessions disabled"))
		return
	}
	view, err := s.assets.ClearBase(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
