package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/seoforge/seoforge/internal/profile"
)

func (s *Server) handleProfileGet(w http.ResponseWriter, r *http.Request) {
	if s.profiles == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("profile store disabled"))
		return
	}
	key := profile.SiteKey(chi.URLParam(r, "siteKey"))
	p, err := s.profiles.Get(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("no profile for %s", key))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleProfilePut(w http.ResponseWriter, r *http.Request) {
	if s.profiles == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("profile store disabled"))
		return
	}
	var p profile.BrandProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p.SiteKey = profile.SiteKey(chi.URLParam(r, "siteKey"))
	if err := s.profiles.Put(r.Context(), p); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
