package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/seoforge/seoforge/internal/assets"
	"github.com/seoforge/seoforge/internal/common"
	"github.com/seoforge/seoforge/internal/llm"
	"github.com/seoforge/seoforge/internal/profile"
	"github.com/seoforge/seoforge/internal/workflow"
)

type Server struct {
	router   chi.Router
	orch     *workflow.Orchestrator
	assets   *assets.Manager
	profiles profile.Store
	provider llm.Provider
}

func NewServer(orch *workflow.Orchestrator, assetMgr *assets.Manager, profiles profile.Store, provider llm.Provider) (*Server, error) {
	if orch == nil {
		return nil, fmt.Errorf("orchestrator required")
	}
	providerName := "unknown"
	if provider != nil {
		providerName = provider.Name()
	}
	srv := &Server{
		router:   chi.NewRouter(),
		orch:     orch,
		assets:   assetMgr,
		profiles: profiles,
		provider: provider,
	}
	srv.routes()
	common.Logger().Info("api: server ready", "provider", providerName)
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Get("/v1/logs", s.handleLogs)

	s.router.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleSessionCreate)
		r.Get("/", s.handleSessionList)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleSessionStatus)
			r.Get("/messages", s.handleSessionMessages)
			r.Post("/chat", s.handleChat)
			r.Post("/competitors/confirm", s.handleConfirmCompetitors)
			r.Post("/competitors/manual", s.handleManualCompetitor)
			r.Post("/solution", s.handleSelectSolution)
			r.Post("/brief/confirm", s.handleConfirmBrief)
			r.Post("/article/autofix", s.handleAutoFix)
			r.Post("/article/approve", s.handleApprove)
			r.Post("/rewind", s.handleRewind)
			r.Post("/rerun", s.handleRerun)
			r.Post("/reset", s.handleSessionReset)
			r.Delete("/notices/{noticeID}", s.handleDismissNotice)
		})
	})

	s.router.Get("/v1/profiles/{siteKey}", s.handleProfileGet)
	s.router.Put("/v1/profiles/{siteKey}", s.handleProfilePut)

	s.router.Route("/v1/assets/sessions", func(r chi.Router) {
		r.Post("/", s.handleAssetSessionCreate)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleAssetSessionStatus)
			r.Post("/generate", s.handleAssetGenerate)
			r.Post("/base", s.handleAssetSelectBase)
			r.Delete("/base", s.handleAssetClearBase)
		})
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"logs": common.LogEntries()})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// writeDomainError maps orchestrator sentinels onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workflow.ErrSessionBusy):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, workflow.ErrSessionNotFound),
		errors.Is(err, assets.ErrSessionNotFound),
		errors.Is(err, assets.ErrAssetNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, workflow.ErrInvalidInput), errors.Is(err, assets.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
