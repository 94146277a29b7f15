package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"

	"github.com/eudai-lab/eudaimon/pkg/domain/model"
	"github.com/eudai-lab/eudaimon/pkg/domain/types"
	"github.com/eudai-lab/eudaimon/pkg/usecase"
	"github.com/eudai-lab/eudaimon/pkg/utils/errutil"
	"github.com/eudai-lab/eudaimon/pkg/utils/logging"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
}

func New(uc *usecase.UseCases) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/plan", s.planHandler)
		r.Get("/life-quality", s.lifeQualityHandler)
		r.Get("/sessions/{sessionID}/steps", s.sessionStepsHandler)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// planRequest is the POST /api/plan body
type planRequest struct {
	Context struct {
		UserID      string   `json:"user_id"`
		Mood        string   `json:"mood"`
		Preferences []string `json:"preferences"`
		Timezone    string   `json:"timezone"`
	} `json:"context"`
	Conversation model.Conversation `json:"conversation"`
}

func (s *Server) planHandler(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to decode plan request"), http.StatusBadRequest)
		return
	}

	userCtx := model.NewUserContext(
		types.UserID(req.Context.UserID),
		req.Context.Mood,
		req.Context.Timezone,
		req.Context.Preferences,
	)

	bundle, err := s.uc.GeneratePlan(r.Context(), userCtx, req.Conversation)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, bundle)
}

func (s *Server) lifeQualityHandler(w http.ResponseWriter, r *http.Request) {
	userID := types.UserID(r.URL.Query().Get("user_id"))

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errutil.HandleHTTP(r.Context(), w, goerr.New("limit must be a non-negative integer"), http.StatusBadRequest)
			return
		}
		limit = n
	}

	report, err := s.uc.GetLifeQuality(r.Context(), userID, limit)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, report)
}

func (s *Server) sessionStepsHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := types.SessionID(chi.URLParam(r, "sessionID"))

	steps, err := s.uc.GetSessionSteps(r.Context(), sessionID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"steps": steps})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, usecase.ErrInvalidInput) {
		status = http.StatusBadRequest
	}
	errutil.HandleHTTP(r.Context(), w, err, status)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
