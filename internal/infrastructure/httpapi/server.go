package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"NewsMirror/internal/domain"
	"NewsMirror/internal/usecase"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Reader is the read side of the local mirror.
type Reader interface {
	LatestEntry() (*domain.IndexEntry, error)
	GetLatest() (*domain.ArticleRecord, error)
	List(year *int, offset, limit int) ([]domain.IndexEntry, int, error)
	GetByID(id string) (*domain.ArticleRecord, error)
}

// SyncTrigger runs one guarded sync.
type SyncTrigger interface {
	SyncNow(ctx context.Context) (domain.SyncStats, error)
}

// AnnouncementLog lists what was already posted to the chat channel.
type AnnouncementLog interface {
	Recent(ctx context.Context, limit uint64) ([]domain.Announcement, error)
}

// Deps wires the collaborators the API serves from. Nil members disable their routes.
type Deps struct {
	Reader        Reader
	Syncer        SyncTrigger
	Announcements AnnouncementLog
	Metrics       http.Handler
	Logger        *slog.Logger
}

// Server exposes the mirror over HTTP.
type Server struct {
	deps   Deps
	logger *slog.Logger
	server *http.Server
}

func New(address string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{deps: deps, logger: logger}
	s.server = &http.Server{
		Addr:              address,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(middleware.Recoverer)
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)

	mux.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Get("/articles", s.listArticles)
		r.Get("/articles/latest", s.latestArticle)
		r.Get("/articles/{id}", s.getArticle)

		if s.deps.Syncer != nil {
			r.Post("/sync", s.syncNow)
		}
		if s.deps.Announcements != nil {
			r.Get("/announcements", s.recentAnnouncements)
		}
	})

	if s.deps.Metrics != nil {
		mux.Handle("/metrics", s.deps.Metrics)
	}

	return mux
}

// Start blocks serving until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting http server", "address", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

func (s *Server) listArticles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var year *int
	if raw := query.Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 2000 || parsed > 2100 {
			writeError(w, http.StatusBadRequest, "year must be between 2000 and 2100")
			return
		}
		year = &parsed
	}

	offset, err := intParam(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "offset must be an integer")
		return
	}
	limit, err := intParam(query.Get("limit"), defaultLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	limit = min(limit, maxLimit)

	entries, total, err := s.deps.Reader.List(year, offset, limit)
	if err != nil {
		s.internalError(w, "list articles", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"articles": entries,
		"total":    total,
		"offset":   max(offset, 0),
		"limit":    max(limit, 0),
	})
}

func (s *Server) latestArticle(w http.ResponseWriter, r *http.Request) {
	entry, err := s.deps.Reader.LatestEntry()
	if err != nil {
		s.internalError(w, "latest article", err)
		return
	}
	if entry == nil {
		writeError(w, http.StatusNotFound, "no local news yet")
		return
	}

	record, err := s.deps.Reader.GetByID(entry.ID)
	if err != nil {
		s.internalError(w, "latest article", err)
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "latest article metadata exists, but local article content is missing")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) getArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := s.deps.Reader.GetByID(id)
	if err != nil {
		s.internalError(w, "get article", err)
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("article %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) syncNow(w http.ResponseWriter, r *http.Request) {
	// a dropped client must not abort a run halfway
	stats, err := s.deps.Syncer.SyncNow(context.WithoutCancel(r.Context()))
	if errors.Is(err, usecase.ErrSyncBusy) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		s.internalError(w, "sync", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) recentAnnouncements(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r.URL.Query().Get("limit"), defaultLimit)
	if err != nil || limit < 1 {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	items, err := s.deps.Announcements.Recent(r.Context(), uint64(min(limit, maxLimit)))
	if err != nil {
		s.internalError(w, "recent announcements", err)
		return
	}

	type announcement struct {
		ArticleID   string    `json:"id"`
		ContentHash string    `json:"content_hash"`
		Title       string    `json:"title"`
		AnnouncedAt time.Time `json:"announced_at"`
	}
	out := make([]announcement, 0, len(items))
	for _, item := range items {
		out = append(out, announcement(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{"announcements": out})
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error("request failed", "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
