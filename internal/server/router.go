// Package server exposes a service.Backend over the posts REST surface.
// It stands in for the public demo API during development and tests.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"

	"labposts/internal/service"
	"labposts/internal/wire"
)

// NewRouter returns the HTTP handler for the posts surface backed by backend.
func NewRouter(backend service.Backend, logger *slog.Logger) http.Handler {
	h := &handlers{backend: backend, logger: logger}

	r := mux.NewRouter()
	r.Use(accessLog(logger))

	r.Methods(http.MethodGet).Path("/health").HandlerFunc(h.health)
	r.Methods(http.MethodGet).Path("/posts").HandlerFunc(h.listPosts)
	r.Methods(http.MethodPost).Path("/posts").HandlerFunc(h.createPost)
	r.Methods(http.MethodGet).Path("/posts/{id:[0-9]+}").HandlerFunc(h.getPost)
	r.Methods(http.MethodPut).Path("/posts/{id:[0-9]+}").HandlerFunc(h.replacePost)
	r.Methods(http.MethodDelete).Path("/posts/{id:[0-9]+}").HandlerFunc(h.deletePost)
	return r
}

// accessLog logs every handled request with its status and duration.
func accessLog(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)
			logger.Info("handled", "method", r.Method, "url", r.URL.String(), "status", m.Code,
				"duration", m.Duration, "request_id", r.Header.Get("X-Request-ID"))
		})
	}
}

type handlers struct {
	backend service.Backend
	logger  *slog.Logger
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *handlers) listPosts(w http.ResponseWriter, r *http.Request) {
	items, err := h.backend.ListItems(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	posts := make([]wire.Post, 0, len(items))
	for _, item := range items {
		posts = append(posts, wire.FromItem(item))
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *handlers) getPost(w http.ResponseWriter, r *http.Request) {
	id := postID(r)
	item, err := h.backend.GetItem(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.FromItem(item))
}

func (h *handlers) createPost(w http.ResponseWriter, r *http.Request) {
	var req wire.Post
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	item, err := h.backend.CreateItem(r.Context(), req.Title, req.Body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, wire.FromItem(item))
}

func (h *handlers) replacePost(w http.ResponseWriter, r *http.Request) {
	id := postID(r)
	var req wire.Post
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	item, err := h.backend.ReplaceItem(r.Context(), id, req.Title, req.Body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.FromItem(item))
}

func (h *handlers) deletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.backend.DeleteItem(r.Context(), postID(r)); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *handlers) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	default:
		h.logger.Error("backend error", "error", err)
	}
	writeJSON(w, status, struct{}{})
}

// postID reads the id route variable. The route pattern guarantees digits.
func postID(r *http.Request) int {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
