package httpserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/devpubio/devpub/core/health"
	"github.com/devpubio/devpub/core/logger"
	"github.com/devpubio/devpub/core/registry"
	"github.com/devpubio/devpub/core/topic"
)

// Handler serves the control and data planes for one registry.
type Handler struct {
	mux      *http.ServeMux
	reg      *registry.Registry
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets a structured logger for request handling events.
// Use slog.New(slog.NewTextHandler(io.Discard, nil)) to disable logging.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithOriginCheck overrides the WebSocket origin policy for stream upgrades.
func WithOriginCheck(fn func(r *http.Request) bool) Option {
	return func(h *Handler) {
		if fn != nil {
			h.upgrader.CheckOrigin = fn
		}
	}
}

// New builds the HTTP surface over reg.
func New(reg *registry.Registry, opts ...Option) *Handler {
	h := &Handler{
		mux:    http.NewServeMux(),
		reg:    reg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	for _, opt := range opts {
		opt(h)
	}

	h.mux.HandleFunc("POST /topics", h.createTopic)
	h.mux.HandleFunc("GET /topics", h.listTopics)
	h.mux.HandleFunc("GET /topics/{name}", h.getTopic)
	h.mux.HandleFunc("PATCH /topics/{name}/config", h.configureTopic)
	h.mux.HandleFunc("DELETE /topics/{name}", h.removeTopic)
	h.mux.HandleFunc("GET /topics/{name}/stream", h.streamTopic)

	h.mux.HandleFunc("GET /health/live", health.Liveness)
	h.mux.Handle("GET /health/ready", health.Readiness(h.logger))

	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type createTopicRequest struct {
	Name string `json:"name"`
}

type configureTopicRequest struct {
	SlotSize  uint32 `json:"slot_size"`
	SlotCount uint32 `json:"slot_count"`
}

func (h *Handler) createTopic(w http.ResponseWriter, r *http.Request) {
	var req createTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, registry.ErrEmptyName)
		return
	}

	if _, err := h.reg.Create(req.Name); err != nil {
		writeError(w, err)
		return
	}

	info, err := h.reg.Info(req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("topic created", logger.Topic(req.Name))
	writeJSON(w, http.StatusCreated, info)
}

func (h *Handler) listTopics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.reg.List())
}

func (h *Handler) getTopic(w http.ResponseWriter, r *http.Request) {
	info, err := h.reg.Info(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) configureTopic(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	tp, err := h.reg.Get(name)
	if err != nil {
		writeError(w, err)
		return
	}

	var req configureTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, topic.ErrInvalidSlotSize)
		return
	}

	if err := tp.Configure(req.SlotSize, req.SlotCount); err != nil {
		writeError(w, err)
		return
	}

	info, err := h.reg.Info(name)
	if err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("topic configured",
		logger.Topic(name),
		logger.Key("slot_size", req.SlotSize),
		logger.Key("slot_count", req.SlotCount))
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) removeTopic(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	if err := h.reg.Remove(name); err != nil {
		writeError(w, err)
		return
	}

	h.logger.Info("topic removed", logger.Topic(name))
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
