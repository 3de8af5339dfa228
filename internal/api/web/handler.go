package web

import (
	"context"
	_ "embed"
	"errors"
	"net"
	"net/http"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/thermal-sentinel/internal/api/wire"
	"github.com/oshokin/thermal-sentinel/internal/domain/alarm"
	"github.com/oshokin/thermal-sentinel/internal/domain/thermal"
	"github.com/oshokin/thermal-sentinel/internal/logger"
	"github.com/oshokin/thermal-sentinel/internal/node"
	"github.com/oshokin/thermal-sentinel/internal/snapshot"
)

// Headers carrying the caller identity of alarm commands.
const (
	HeaderHostname = "X-Actor-Hostname"
	HeaderUsername = "X-Actor-Username"
)

const (
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json"
)

//go:embed index.html
var indexPage []byte

// Service abstracts the node operations the HTTP layer depends on.
type Service interface {
	Frame(ctx context.Context) thermal.Frame
	Stats(ctx context.Context) thermal.Stats
	Health(ctx context.Context) (snapshot.Health, snapshot.Status)
	Snapshot(ctx context.Context) snapshot.Snapshot
	TriggerAlarm(ctx context.Context, actor *alarm.Actor) error
	StopAlarm(ctx context.Context, actor *alarm.Actor) error
}

// Handler routes the node's HTTP endpoints.
type Handler struct {
	// service provides the node state and accepts alarm commands.
	service Service
	// mux holds the registered routes.
	mux *http.ServeMux
}

// NewHandler registers every endpoint on a fresh mux.
func NewHandler(service Service) *Handler {
	h := &Handler{
		service: service,
		mux:     http.NewServeMux(),
	}

	h.mux.HandleFunc("GET /{$}", h.index)
	h.mux.HandleFunc("GET /frame", h.frame)
	h.mux.HandleFunc("GET /stats", h.stats)
	h.mux.HandleFunc("GET /health", h.health)
	h.mux.HandleFunc("GET /snapshot.json", h.snapshot)
	h.mux.HandleFunc("POST /alarm/trigger", h.command(service.TriggerAlarm))
	h.mux.HandleFunc("POST /alarm/stop", h.command(service.StopAlarm))

	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	writeBody(r.Context(), w, http.StatusOK, contentTypeHTML, indexPage)
}

func (h *Handler) frame(w http.ResponseWriter, r *http.Request) {
	frame := h.service.Frame(r.Context())

	writeBody(r.Context(), w, http.StatusOK, contentTypeText, []byte(wire.FormatFrame(&frame)))
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	writeBody(r.Context(), w, http.StatusOK, contentTypeText, []byte(wire.FormatStats(h.service.Stats(r.Context()))))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, wire.HealthStruct(h.service.Health(r.Context())))
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, wire.SnapshotStruct(h.service.Snapshot(r.Context())))
}

func (h *Handler) command(submit func(context.Context, *alarm.Actor) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// Requests are drained by the loop later, so only the prior state is known here.
		_, before := h.service.Health(ctx)

		err := submit(ctx, actorFromRequest(r))

		switch {
		case err == nil:
		case errors.Is(err, node.ErrQueueFull):
			http.Error(w, err.Error(), http.StatusTooManyRequests)

			return
		default:
			logger.ErrorKV(ctx, "Alarm request failed", "path", r.URL.Path, "error", err)
			http.Error(w, "unable to queue request", http.StatusInternalServerError)

			return
		}

		writeJSON(ctx, w, http.StatusAccepted, &structpb.Struct{Fields: map[string]*structpb.Value{
			"accepted":     structpb.NewBoolValue(true),
			"alarm_before": structpb.NewStructValue(wire.AlarmStruct(before.Alarm)),
		}})
	}
}

// actorFromRequest identifies the caller by headers, falling back to the remote host.
func actorFromRequest(r *http.Request) *alarm.Actor {
	actor := &alarm.Actor{
		Hostname: r.Header.Get(HeaderHostname),
		Username: r.Header.Get(HeaderUsername),
	}

	if actor.Hostname == "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err == nil {
			actor.Hostname = host
		}
	}

	if actor.Hostname == "" && actor.Username == "" {
		return nil
	}

	return actor
}

func writeJSON(ctx context.Context, w http.ResponseWriter, code int, msg *structpb.Struct) {
	body, err := protojson.Marshal(msg)
	if err != nil {
		logger.ErrorKV(ctx, "Encode response", "error", err)
		http.Error(w, "unable to encode response", http.StatusInternalServerError)

		return
	}

	writeBody(ctx, w, code, contentTypeJSON, body)
}

func writeBody(ctx context.Context, w http.ResponseWriter, code int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(code)

	if _, err := w.Write(body); err != nil {
		logger.DebugKV(ctx, "Write response", "error", err)
	}
}
