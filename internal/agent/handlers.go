package agent

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/benmeehan/pcremote/internal/models"
	"github.com/benmeehan/pcremote/internal/system"
	httputils "github.com/benmeehan/pcremote/pkg/httpUtils"
	"github.com/rs/zerolog"
)

// HistoryReader exposes a consistent copy of the clipboard history.
type HistoryReader interface {
	Snapshot() []string
}

// StatsProvider collects a resource usage snapshot.
type StatsProvider interface {
	Stats(ctx context.Context) (*models.StatsResponse, error)
}

// Options wires the agent's OS-facing collaborators.
type Options struct {
	Power         system.PowerController
	Mixer         system.Mixer
	Capturer      system.ScreenCapturer
	Stats         StatsProvider
	History       HistoryReader
	ShutdownDelay time.Duration
	Platform      string
	Hostname      string
	Version       string
	Logger        zerolog.Logger
}

// Handler serves the control agent's HTTP surface. It holds no state of its
// own beyond the shared clipboard history.
type Handler struct {
	opts   Options
	logger zerolog.Logger
}

// NewHandler creates a Handler.
func NewHandler(opts Options) *Handler {
	return &Handler{opts: opts, logger: opts.Logger}
}

// Routes returns the agent's request multiplexer.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", h.allow(http.MethodGet, h.ping))
	mux.HandleFunc("/shutdown", h.allow(http.MethodPost, h.shutdown))
	mux.HandleFunc("/sleep", h.allow(http.MethodPost, h.sleep))
	mux.HandleFunc("/clipboard", h.allow(http.MethodGet, h.clipboard))
	mux.HandleFunc("/screenshot", h.allow(http.MethodGet, h.screenshot))
	mux.HandleFunc("/stats", h.allow(http.MethodGet, h.stats))
	mux.HandleFunc("/volume", h.allow(http.MethodPost, h.volume))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, http.StatusNotFound, "not found")
	})
	return h.logRequests(mux)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, models.PingResponse{
		Status:   "online",
		Platform: h.opts.Platform,
		Hostname: h.opts.Hostname,
		Version:  h.opts.Version,
	})
}

func (h *Handler) shutdown(w http.ResponseWriter, r *http.Request) {
	h.logger.Warn().Msg("Shutdown command received")
	if err := h.opts.Power.Shutdown(h.opts.ShutdownDelay); err != nil {
		h.logger.Error().Err(err).Msg("Failed to dispatch shutdown")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, models.StatusResponse{
		Status:       "shutdown_scheduled",
		DelaySeconds: int(math.Ceil(h.opts.ShutdownDelay.Seconds())),
	})
}

func (h *Handler) sleep(w http.ResponseWriter, r *http.Request) {
	h.logger.Warn().Msg("Sleep command received")
	if err := h.opts.Power.Sleep(); err != nil {
		h.logger.Error().Err(err).Msg("Failed to dispatch sleep")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, models.StatusResponse{Status: "sleep_requested"})
}

func (h *Handler) clipboard(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, models.ClipboardResponse{History: h.opts.History.Snapshot()})
}

func (h *Handler) screenshot(w http.ResponseWriter, r *http.Request) {
	image, err := h.opts.Capturer.Capture(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Screenshot failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", fmt.Sprint(len(image)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(image); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to write screenshot response")
	}
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.opts.Stats.Stats(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Stats collection failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) volume(w http.ResponseWriter, r *http.Request) {
	var req models.VolumeRequest
	if err := httputils.DecodeJSON(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		state system.VolumeState
		err   error
	)
	switch req.Action {
	case models.VolumeActionGet:
		state, err = h.opts.Mixer.Volume(r.Context())
	case models.VolumeActionSet:
		if req.Level == nil || math.IsNaN(*req.Level) || math.IsInf(*req.Level, 0) {
			h.writeError(w, http.StatusBadRequest, "set requires a numeric level")
			return
		}
		level := system.ClampLevel(*req.Level)
		if level != *req.Level {
			h.logger.Info().Float64("requested", *req.Level).Float64("applied", level).Msg("Volume level clamped")
		}
		state, err = h.opts.Mixer.SetVolume(r.Context(), level)
	case models.VolumeActionMute:
		state, err = h.opts.Mixer.ToggleMute(r.Context())
	default:
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown volume action %q", req.Action))
		return
	}

	if err != nil {
		h.logger.Error().Err(err).Str("action", req.Action).Msg("Volume operation failed")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, models.VolumeResponse{Level: state.Percent(), Muted: state.Muted})
}

func (h *Handler) allow(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		next(w, r)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	if err := httputils.WriteJSON(w, status, v); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to write response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	if err := httputils.WriteError(w, status, message); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to write error response")
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		h.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Handled request")
	})
}
