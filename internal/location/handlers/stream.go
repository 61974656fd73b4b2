package handlers

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"cosmos-server/internal/cosmos"
	"cosmos-server/internal/shared/config"
	"cosmos-server/internal/shared/errors"
	"cosmos-server/internal/shared/response"
)

const (
	minStreamInterval = 100 * time.Millisecond
	maxStreamInterval = time.Minute
	maxTimeScale      = 1e9
	streamWriteWait   = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || origin == config.GlobalConfig.Frontend.URL
	},
}

// orbitFrame is one tick of an orbit stream. Position and velocity are
// relative to the orbited body.
type orbitFrame struct {
	ElapsedSeconds float64        `json:"elapsed_seconds"`
	TrueAnomaly    float64        `json:"true_anomaly"`
	Position       cosmos.Vector3 `json:"position"`
	Velocity       cosmos.Vector3 `json:"velocity"`
}

// StreamOrbit upgrades to a WebSocket and pushes the location's orbital
// state every interval_ms, with simulated time running time_scale times
// faster than wall time. The stream propagates a snapshot of the orbit
// and never writes back to the database.
func (h *LocationHandler) StreamOrbit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "stream_orbit")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	id, err := parseLocationID(r, "id")
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	loc, err := h.service.Get(ctx, id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	if loc.Orbit == nil {
		response.Error(w, r, logger, errors.Validationf("location %q has no orbit to stream", loc.Name))
		return
	}

	interval := time.Second
	if intervalStr := r.URL.Query().Get("interval_ms"); intervalStr != "" {
		ms, err := strconv.Atoi(intervalStr)
		if err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid interval_ms parameter", err))
			return
		}
		interval = time.Duration(ms) * time.Millisecond
		if interval < minStreamInterval || interval > maxStreamInterval {
			response.Error(w, r, logger, errors.Validationf("interval_ms must be between %d and %d",
				minStreamInterval.Milliseconds(), maxStreamInterval.Milliseconds()))
			return
		}
	}

	timeScale := 1.0
	if scaleStr := r.URL.Query().Get("time_scale"); scaleStr != "" {
		timeScale, err = strconv.ParseFloat(scaleStr, 64)
		if err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid time_scale parameter", err))
			return
		}
		if math.IsNaN(timeScale) || timeScale <= 0 || timeScale > maxTimeScale {
			response.Error(w, r, logger, errors.Validationf("time_scale must be positive and at most %g", maxTimeScale))
			return
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own HTTP error.
		logger.Warn("WebSocket upgrade failed", "error", err, "location_id", id)
		return
	}
	defer conn.Close()

	logger.Debug("Orbit stream opened",
		"location_id", id,
		"interval", interval,
		"time_scale", timeScale)

	// Drain client messages so closes and pings are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	epoch := *loc.Orbit
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			logger.Debug("Orbit stream closed by client", "location_id", id)
			return
		case <-ticker.C:
			elapsed := time.Since(start).Seconds() * timeScale
			tick := epoch
			pos, vel := tick.AdvanceBy(elapsed)

			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(orbitFrame{
				ElapsedSeconds: elapsed,
				TrueAnomaly:    tick.TrueAnomaly,
				Position:       pos,
				Velocity:       vel,
			}); err != nil {
				logger.Debug("Orbit stream write failed", "error", err, "location_id", id)
				return
			}
		}
	}
}
