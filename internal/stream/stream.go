// Package stream replays a graph element list over a WebSocket, one element at a time,
// so a client can watch the graph build up.
package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/psidex/visualizer/internal/elements"
	"github.com/psidex/visualizer/internal/lib"
)

// DefaultInterval is the pause between replayed elements.
const DefaultInterval = 50 * time.Millisecond

// configWait is how long the handler waits for a SessionConfig before replaying with
// the defaults.
const configWait = 250 * time.Millisecond

// Replayer is an http.Handler upgrading requests to a WebSocket replay of list.
type Replayer struct {
	list     elements.List
	interval time.Duration
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewReplayer(list elements.List, interval time.Duration, logger *slog.Logger) *Replayer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Replayer{
		list:     list,
		interval: interval,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (rp *Replayer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := rp.upgrader.Upgrade(w, r, nil)
	if err != nil {
		rp.logger.Error("ws upgrade failed", "error", err)
		return
	}
	ws := lib.NewThreadSafeWebSocket(c)
	defer ws.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	interval := rp.interval
	configs := make(chan SessionConfig, 1)

	go func() {
		// The first message may be a session config, anything after it cancels the
		// session. A read error means the client went away.
		defer cancel()
		first := true
		for {
			_, msg, err := ws.ReadMessage()
			if err != nil {
				return
			}
			if first {
				first = false
				cfg := SessionConfig{}
				if err := json.Unmarshal(msg, &cfg); err == nil {
					configs <- cfg
					continue
				}
			}
			return
		}
	}()

	select {
	case cfg := <-configs:
		if cfg.Interval.Duration > 0 {
			interval = cfg.Interval.Duration
		}
	case <-time.After(configWait):
	case <-ctx.Done():
		return
	}

	sent, err := rp.replay(ctx, ws, interval)
	if err != nil {
		rp.logger.Debug("Replay ended early", "sent", sent, "error", err)
		return
	}
	rp.logger.Debug("Replay finished", "sent", sent)
}

// replay sends every element, then a done message. Opaque entries are not elements
// and are skipped. It returns how many elements were sent.
func (rp *Replayer) replay(ctx context.Context, ws lib.ThreadSafeWebSocket, interval time.Duration) (int, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sent := 0
	for _, e := range rp.list {
		if e.Opaque() {
			continue
		}
		if sent > 0 {
			select {
			case <-ctx.Done():
				return sent, ctx.Err()
			case <-ticker.C:
			}
		}
		if err := ws.WriteJSON(elementMessage(e)); err != nil {
			return sent, err
		}
		sent++
	}

	return sent, ws.WriteJSON(doneMessage())
}
