package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/jfoltran/growthgraph/internal/animation"
	"github.com/jfoltran/growthgraph/internal/svg"
)

// frame is the WebSocket message: the snapshot plus ready-to-inline markup.
type frame struct {
	animation.Snapshot
	Phase string `json:"phase"`
	SVG   string `json:"svg"`
}

var frameEncoder = svg.Encoder{ClipPrefix: "intro-", Transitions: true}

func encodeFrame(snap animation.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := frameEncoder.Encode(&buf, snap.Scene); err != nil {
		return nil, err
	}
	return json.Marshal(frame{Snapshot: snap, Phase: snap.Phase(), SVG: buf.String()})
}

// Hub manages WebSocket clients and broadcasts animation frames.
type Hub struct {
	driver *animation.Driver
	logger zerolog.Logger

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
}

func newHub(driver *animation.Driver, logger zerolog.Logger) *Hub {
	return &Hub{
		driver:  driver,
		logger:  logger.With().Str("component", "ws-hub").Logger(),
		clients: make(map[*wsClient]struct{}),
	}
}

func (h *Hub) start(ctx context.Context) {
	ch := h.driver.Subscribe()
	defer h.driver.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(snap)
		}
	}
}

func (h *Hub) broadcast(snap animation.Snapshot) {
	data, err := encodeFrame(snap)
	if err != nil {
		h.logger.Err(err).Msg("encode frame for ws")
		return
	}

	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := c.conn.Write(ctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			h.remove(c)
		}
	}
}

func (h *Hub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug().Int("clients", n).Msg("ws client connected")
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}
	h.mu.Unlock()
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow cross-origin for dev.
	})
	if err != nil {
		h.logger.Err(err).Msg("ws accept")
		return
	}

	client := &wsClient{conn: conn}
	h.add(client)

	// Send the current frame immediately.
	if data, err := encodeFrame(h.driver.Snapshot()); err == nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		_ = conn.Write(ctx, websocket.MessageText, data)
		cancel()
	}

	// Keep connection alive by reading (client may send pings).
	for {
		_, _, err := conn.Read(r.Context())
		if err != nil {
			h.remove(client)
			return
		}
	}
}
