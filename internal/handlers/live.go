package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matchoracle/prediction-api/internal/logic"
	"github.com/matchoracle/prediction-api/internal/models"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Clients only send control frames.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

// Live message types
const (
	MsgTypeSnapshot = "SNAPSHOT"
	MsgTypeError    = "ERROR"
)

// LiveMessage is what the live socket pushes
type LiveMessage struct {
	Type     string               `json:"type"`
	Snapshot *models.LiveSnapshot `json:"snapshot,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// liveClient is one open live socket
type liveClient struct {
	userID    string
	conn      *websocket.Conn
	done      chan struct{}
	closeOnce sync.Once
}

func (c *liveClient) close(code int, reason string) {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
		c.conn.Close()
	})
}

// readPump discards client frames and notices disconnects
func (c *liveClient) readPump() {
	defer c.close(websocket.CloseNormalClosure, "")
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *liveClient) write(msg LiveMessage) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

// liveHub tracks open live sockets per user so a sign-out can close them
type liveHub struct {
	mu      sync.Mutex
	clients map[string]map[*liveClient]struct{}
}

func newLiveHub() *liveHub {
	return &liveHub{clients: make(map[string]map[*liveClient]struct{})}
}

func (h *liveHub) add(c *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*liveClient]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
}

func (h *liveHub) remove(c *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients[c.userID], c)
	if len(h.clients[c.userID]) == 0 {
		delete(h.clients, c.userID)
	}
}

// closeUser closes every socket of the user and returns how many were open
func (h *liveHub) closeUser(userID string) int {
	h.mu.Lock()
	clients := make([]*liveClient, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		clients = append(clients, c)
	}
	delete(h.clients, userID)
	h.mu.Unlock()

	for _, c := range clients {
		c.close(websocket.ClosePolicyViolation, "signed out")
	}
	return len(clients)
}

func (h *liveHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// WatchAuthState closes a user's live sockets when they sign out. Call the
// returned func on shutdown.
func (h *Handler) WatchAuthState() (unsubscribe func()) {
	return h.auth.OnAuthStateChanged(func(state models.AuthState) {
		if state.Previous == nil {
			return
		}
		if n := h.hub.closeUser(state.Previous.ID); n > 0 {
			h.logger.Infow("Closed live sockets on sign-out", "user", state.Previous.ID, "sockets", n)
		}
	})
}

// GetLive returns a live snapshot of the user's pending predictions
// @Summary Live Match Tracker
// @Description Current score, minute, events and statistics for up to five pending predictions
// @Tags Live
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.LiveSnapshot
// @Failure 409 {object} map[string]string "Refresh in progress"
// @Router /live [get]
func (h *Handler) GetLive(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	snapshot, err := h.live.Snapshot(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, logic.ErrRefreshInProgress) {
			h.errorResponse(w, http.StatusConflict, "Live refresh already in progress")
			return
		}
		h.logger.Errorw("Live snapshot failed", "error", err, "user", user.ID)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to load live matches")
		return
	}

	h.jsonResponse(w, http.StatusOK, snapshot)
}

// LiveSocket pushes a fresh live snapshot every refresh interval
// @Summary Live Match Tracker Socket
// @Tags Live
// @Security BearerAuth
// @Router /live/ws [get]
func (h *Handler) LiveSocket(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied
		h.logger.Warnw("Live socket upgrade failed", "error", err, "user", user.ID)
		return
	}

	c := &liveClient{userID: user.ID, conn: conn, done: make(chan struct{})}
	h.hub.add(c)
	defer h.hub.remove(c)
	go c.readPump()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		<-c.done
		cancel()
	}()

	refresh := time.NewTicker(h.liveEvery)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		refresh.Stop()
		ping.Stop()
		c.close(websocket.CloseNormalClosure, "")
	}()

	if !h.pushSnapshot(ctx, c) {
		return
	}
	for {
		select {
		case <-c.done:
			return
		case <-refresh.C:
			if !h.pushSnapshot(ctx, c) {
				return
			}
		case <-ping.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// pushSnapshot reports whether the socket is still usable
func (h *Handler) pushSnapshot(ctx context.Context, c *liveClient) bool {
	snapshot, err := h.live.Snapshot(ctx, c.userID)
	msg := LiveMessage{Type: MsgTypeSnapshot, Snapshot: snapshot}
	switch {
	case errors.Is(err, logic.ErrRefreshInProgress):
		return true
	case ctx.Err() != nil:
		return false
	case err != nil:
		h.logger.Warnw("Live refresh failed", "error", err, "user", c.userID)
		msg = LiveMessage{Type: MsgTypeError, Error: "Failed to load live matches"}
	}
	return c.write(msg) == nil
}
