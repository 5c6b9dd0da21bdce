package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"stemma/internal/interaction"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 64 * 1024
)

// StreamReply is written back for every event received on an input stream
type StreamReply struct {
	InputResponse
	Error string `json:"error,omitempty"`
}

// InputStream accepts a websocket of raw input events, one JSON event per
// text message, and answers each with a StreamReply. Events are applied in
// arrival order and paced by the limiter.
type InputStream struct {
	canvas   *CanvasHandler
	limiter  *rate.Limiter
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewInputStream creates a websocket input endpoint
func NewInputStream(h *CanvasHandler, limiter *rate.Limiter, logger *zap.Logger) *InputStream {
	return &InputStream{
		canvas:  h,
		limiter: limiter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger.Named("ws"),
	}
}

// ServeHTTP upgrades the connection and pumps events until the peer leaves
func (s *InputStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	replies := make(chan StreamReply, 64)
	done := make(chan struct{})
	go s.writePump(conn, replies, done)
	defer func() {
		close(replies)
		<-done
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	s.logger.Debug("input stream opened", zap.String("remote", r.RemoteAddr))
	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("input stream read error", zap.Error(err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		if err := s.limiter.Wait(r.Context()); err != nil {
			return
		}

		var reply StreamReply
		var ev interaction.Event
		if err := json.Unmarshal(message, &ev); err != nil {
			reply.Error = err.Error()
		} else if resp, err := s.canvas.handleInput(r, ev); err != nil {
			reply.Error = err.Error()
		} else {
			reply.InputResponse = resp
		}

		select {
		case replies <- reply:
		case <-done:
			return
		}
	}
}

// writePump serializes replies and keep-alive pings onto the connection
func (s *InputStream) writePump(conn *websocket.Conn, replies <-chan StreamReply, done chan<- struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(done)
	}()

	for {
		select {
		case reply, ok := <-replies:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(reply); err != nil {
				s.logger.Warn("input stream write failed", zap.Error(err))
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
