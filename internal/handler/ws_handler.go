package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Sheeddhartho/Secura/internal/model"
	"github.com/Sheeddhartho/Secura/internal/service"
)

// StreamWSHandler handles WebSocket connections on /ws/stream.
//
// Wire protocol: text messages are JSON Event envelopes (join-as-camera,
// join-as-monitor in; camera-status out); binary messages are opaque
// frame blobs (stream-frame in, update-stream out).
type StreamWSHandler struct {
	gw       *service.Gateway
	sessions SessionResolver
	logger   *zap.Logger
}

// NewStreamWSHandler creates the WebSocket gateway handler.
func NewStreamWSHandler(gw *service.Gateway, sessions SessionResolver, logger *zap.Logger) *StreamWSHandler {
	return &StreamWSHandler{gw: gw, sessions: sessions, logger: logger}
}

// ServeWS authenticates the connection, upgrades it and runs the pumps.
// An unresolvable session is rejected before the upgrade — the client
// never gets a socket to exchange events on.
func (h *StreamWSHandler) ServeWS(c *gin.Context) {
	tenantID, err := h.sessions.Resolve(c.Request.Context(), sessionToken(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "session required"})
		return
	}

	conn, err := h.gw.Upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	peer, cleanup := h.gw.Register(tenantID, conn)
	defer cleanup()

	go h.writePump(peer)
	h.readPump(peer)
}

func (h *StreamWSHandler) readPump(p *service.Peer) {
	defer func() {
		_ = p.Conn.Close()
	}()
	for {
		mt, data, err := p.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("read error", zap.Error(err))
			}
			return
		}
		switch mt {
		case websocket.BinaryMessage:
			h.gw.RelayFrame(p, data)
		case websocket.TextMessage:
			h.handleEvent(p, data)
		}
	}
}

func (h *StreamWSHandler) handleEvent(p *service.Peer, data []byte) {
	var ev model.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		h.logger.Debug("malformed event", zap.Error(err))
		return
	}
	switch ev.Event {
	case model.EventJoinAsCamera:
		h.gw.DeclareCamera(p)
	case model.EventJoinAsMonitor:
		h.gw.DeclareMonitor(p)
	default:
		h.logger.Debug("unknown event", zap.String("event", ev.Event))
	}
}

func (h *StreamWSHandler) writePump(p *service.Peer) {
	defer func() {
		_ = p.Conn.Close()
	}()
	for {
		select {
		case msg := <-p.Send:
			if err := p.Conn.WriteMessage(msg.Type, msg.Data); err != nil {
				return
			}
		case <-p.Done():
			return
		}
	}
}
