package service

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Sheeddhartho/Secura/internal/model"
)

// Gateway is the session-gated entry point for real-time connections.
// Session resolution happens in the HTTP handler before the upgrade;
// everything after the handshake — room membership, role declarations,
// presence broadcasts and frame relay — lives here.
type Gateway struct {
	registry   *Registry
	settings   *SettingsCache // optional; warmed per tenant on connect
	upgrader   websocket.Upgrader
	maxMsgSize int64
	log        *zap.Logger
}

// NewGateway creates the connection gateway. settings may be nil (no
// warm-up), which unit tests use.
func NewGateway(registry *Registry, settings *SettingsCache, readBufferSize, writeBufferSize int, maxMsgSize int64, log *zap.Logger) *Gateway {
	return &Gateway{
		registry:   registry,
		settings:   settings,
		maxMsgSize: maxMsgSize,
		log:        log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
			// Allow all origins for dev; in prod set CheckOrigin.
		},
	}
}

// Upgrader returns the WebSocket upgrader for the HTTP handler.
func (g *Gateway) Upgrader() *websocket.Upgrader {
	return &g.upgrader
}

// Registry exposes the room registry (handlers and tests).
func (g *Gateway) Registry() *Registry { return g.registry }

// Register joins an authenticated connection to its tenant room and
// returns the peer plus a cleanup to run on disconnect. The tenant's
// settings load is kicked off here so the first evaluate call after a
// camera appears usually finds a warm cache.
func (g *Gateway) Register(tenantID string, conn *websocket.Conn) (*Peer, func()) {
	if g.maxMsgSize > 0 && conn != nil {
		conn.SetReadLimit(g.maxMsgSize)
	}
	p := newPeer(tenantID, conn)
	g.registry.Join(tenantID, p)
	if g.settings != nil {
		g.settings.Warm(tenantID)
	}

	g.log.Info("peer joined room",
		zap.String("tenant_id", tenantID),
		zap.String("peer_id", p.ID))

	cleanup := func() {
		g.registry.Leave(tenantID, p)
		p.close()
		// Matches the long-standing behavior: offline is announced on
		// ANY disconnect in the room, a leaving monitor included. The
		// camera page re-asserts online, so monitors recover on the
		// next declaration.
		g.broadcastStatus(tenantID, model.CameraStatusOffline)
		g.log.Info("peer left room",
			zap.String("tenant_id", tenantID),
			zap.String("peer_id", p.ID),
			zap.String("role", string(p.Role())))
	}
	return p, cleanup
}

// DeclareCamera marks the peer as the stream source and announces
// camera presence to the whole room, the declaring peer included.
func (g *Gateway) DeclareCamera(p *Peer) {
	p.setRole(RoleCamera)
	g.log.Info("peer declared camera",
		zap.String("tenant_id", p.TenantID),
		zap.String("peer_id", p.ID))
	g.broadcastStatus(p.TenantID, model.CameraStatusOnline)
}

// DeclareMonitor marks the peer as a stream viewer.
func (g *Gateway) DeclareMonitor(p *Peer) {
	p.setRole(RoleMonitor)
	g.log.Info("peer declared monitor",
		zap.String("tenant_id", p.TenantID),
		zap.String("peer_id", p.ID))
}

// RelayFrame forwards an opaque frame blob to every monitor-declared
// peer in the sender's room, never back to the sender. The blob is not
// decoded, validated or size-checked here.
func (g *Gateway) RelayFrame(sender *Peer, frame []byte) {
	g.registry.BroadcastToRole(sender.TenantID, RoleMonitor,
		Message{Type: websocket.BinaryMessage, Data: frame}, sender)
}

func (g *Gateway) broadcastStatus(tenantID, status string) {
	payload, _ := json.Marshal(model.CameraStatus{Status: status})
	raw, _ := json.Marshal(model.Event{Event: model.EventCameraStatus, Data: payload})
	g.registry.Broadcast(tenantID, Message{Type: websocket.TextMessage, Data: raw}, nil)
}
