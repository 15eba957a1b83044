package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Role is the advisory role a connection declares after joining its room.
type Role string

const (
	RoleUnassigned Role = ""
	RoleCamera     Role = "camera"
	RoleMonitor    Role = "monitor"
)

// Message is one prepared WebSocket frame: a gorilla message type plus
// its payload, pushed onto peer send queues as-is.
type Message struct {
	Type int
	Data []byte
}

// Peer is one live connection inside a tenant room.
type Peer struct {
	ID       string
	TenantID string
	Conn     *websocket.Conn
	Send     chan Message
	JoinedAt time.Time

	mu   sync.RWMutex
	role Role

	closeOnce sync.Once
	done      chan struct{}
}

func newPeer(tenantID string, conn *websocket.Conn) *Peer {
	return &Peer{
		ID:       uuid.New().String(),
		TenantID: tenantID,
		Conn:     conn,
		Send:     make(chan Message, 256),
		JoinedAt: time.Now(),
		done:     make(chan struct{}),
	}
}

// Role returns the peer's declared role.
func (p *Peer) Role() Role {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.role
}

func (p *Peer) setRole(r Role) {
	p.mu.Lock()
	p.role = r
	p.mu.Unlock()
}

// Done is closed when the peer leaves its room; the write pump selects
// on it instead of a closed Send channel.
func (p *Peer) Done() <-chan struct{} { return p.done }

func (p *Peer) close() {
	p.closeOnce.Do(func() { close(p.done) })
}

// send enqueues without blocking. A full buffer or a closed peer drops
// the message: delivery is at-most-once with no backpressure.
func (p *Peer) send(msg Message) bool {
	select {
	case <-p.done:
		return false
	default:
	}
	select {
	case p.Send <- msg:
		return true
	default:
		return false
	}
}

// Registry groups live peers by tenant id. Rooms exist only while at
// least one peer is joined; nothing here is persisted.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[*Peer]struct{}
	log   *zap.Logger
}

// NewRegistry creates an empty room registry.
func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		rooms: make(map[string]map[*Peer]struct{}),
		log:   log,
	}
}

// Join adds the peer to the tenant's room. Joining an already-joined
// peer is a no-op.
func (r *Registry) Join(tenantID string, p *Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room := r.rooms[tenantID]
	if room == nil {
		room = make(map[*Peer]struct{})
		r.rooms[tenantID] = room
	}
	if _, ok := room[p]; ok {
		return
	}
	room[p] = struct{}{}
}

// Leave removes the peer; an empty room is dropped entirely.
func (r *Registry) Leave(tenantID string, p *Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[tenantID]; ok {
		delete(room, p)
		if len(room) == 0 {
			delete(r.rooms, tenantID)
		}
	}
}

// Count returns the number of live peers in the tenant's room.
func (r *Registry) Count(tenantID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[tenantID])
}

// CountRole returns the number of peers with the given declared role.
func (r *Registry) CountRole(tenantID string, role Role) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for p := range r.rooms[tenantID] {
		if p.Role() == role {
			n++
		}
	}
	return n
}

// Broadcast sends msg to every peer in the tenant's room except exclude
// (nil means include everyone). An empty room is a silent no-op.
// Returns the number of peers the message was enqueued for.
func (r *Registry) Broadcast(tenantID string, msg Message, exclude *Peer) int {
	return r.broadcast(tenantID, msg, exclude, nil)
}

// BroadcastToRole is Broadcast narrowed to peers with a declared role.
func (r *Registry) BroadcastToRole(tenantID string, role Role, msg Message, exclude *Peer) int {
	return r.broadcast(tenantID, msg, exclude, func(p *Peer) bool { return p.Role() == role })
}

func (r *Registry) broadcast(tenantID string, msg Message, exclude *Peer, match func(*Peer) bool) int {
	r.mu.RLock()
	room, ok := r.rooms[tenantID]
	if !ok {
		r.mu.RUnlock()
		return 0
	}
	// Copy recipients so no lock is held while enqueueing.
	peers := make([]*Peer, 0, len(room))
	for p := range room {
		if p == exclude {
			continue
		}
		if match != nil && !match(p) {
			continue
		}
		peers = append(peers, p)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, p := range peers {
		if p.send(msg) {
			delivered++
		} else {
			r.log.Warn("peer send buffer full, dropping message",
				zap.String("tenant_id", tenantID),
				zap.String("peer_id", p.ID))
		}
	}
	return delivered
}
