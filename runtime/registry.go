package runtime

import (
	"sync"
	"time"

	"roomhub/contract"
	"roomhub/domain"
)

type Set map[domain.Handle]struct{}

type entry struct {
	conn domain.Connection
	sink contract.EventSink
}

// Registry is the process-wide table of live connections.
//
// It is explicitly constructed and owned by the caller, not a singleton.
// Handles come from a monotonic counter so a handle is never reassigned
// within the process lifetime; the (handle, createdAt) pair is still the
// identity tokens are checked against, which keeps stale credentials dead
// even if the allocation policy ever changes.
type Registry struct {
	mu          sync.RWMutex
	next        uint64
	handles     map[domain.Handle]entry
	roomMembers map[domain.RoomID]Set // map room to handles
}

func NewRegistry() *Registry {
	return &Registry{
		handles:     make(map[domain.Handle]entry),
		roomMembers: make(map[domain.RoomID]Set),
	}
}

// Register allocates a fresh handle, stamps the creation time, and stores
// the connection with its delivery sink. The returned handle is never held
// by another live connection.
func (r *Registry) Register(room domain.RoomID, name string, sink contract.EventSink) domain.Connection {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	conn := domain.Connection{
		Handle:    domain.Handle(r.next),
		Room:      room,
		Name:      name,
		CreatedAt: time.Now(),
	}
	r.handles[conn.Handle] = entry{conn: conn, sink: sink}

	if _, ok := r.roomMembers[room]; !ok {
		r.roomMembers[room] = make(Set)
	}
	r.roomMembers[room][conn.Handle] = struct{}{}
	return conn
}

// Remove deletes the connection if present. It cleans up the room set and
// ensures no empty sets are left behind to prevent memory leaks over time.
func (r *Registry) Remove(handle domain.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.handles[handle]
	if !ok {
		return
	}
	delete(r.handles, handle)

	if members, ok := r.roomMembers[e.conn.Room]; ok {
		delete(members, handle)
		if len(members) == 0 {
			delete(r.roomMembers, e.conn.Room)
		}
	}
}

// Get returns the live connection for a bare handle. This is the weaker,
// non-credential variant used when the producer already holds the handle.
func (r *Registry) Get(handle domain.Handle) (domain.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.handles[handle]
	if !ok {
		return domain.Connection{}, false
	}
	return e.conn, true
}

// Lookup returns the live connection only if it is present AND its creation
// time exactly matches the expected one. This is the sole authorization
// primitive for HTTP callers: a token for a removed connection fails here
// even though it still parses and its signature still checks out.
func (r *Registry) Lookup(handle domain.Handle, createdAt time.Time) (domain.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.handles[handle]
	if !ok || !e.conn.CreatedAt.Equal(createdAt) {
		return domain.Connection{}, false
	}
	return e.conn, true
}

// ListByRoom retrieves every live connection of a room with its sink.
// Order is unspecified; fan-out is order-sensitive across events only.
func (r *Registry) ListByRoom(room domain.RoomID) []contract.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.roomMembers[room]
	if !ok {
		return nil
	}
	res := make([]contract.Member, 0, len(members))
	for handle := range members {
		if e, exists := r.handles[handle]; exists {
			res = append(res, contract.Member{Conn: e.conn, Sink: e.sink})
		}
	}
	return res
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

// Rooms returns the member count per room.
func (r *Registry) Rooms() map[domain.RoomID]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make(map[domain.RoomID]int, len(r.roomMembers))
	for room, members := range r.roomMembers {
		res[room] = len(members)
	}
	return res
}
