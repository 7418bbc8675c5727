package hub

import "sync"

// Registry is the process-wide map of live connections, keyed by room and
// by user within the room. The outer lock guards only the room table;
// each room's member map has its own lock, so a broadcast snapshot of one
// room never excludes a join or leave on another. All lookups return
// snapshots; no caller ever holds a registry lock across a network write.
type Registry struct {
	mu    sync.RWMutex
	rooms map[int64]*roomState
}

type roomState struct {
	mu      sync.Mutex
	members map[string]*Connection

	// gone is set when the last member leaves and the room is unlinked
	// from the table. A join that raced the unlink sees it and retries
	// against a fresh entry instead of inserting into an orphan.
	gone bool
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[int64]*roomState)}
}

// Join inserts conn for (room, user). A second join under the same identity
// replaces the prior entry (last join wins); the displaced connection is
// returned and the caller must close it.
func (r *Registry) Join(room int64, user string, conn *Connection) *Connection {
	for {
		r.mu.Lock()
		rm := r.rooms[room]
		if rm == nil {
			rm = &roomState{members: make(map[string]*Connection)}
			r.rooms[room] = rm
		}
		r.mu.Unlock()

		rm.mu.Lock()
		if rm.gone {
			rm.mu.Unlock()
			continue
		}
		prev := rm.members[user]
		rm.members[user] = conn
		if prev != nil {
			prev.markReplaced()
		}
		rm.mu.Unlock()
		return prev
	}
}

// Leave removes and returns the entry for (room, user). Absent entries are
// not an error; a double leave observes absent and is a no-op.
func (r *Registry) Leave(room int64, user string) (*Connection, bool) {
	rm := r.room(room)
	if rm == nil {
		return nil, false
	}

	rm.mu.Lock()
	conn, ok := rm.members[user]
	if !ok {
		rm.mu.Unlock()
		return nil, false
	}
	delete(rm.members, user)
	empty := len(rm.members) == 0
	if empty {
		rm.gone = true
	}
	rm.mu.Unlock()

	if empty {
		r.unlink(room, rm)
	}
	return conn, true
}

// Drop removes conn only if it is still the registered entry for its
// (room, user). Session teardown and failed-delivery cleanup use it so a
// stale connection cannot evict its replacement.
func (r *Registry) Drop(conn *Connection) bool {
	rm := r.room(conn.Room)
	if rm == nil {
		return false
	}

	rm.mu.Lock()
	if rm.members[conn.User] != conn {
		rm.mu.Unlock()
		return false
	}
	delete(rm.members, conn.User)
	empty := len(rm.members) == 0
	if empty {
		rm.gone = true
	}
	rm.mu.Unlock()

	if empty {
		r.unlink(conn.Room, rm)
	}
	return true
}

// Get returns the live connection for (room, user), if any.
func (r *Registry) Get(room int64, user string) (*Connection, bool) {
	rm := r.room(room)
	if rm == nil {
		return nil, false
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	conn, ok := rm.members[user]
	return conn, ok
}

// Members returns a snapshot of the identities currently joined to room.
func (r *Registry) Members(room int64) []string {
	rm := r.room(room)
	if rm == nil {
		return nil
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	out := make([]string, 0, len(rm.members))
	for user := range rm.members {
		out = append(out, user)
	}
	return out
}

// All returns a point-in-time fan-out list for room. Order is unspecified.
func (r *Registry) All(room int64) []*Connection {
	rm := r.room(room)
	if rm == nil {
		return nil
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	out := make([]*Connection, 0, len(rm.members))
	for _, conn := range rm.members {
		out = append(out, conn)
	}
	return out
}

// Rooms returns the identifiers of rooms with at least one live connection.
func (r *Registry) Rooms() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]int64, 0, len(r.rooms))
	for room := range r.rooms {
		out = append(out, room)
	}
	return out
}

func (r *Registry) Counts() (rooms, conns int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms = len(r.rooms)
	for _, rm := range r.rooms {
		rm.mu.Lock()
		conns += len(rm.members)
		rm.mu.Unlock()
	}
	return rooms, conns
}

func (r *Registry) room(room int64) *roomState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[room]
}

// unlink removes a room from the table, but only if it still maps to the
// emptied state; a racing join may already have installed a fresh one.
func (r *Registry) unlink(room int64, rm *roomState) {
	r.mu.Lock()
	if r.rooms[room] == rm {
		delete(r.rooms, room)
	}
	r.mu.Unlock()
}
