package async

import "sync"

// Pending is anything that can report completion, e.g. a *Future.
type Pending interface {
	IsComplete() bool
}

// Group tracks sets of pending work under opaque ids so a caller can ask
// whether anything in a batch is still running. The zero value is not usable;
// call NewGroup.
type Group struct {
	mu      sync.Mutex
	members map[string][]Pending
}

// NewGroup returns an empty registry.
func NewGroup() *Group {
	return &Group{members: make(map[string][]Pending)}
}

// Add registers p under id.
func (g *Group) Add(id string, p Pending) {
	if id == "" || p == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.members[id] = append(g.members[id], p)
}

// IsPending reports whether any member of id has not completed.
// Completed members are dropped, and so is an id with no pending members left.
func (g *Group) IsPending(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	members := g.members[id]
	pending := members[:0]
	for _, p := range members {
		if !p.IsComplete() {
			pending = append(pending, p)
		}
	}
	if len(pending) == 0 {
		delete(g.members, id)
		return false
	}
	g.members[id] = pending
	return true
}

// Forget drops id and its members.
func (g *Group) Forget(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.members, id)
}
