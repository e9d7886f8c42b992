package websocket

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Presence tracks which identities are currently online per session.
// Purely in-process state: it lives and dies with the hub instance, so
// separate hubs (e.g. in tests) never interfere.
type Presence struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]map[string]struct{}
}

func NewPresence() *Presence {
	return &Presence{
		sessions: make(map[uuid.UUID]map[string]struct{}),
	}
}

func (p *Presence) Add(sessionID uuid.UUID, identity string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	set, ok := p.sessions[sessionID]
	if !ok {
		set = make(map[string]struct{})
		p.sessions[sessionID] = set
	}
	set[identity] = struct{}{}
}

// Remove drops an identity; removing the last one deletes the whole
// session entry so the map does not grow with dead sessions.
func (p *Presence) Remove(sessionID uuid.UUID, identity string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	set, ok := p.sessions[sessionID]
	if !ok {
		return
	}
	delete(set, identity)
	if len(set) == 0 {
		delete(p.sessions, sessionID)
	}
}

// Snapshot returns a sorted copy of the online set, never the live map.
func (p *Presence) Snapshot(sessionID uuid.UUID) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	set := p.sessions[sessionID]
	online := make([]string, 0, len(set))
	for identity := range set {
		online = append(online, identity)
	}
	sort.Strings(online)
	return online
}

// SessionCount reports how many sessions currently have anyone online.
func (p *Presence) SessionCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.sessions)
}
