package websocket

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPresenceAddRemove(t *testing.T) {
	p := NewPresence()
	sid := uuid.New()

	p.Add(sid, "alice")
	p.Add(sid, "bob")
	p.Add(sid, "alice") // duplicate identity is a no-op

	assert.Equal(t, []string{"alice", "bob"}, p.Snapshot(sid))

	p.Remove(sid, "alice")
	assert.Equal(t, []string{"bob"}, p.Snapshot(sid))

	p.Remove(sid, "bob")
	assert.Empty(t, p.Snapshot(sid))
	assert.Equal(t, 0, p.SessionCount())
}

func TestPresenceSessionsAreIndependent(t *testing.T) {
	p := NewPresence()
	a := uuid.New()
	b := uuid.New()

	p.Add(a, "alice")
	p.Add(b, "bob")

	assert.Equal(t, []string{"alice"}, p.Snapshot(a))
	assert.Equal(t, []string{"bob"}, p.Snapshot(b))

	p.Remove(a, "alice")
	assert.Empty(t, p.Snapshot(a))
	assert.Equal(t, []string{"bob"}, p.Snapshot(b))
}

func TestPresenceSnapshotIsSortedCopy(t *testing.T) {
	p := NewPresence()
	sid := uuid.New()

	p.Add(sid, "zoe")
	p.Add(sid, "adam")
	p.Add(sid, "mia")

	snap := p.Snapshot(sid)
	assert.Equal(t, []string{"adam", "mia", "zoe"}, snap)

	// Mutating the returned slice must not touch the registry.
	snap[0] = "mallory"
	assert.Equal(t, []string{"adam", "mia", "zoe"}, p.Snapshot(sid))
}

func TestPresenceRemoveUnknownIdentity(t *testing.T) {
	p := NewPresence()
	sid := uuid.New()

	p.Remove(sid, "ghost") // never added; must not panic
	p.Add(sid, "alice")
	p.Remove(sid, "ghost")

	assert.Equal(t, []string{"alice"}, p.Snapshot(sid))
}
