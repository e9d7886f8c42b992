package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"support-desk-be/internal/entity"
	"support-desk-be/internal/repository/contract"
	"support-desk-be/internal/repository/specification"
	"support-desk-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

// fakeUow is an in-memory RepositoryFactory/UnitOfWork. Transactions
// are no-ops; a single mutex stands in for row locks, which is enough
// because the services' own per-link mutex serializes the critical
// sections under test.
type fakeUow struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.Session
	messages []*entity.Message
	links    map[uuid.UUID]*entity.MeetingLink
	events   []*entity.MeetingEvent
}

func newFakeUow() *fakeUow {
	return &fakeUow{
		sessions: make(map[uuid.UUID]*entity.Session),
		links:    make(map[uuid.UUID]*entity.MeetingLink),
	}
}

func (f *fakeUow) NewUnitOfWork(context.Context) unitofwork.UnitOfWork { return f }

func (f *fakeUow) Begin(context.Context) error { return nil }
func (f *fakeUow) Commit() error               { return nil }
func (f *fakeUow) Rollback() error             { return nil }

func (f *fakeUow) SessionRepository() contract.SessionRepository {
	return contractSessionRepo{f}
}

func (f *fakeUow) MessageRepository() contract.MessageRepository {
	return contractMessageRepo{f}
}

func (f *fakeUow) MeetingLinkRepository() contract.MeetingLinkRepository {
	return contractLinkRepo{f}
}

func (f *fakeUow) MeetingEventRepository() contract.MeetingEventRepository {
	return contractEventRepo{f}
}

func (f *fakeUow) addSession(s *entity.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.sessions[s.Id] = &cp
}

func (f *fakeUow) addLink(l *entity.MeetingLink) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *l
	f.links[l.Id] = &cp
}

func (f *fakeUow) addEvent(e *entity.MeetingEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *e
	cp.Seq = uint(len(f.events) + 1)
	f.events = append(f.events, &cp)
}

func (f *fakeUow) link(id uuid.UUID) *entity.MeetingLink {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.links[id]; ok {
		cp := *l
		return &cp
	}
	return nil
}

func specByID(specs []specification.Specification) (uuid.UUID, bool) {
	for _, s := range specs {
		if byID, ok := s.(specification.ByID); ok {
			return byID.ID, true
		}
	}
	return uuid.Nil, false
}

type contractSessionRepo struct{ f *fakeUow }

func (r contractSessionRepo) Create(_ context.Context, s *entity.Session) error {
	r.f.addSession(s)
	return nil
}

func (r contractSessionRepo) Update(_ context.Context, s *entity.Session) error {
	r.f.addSession(s)
	return nil
}

func (r contractSessionRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Session, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if id, ok := specByID(specs); ok {
		if s, found := r.f.sessions[id]; found {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

type contractMessageRepo struct{ f *fakeUow }

func (r contractMessageRepo) Create(_ context.Context, m *entity.Message) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if m.SentAt.IsZero() {
		m.SentAt = time.Now()
	}
	cp := *m
	r.f.messages = append(r.f.messages, &cp)
	return nil
}

func (r contractMessageRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Message, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	var sessionID *uuid.UUID
	var after *time.Time
	for _, s := range specs {
		switch spec := s.(type) {
		case specification.BySessionID:
			id := spec.SessionID
			sessionID = &id
		case specification.SentAfter:
			t := spec.Time
			after = &t
		}
	}

	var result []*entity.Message
	for _, m := range r.f.messages {
		if sessionID != nil && m.SessionId != *sessionID {
			continue
		}
		if after != nil && !m.SentAt.After(*after) {
			continue
		}
		cp := *m
		result = append(result, &cp)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].SentAt.Before(result[j].SentAt)
	})
	return result, nil
}

func (r contractMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	msgs, _ := r.FindAll(ctx, specs...)
	return int64(len(msgs)), nil
}

type contractLinkRepo struct{ f *fakeUow }

func (r contractLinkRepo) Create(_ context.Context, l *entity.MeetingLink) error {
	r.f.addLink(l)
	return nil
}

func (r contractLinkRepo) Update(_ context.Context, l *entity.MeetingLink) error {
	r.f.addLink(l)
	return nil
}

func (r contractLinkRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.MeetingLink, error) {
	if id, ok := specByID(specs); ok {
		return r.f.link(id), nil
	}
	return nil, nil
}

func (r contractLinkRepo) FindOneForUpdate(_ context.Context, id uuid.UUID) (*entity.MeetingLink, error) {
	return r.f.link(id), nil
}

func (r contractLinkRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.MeetingLink, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	var sessionID *uuid.UUID
	for _, s := range specs {
		if spec, ok := s.(specification.BySessionID); ok {
			id := spec.SessionID
			sessionID = &id
		}
	}

	var result []*entity.MeetingLink
	for _, l := range r.f.links {
		if sessionID != nil && l.SessionId != *sessionID {
			continue
		}
		cp := *l
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

type contractEventRepo struct{ f *fakeUow }

func (r contractEventRepo) Create(_ context.Context, e *entity.MeetingEvent) error {
	r.f.addEvent(e)
	return nil
}

func (r contractEventRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.MeetingEvent, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	var linkID *uuid.UUID
	for _, s := range specs {
		if spec, ok := s.(specification.ByMeetingLinkID); ok {
			id := spec.MeetingLinkID
			linkID = &id
		}
	}

	var result []*entity.MeetingEvent
	for _, e := range r.f.events {
		if linkID != nil && e.MeetingLinkId != *linkID {
			continue
		}
		cp := *e
		result = append(result, &cp)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].Seq < result[j].Seq
	})
	return result, nil
}
