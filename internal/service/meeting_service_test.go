package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"support-desk-be/internal/config"
	"support-desk-be/internal/dto"
	"support-desk-be/internal/entity"
	"support-desk-be/internal/pkg/serverutils"
	"support-desk-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu    sync.Mutex
	calls []uuid.UUID
}

func (n *recordingNotifier) NotifyMeetingStarted(_ uuid.UUID, linkID uuid.UUID) {
	n.mu.Lock()
	n.calls = append(n.calls, linkID)
	n.mu.Unlock()
}

type fixedProvider struct {
	token string
	err   error
}

func (p fixedProvider) IssueCredential(string, string) (string, error) {
	return p.token, p.err
}

func testMeetingCfg() config.MeetingConfig {
	return config.MeetingConfig{
		MeetBaseURL:         "http://localhost/meet/",
		RoomPrefix:          "support",
		DefaultAllowedCount: 1,
		SummaryCacheTTL:     time.Minute,
	}
}

func newTestMeetingService(f *fakeUow, notifier MeetingNotifier) *meetingService {
	svc := NewMeetingService(f, testMeetingCfg(), fixedProvider{token: "tok-123"}, notifier, nil, "test-instance", nopLogger{})
	return svc.(*meetingService)
}

func seedSession(f *fakeUow) uuid.UUID {
	id := uuid.New()
	f.addSession(&entity.Session{Id: id, Title: "test", IsActive: true, CreatedAt: time.Now()})
	return id
}

func seedLink(f *fakeUow, sessionID uuid.UUID, oneTime bool, allowed int, expiresAt *time.Time) uuid.UUID {
	id := uuid.New()
	f.addLink(&entity.MeetingLink{
		Id:           id,
		SessionId:    sessionID,
		RoomName:     "support-" + id.String(),
		OneTime:      oneTime,
		AllowedCount: allowed,
		ExpiresAt:    expiresAt,
		CreatedAt:    time.Now(),
	})
	return id
}

func TestCreateLinkDefaults(t *testing.T) {
	f := newFakeUow()
	svc := newTestMeetingService(f, nil)
	sid := seedSession(f)

	res, err := svc.CreateLink(context.Background(), sid, &dto.CreateMeetingLinkRequest{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.RoomName, "support-"))
	assert.Equal(t, 1, res.AllowedCount)
	assert.Equal(t, 0, res.IssuedCount)
	assert.False(t, res.OneTime)
	assert.Equal(t, "http://localhost/meet/"+res.Id.String(), res.PublicURL)

	// The session row records the newest link's public URL.
	session, err := f.SessionRepository().FindOne(context.Background(), specification.ByID{ID: sid})
	require.NoError(t, err)
	require.NotNil(t, session.MeetingLink)
	assert.Equal(t, res.PublicURL, *session.MeetingLink)
}

func TestCreateLinkSessionNotFound(t *testing.T) {
	f := newFakeUow()
	svc := newTestMeetingService(f, nil)

	_, err := svc.CreateLink(context.Background(), uuid.New(), &dto.CreateMeetingLinkRequest{})
	assertAppError(t, err, 404, serverutils.CodeNotFound)
}

func TestValidate(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name       string
		mutate     func(l *entity.MeetingLink)
		wantStatus int
		wantCode   string
	}{
		{
			name:   "fresh link is valid",
			mutate: func(l *entity.MeetingLink) {},
		},
		{
			name:       "expired",
			mutate:     func(l *entity.MeetingLink) { l.ExpiresAt = &past },
			wantStatus: 410,
			wantCode:   serverutils.CodeExpired,
		},
		{
			name: "one-time used",
			mutate: func(l *entity.MeetingLink) {
				l.OneTime = true
				l.Used = true
				l.IssuedCount = 1
			},
			wantStatus: 410,
			wantCode:   serverutils.CodeUsed,
		},
		{
			name: "capacity exhausted",
			mutate: func(l *entity.MeetingLink) {
				l.AllowedCount = 2
				l.IssuedCount = 2
			},
			wantStatus: 410,
			wantCode:   serverutils.CodeFull,
		},
		{
			name: "expired outranks used",
			mutate: func(l *entity.MeetingLink) {
				l.ExpiresAt = &past
				l.OneTime = true
				l.Used = true
			},
			wantStatus: 410,
			wantCode:   serverutils.CodeExpired,
		},
		{
			name: "future expiry is still valid",
			mutate: func(l *entity.MeetingLink) {
				l.ExpiresAt = &future
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeUow()
			svc := newTestMeetingService(f, nil)
			sid := seedSession(f)
			linkID := seedLink(f, sid, false, 1, nil)

			link := f.link(linkID)
			tt.mutate(link)
			f.addLink(link)

			res, err := svc.Validate(context.Background(), linkID)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.True(t, res.Valid)
			} else {
				assertAppError(t, err, tt.wantStatus, tt.wantCode)
			}
		})
	}
}

func TestValidateNotFound(t *testing.T) {
	f := newFakeUow()
	svc := newTestMeetingService(f, nil)

	_, err := svc.Validate(context.Background(), uuid.New())
	assertAppError(t, err, 404, serverutils.CodeNotFound)
}

func TestValidateDoesNotConsume(t *testing.T) {
	f := newFakeUow()
	svc := newTestMeetingService(f, nil)
	sid := seedSession(f)
	linkID := seedLink(f, sid, true, 1, nil)

	for i := 0; i < 5; i++ {
		res, err := svc.Validate(context.Background(), linkID)
		require.NoError(t, err)
		assert.True(t, res.Valid)
	}

	assert.Equal(t, 0, f.link(linkID).IssuedCount)
	assert.False(t, f.link(linkID).Used)
}

func TestIssueOneTimeLink(t *testing.T) {
	f := newFakeUow()
	notifier := &recordingNotifier{}
	svc := newTestMeetingService(f, notifier)
	sid := seedSession(f)
	linkID := seedLink(f, sid, true, 1, nil)

	res, err := svc.Issue(context.Background(), linkID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", res.Token)
	assert.Equal(t, "alice", res.Identity)
	assert.Equal(t, 1, res.IssuedCount)

	stored := f.link(linkID)
	assert.True(t, stored.Used)
	assert.NotNil(t, stored.LastIssuedAt)

	// Second attempt is Gone, not NotFound.
	_, err = svc.Issue(context.Background(), linkID, "bob")
	assertAppError(t, err, 410, serverutils.CodeUsed)

	// The first issuance appended a meeting_started event and pinged
	// the hub exactly once.
	events, err := f.MeetingEventRepository().FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, entity.EventMeetingStarted, events[0].EventType)
	assert.Equal(t, []uuid.UUID{linkID}, notifier.calls)
}

func TestIssueRequiresIdentity(t *testing.T) {
	f := newFakeUow()
	svc := newTestMeetingService(f, nil)
	sid := seedSession(f)
	linkID := seedLink(f, sid, false, 1, nil)

	_, err := svc.Issue(context.Background(), linkID, "")
	assertAppError(t, err, 400, "missing_identity")
	assert.Equal(t, 0, f.link(linkID).IssuedCount)
}

func TestIssueExpiredLink(t *testing.T) {
	f := newFakeUow()
	svc := newTestMeetingService(f, nil)
	sid := seedSession(f)
	past := time.Now().Add(-time.Minute)
	linkID := seedLink(f, sid, false, 5, &past)

	_, err := svc.Issue(context.Background(), linkID, "alice")
	assertAppError(t, err, 410, serverutils.CodeExpired)
	assert.Equal(t, 0, f.link(linkID).IssuedCount)
}

func TestIssueProviderFailureFallsBack(t *testing.T) {
	f := newFakeUow()
	sid := seedSession(f)
	linkID := seedLink(f, sid, false, 1, nil)

	svc := NewMeetingService(f, testMeetingCfg(), fixedProvider{err: assert.AnError}, nil, nil, "test-instance", nopLogger{})

	res, err := svc.Issue(context.Background(), linkID, "alice")
	require.NoError(t, err)
	// The issuance committed, so the caller still gets a usable token.
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, 1, f.link(linkID).IssuedCount)
}

func TestIssueConcurrentNeverOverissues(t *testing.T) {
	const workers = 16
	const allowed = 3

	f := newFakeUow()
	svc := newTestMeetingService(f, &recordingNotifier{})
	sid := seedSession(f)
	linkID := seedLink(f, sid, false, allowed, nil)

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.Issue(context.Background(), linkID, "user-"+uuid.NewString())
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assertAppError(t, err, 410, serverutils.CodeFull)
		}
	}
	assert.Equal(t, allowed, succeeded)
	assert.Equal(t, allowed, f.link(linkID).IssuedCount)
}

func TestIssueConcurrentOneTimeSingleWinner(t *testing.T) {
	const workers = 8

	f := newFakeUow()
	svc := newTestMeetingService(f, &recordingNotifier{})
	sid := seedSession(f)
	linkID := seedLink(f, sid, true, 1, nil)

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Issue(context.Background(), linkID, uuid.NewString())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.True(t, f.link(linkID).Used)
	assert.Equal(t, 1, f.link(linkID).IssuedCount)
}

func TestIssueExpiryUsesInjectedClock(t *testing.T) {
	f := newFakeUow()
	svc := newTestMeetingService(f, nil)
	sid := seedSession(f)
	expires := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	linkID := seedLink(f, sid, false, 1, &expires)

	svc.now = func() time.Time { return expires.Add(-time.Second) }
	_, err := svc.Issue(context.Background(), linkID, "alice")
	require.NoError(t, err)

	f.addLink(&entity.MeetingLink{Id: linkID, SessionId: sid, RoomName: "r", AllowedCount: 5, ExpiresAt: &expires})
	svc.now = func() time.Time { return expires.Add(time.Second) }
	_, err = svc.Issue(context.Background(), linkID, "alice")
	assertAppError(t, err, 410, serverutils.CodeExpired)
}

func assertAppError(t *testing.T, err error, wantStatus int, wantCode string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*serverutils.AppError)
	require.True(t, ok, "expected *serverutils.AppError, got %T", err)
	assert.Equal(t, wantStatus, appErr.Status)
	assert.Equal(t, wantCode, appErr.Code)
}
