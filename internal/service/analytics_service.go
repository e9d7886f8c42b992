package service

import (
	"context"
	"sort"
	"time"

	"support-desk-be/internal/dto"
	"support-desk-be/internal/entity"
	"support-desk-be/internal/pkg/serverutils"
	"support-desk-be/internal/repository/specification"
	"support-desk-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

type IAnalyticsService interface {
	MeetingSummary(ctx context.Context, linkID uuid.UUID) (*dto.MeetingTimeline, error)
	SessionSummary(ctx context.Context, sessionID uuid.UUID) (*dto.SessionSummary, error)

	// Invalidate drops the cached timeline for a link; called by the
	// event intake pipeline after each persisted event.
	Invalidate(linkID uuid.UUID)
}

type analyticsService struct {
	uowFactory unitofwork.RepositoryFactory
	cache      *gocache.Cache
}

func NewAnalyticsService(uowFactory unitofwork.RepositoryFactory, summaryTTL time.Duration) IAnalyticsService {
	return &analyticsService{
		uowFactory: uowFactory,
		cache:      gocache.New(summaryTTL, 10*time.Minute),
	}
}

func (s *analyticsService) MeetingSummary(ctx context.Context, linkID uuid.UUID) (*dto.MeetingTimeline, error) {
	if cached, found := s.cache.Get(linkID.String()); found {
		return cached.(*dto.MeetingTimeline), nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	link, err := uow.MeetingLinkRepository().FindOne(ctx, specification.ByID{ID: linkID})
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, serverutils.NotFound("meeting link does not exist")
	}

	timeline, err := s.buildForLink(ctx, uow, linkID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(linkID.String(), timeline, gocache.DefaultExpiration)
	return timeline, nil
}

func (s *analyticsService) SessionSummary(ctx context.Context, sessionID uuid.UUID) (*dto.SessionSummary, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: sessionID})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NotFound("session does not exist")
	}

	links, err := uow.MeetingLinkRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionID},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	summary := &dto.SessionSummary{
		SessionId:     sessionID,
		TotalMeetings: len(links),
		Meetings:      make([]dto.MeetingTimeline, 0, len(links)),
	}

	for _, link := range links {
		timeline, err := s.buildForLink(ctx, uow, link.Id)
		if err != nil {
			return nil, err
		}
		summary.Meetings = append(summary.Meetings, *timeline)

		if timeline.CallStart != nil {
			if summary.FirstMeetingStart == nil || timeline.CallStart.Before(*summary.FirstMeetingStart) {
				summary.FirstMeetingStart = timeline.CallStart
			}
		}
		if timeline.CallEnd != nil {
			if summary.LastMeetingEnd == nil || timeline.CallEnd.After(*summary.LastMeetingEnd) {
				summary.LastMeetingEnd = timeline.CallEnd
			}
		}
	}

	return summary, nil
}

func (s *analyticsService) Invalidate(linkID uuid.UUID) {
	s.cache.Delete(linkID.String())
}

func (s *analyticsService) buildForLink(ctx context.Context, uow unitofwork.UnitOfWork, linkID uuid.UUID) (*dto.MeetingTimeline, error) {
	events, err := uow.MeetingEventRepository().FindAll(ctx,
		specification.ByMeetingLinkID{MeetingLinkID: linkID},
		specification.OrderByEventTime{},
	)
	if err != nil {
		return nil, err
	}
	return BuildTimeline(linkID, events), nil
}

// BuildTimeline reconstructs a meeting's timeline from its ordered
// event list. It is a pure function: the same list always yields the
// same output, and no wall-clock time leaks in: open screen shares are
// closed at call end, not "now".
func BuildTimeline(linkID uuid.UUID, events []*entity.MeetingEvent) *dto.MeetingTimeline {
	timeline := &dto.MeetingTimeline{
		MeetingLinkId: linkID,
		Participants:  []string{},
		Activity:      []dto.ParticipantActivity{},
		ScreenShares:  []dto.ScreenShareInterval{},
		EventCount:    len(events),
	}
	if len(events) == 0 {
		return timeline
	}

	participants := make(map[string]struct{})
	firstJoined := make(map[string]time.Time)
	lastLeft := make(map[string]time.Time)

	var callStart, callEnd *time.Time

	for _, e := range events {
		identity := ""
		if e.Identity != nil {
			identity = *e.Identity
		}
		if identity != "" {
			participants[identity] = struct{}{}
		}

		switch e.EventType {
		case entity.EventJoined:
			if identity != "" {
				if callStart == nil {
					t := e.CreatedAt
					callStart = &t
				}
				if _, seen := firstJoined[identity]; !seen {
					firstJoined[identity] = e.CreatedAt
				}
			}
		case entity.EventLeft:
			t := e.CreatedAt
			callEnd = &t
			if identity != "" {
				lastLeft[identity] = e.CreatedAt
			}
		}
	}

	// Fallbacks: a meeting may have no explicit join/leave events at
	// all (e.g. screen-share only), so bound the call by the list.
	if callStart == nil {
		t := events[0].CreatedAt
		callStart = &t
	}
	if callEnd == nil {
		t := events[len(events)-1].CreatedAt
		callEnd = &t
	}

	timeline.CallStart = callStart
	timeline.CallEnd = callEnd
	duration := callEnd.Sub(*callStart).Seconds()
	timeline.DurationSeconds = &duration

	for identity := range participants {
		timeline.Participants = append(timeline.Participants, identity)
	}
	sort.Strings(timeline.Participants)

	for _, identity := range timeline.Participants {
		activity := dto.ParticipantActivity{Identity: identity}
		if t, ok := firstJoined[identity]; ok {
			joined := t
			activity.FirstJoined = &joined
		}
		if t, ok := lastLeft[identity]; ok {
			left := t
			activity.LastLeft = &left
		}
		timeline.Activity = append(timeline.Activity, activity)
	}

	timeline.ScreenShares = pairScreenShares(events, *callEnd)

	return timeline
}

// pairScreenShares matches each screen_share_started with the next
// screen_share_stopped for the same identity. A second start with an
// open share overwrites the open start time (last-start-wins). Shares
// still open at the end of the list are closed at call end.
func pairScreenShares(events []*entity.MeetingEvent, callEnd time.Time) []dto.ScreenShareInterval {
	intervals := []dto.ScreenShareInterval{}
	open := make(map[string]time.Time)

	for _, e := range events {
		if e.Identity == nil || *e.Identity == "" {
			continue
		}
		identity := *e.Identity

		switch e.EventType {
		case entity.EventScreenShareStarted:
			open[identity] = e.CreatedAt
		case entity.EventScreenShareStopped:
			start, ok := open[identity]
			if !ok {
				continue // stop without a start, ignore
			}
			delete(open, identity)
			intervals = append(intervals, dto.ScreenShareInterval{
				Identity:        identity,
				Start:           start,
				End:             e.CreatedAt,
				DurationSeconds: e.CreatedAt.Sub(start).Seconds(),
			})
		}
	}

	// Close leftovers deterministically: sorted by start time, then
	// identity, so map iteration order never shows through.
	leftovers := make([]dto.ScreenShareInterval, 0, len(open))
	for identity, start := range open {
		leftovers = append(leftovers, dto.ScreenShareInterval{
			Identity:        identity,
			Start:           start,
			End:             callEnd,
			DurationSeconds: callEnd.Sub(start).Seconds(),
		})
	}
	sort.Slice(leftovers, func(i, j int) bool {
		if !leftovers[i].Start.Equal(leftovers[j].Start) {
			return leftovers[i].Start.Before(leftovers[j].Start)
		}
		return leftovers[i].Identity < leftovers[j].Identity
	})
	intervals = append(intervals, leftovers...)

	return intervals
}
