package dto

import (
	"time"

	"github.com/google/uuid"
)

type ScreenShareInterval struct {
	Identity        string    `json:"identity"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationSeconds float64   `json:"duration_seconds"`
}

type ParticipantActivity struct {
	Identity    string     `json:"identity"`
	FirstJoined *time.Time `json:"first_joined"`
	LastLeft    *time.Time `json:"last_left"`
}

type MeetingTimeline struct {
	MeetingLinkId   uuid.UUID             `json:"meeting_link_id"`
	Participants    []string              `json:"participants"`
	CallStart       *time.Time            `json:"call_start"`
	CallEnd         *time.Time            `json:"call_end"`
	DurationSeconds *float64              `json:"duration_seconds"`
	Activity        []ParticipantActivity `json:"activity"`
	ScreenShares    []ScreenShareInterval `json:"screen_shares"`
	EventCount      int                   `json:"event_count"`
}

type SessionSummary struct {
	SessionId         uuid.UUID         `json:"session_id"`
	TotalMeetings     int               `json:"total_meetings"`
	FirstMeetingStart *time.Time        `json:"first_meeting_start"`
	LastMeetingEnd    *time.Time        `json:"last_meeting_end"`
	Meetings          []MeetingTimeline `json:"meetings"`
}
