package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByMeetingLinkID filters meeting events for one link
type ByMeetingLinkID struct {
	MeetingLinkID uuid.UUID
}

func (s ByMeetingLinkID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("meeting_link_id = ?", s.MeetingLinkID)
}

// OrderByEventTime is the canonical event-log ordering: creation time
// ascending, insertion sequence breaking ties.
type OrderByEventTime struct{}

func (s OrderByEventTime) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("seq ASC")
}
