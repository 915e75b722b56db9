// Package signups tracks which users attend which events. Capacity is
// enforced at the storage layer under a row lock so two concurrent joins
// cannot both take the last seat.
package signups

import (
	"errors"
	"time"

	"github.com/usly-events/server/internal/domain/events"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrEventNotPublished = errors.New("event is not open for signups")
	ErrEventFull         = errors.New("event is at capacity")
	ErrAlreadyJoined     = errors.New("user already joined this event")
	ErrNotJoined         = errors.New("user has not joined this event")
	ErrInvalidSort       = errors.New("unsupported sort order")
)

type Signup struct {
	ID        int64
	EventID   int64
	UserID    int64
	CreatedAt time.Time
}

// UserSignup pairs a signup with the event it belongs to, for the
// "my signups" listing.
type UserSignup struct {
	Signup Signup
	Event  events.Event
}

type Participant struct {
	UserID   int64
	Email    string
	JoinedAt time.Time
}

// Stats summarizes attendance for an event owner. Remaining is nil when
// the event has no capacity limit.
type Stats struct {
	EventID   int64
	Capacity  *int32
	Confirmed int64
	Remaining *int64
}

type Sort string

const (
	SortJoinedDesc Sort = "joined_desc"
	SortJoinedAsc  Sort = "joined_asc"
	SortStartAsc   Sort = "start_asc"
	SortStartDesc  Sort = "start_desc"
)

// ParseSort maps a query-string value to a sort order. Empty input means
// most recently joined first.
func ParseSort(value string) (Sort, error) {
	switch Sort(value) {
	case "":
		return SortJoinedDesc, nil
	case SortJoinedDesc, SortJoinedAsc, SortStartAsc, SortStartDesc:
		return Sort(value), nil
	default:
		return "", ErrInvalidSort
	}
}
