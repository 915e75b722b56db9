package signups

import (
	"context"

	"github.com/usly-events/server/internal/audit"
	"github.com/usly-events/server/internal/domain/events"
)

// Repository persists signups. Join and Leave take the audit entry so the
// implementation can write the signup and its audit trail atomically; a
// failed signup leaves no audit row and vice versa.
//
// Join runs under a lock on the event row: it re-checks that the event is
// still published and below capacity before inserting, and reports
// ErrEventFull, ErrEventNotPublished or ErrAlreadyJoined accordingly.
type Repository interface {
	Join(ctx context.Context, eventID, userID int64, entry audit.Entry) error
	Leave(ctx context.Context, eventID, userID int64, entry audit.Entry) error
	CountForEvent(ctx context.Context, eventID int64) (int64, error)
	ListForUser(ctx context.Context, userID int64, sort Sort, page events.Pagination) ([]UserSignup, int64, error)
	ListParticipants(ctx context.Context, eventID int64, page events.Pagination) ([]Participant, int64, error)
}
