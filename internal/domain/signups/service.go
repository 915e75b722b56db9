package signups

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/usly-events/server/internal/audit"
	"github.com/usly-events/server/internal/domain/events"
	"github.com/usly-events/server/internal/metrics"
)

// EventStore is the slice of the events repository the ledger needs.
type EventStore interface {
	GetByID(ctx context.Context, id int64) (events.Event, error)
}

type Service struct {
	repo   Repository
	events EventStore
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, eventStore EventStore, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: eventStore,
		logger: logger.With().Str("component", "signups").Logger(),
		now:    time.Now,
	}
}

// Join signs userID up for a published event. The pre-checks here give
// fast errors; the repository repeats the status and capacity checks under
// a row lock, so the answer holds even under concurrent joins.
func (s *Service) Join(ctx context.Context, eventID, userID int64, origin audit.Origin) error {
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if event.Status != events.StatusPublished {
		return ErrEventNotPublished
	}

	err = s.repo.Join(ctx, eventID, userID, audit.Entry{
		ActorID:   &userID,
		Action:    audit.ActionEventJoin,
		IP:        origin.IP,
		UserAgent: origin.UserAgent,
		Details:   fmt.Sprintf(`{"event_id":%d}`, eventID),
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		metrics.EventSignups.WithLabelValues("join", "rejected").Inc()
		return err
	}

	metrics.EventSignups.WithLabelValues("join", "ok").Inc()
	s.logger.Info().Int64("event_id", eventID).Int64("user_id", userID).Msg("user joined event")
	return nil
}

// Leave removes userID's signup. Like Join it only applies to published
// events; leaving a draft or archived event is rejected.
func (s *Service) Leave(ctx context.Context, eventID, userID int64, origin audit.Origin) error {
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if event.Status != events.StatusPublished {
		return ErrEventNotPublished
	}

	err = s.repo.Leave(ctx, eventID, userID, audit.Entry{
		ActorID:   &userID,
		Action:    audit.ActionEventLeave,
		IP:        origin.IP,
		UserAgent: origin.UserAgent,
		Details:   fmt.Sprintf(`{"event_id":%d}`, eventID),
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		metrics.EventSignups.WithLabelValues("leave", "rejected").Inc()
		return err
	}

	metrics.EventSignups.WithLabelValues("leave", "ok").Inc()
	s.logger.Info().Int64("event_id", eventID).Int64("user_id", userID).Msg("user left event")
	return nil
}

// ListForUser returns the caller's signups with their events, newest join
// first unless sortValue says otherwise.
func (s *Service) ListForUser(ctx context.Context, userID int64, sortValue string, page events.Pagination) ([]UserSignup, int64, error) {
	sort, err := ParseSort(sortValue)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListForUser(ctx, userID, sort, page.Clamp())
}

// Participants lists who joined an event. Only the event owner may see
// the list.
func (s *Service) Participants(ctx context.Context, eventID, requesterID int64, page events.Pagination) ([]Participant, int64, error) {
	if _, err := s.ownedEvent(ctx, eventID, requesterID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListParticipants(ctx, eventID, page.Clamp())
}

// Stats reports confirmed signups against capacity for the event owner.
func (s *Service) Stats(ctx context.Context, eventID, requesterID int64) (Stats, error) {
	event, err := s.ownedEvent(ctx, eventID, requesterID)
	if err != nil {
		return Stats{}, err
	}

	confirmed, err := s.repo.CountForEvent(ctx, eventID)
	if err != nil {
		return Stats{}, fmt.Errorf("count signups: %w", err)
	}

	stats := Stats{EventID: eventID, Capacity: event.Capacity, Confirmed: confirmed}
	if event.Capacity != nil {
		remaining := int64(*event.Capacity) - confirmed
		if remaining < 0 {
			remaining = 0
		}
		stats.Remaining = &remaining
	}
	return stats, nil
}

func (s *Service) loadEvent(ctx context.Context, eventID int64) (events.Event, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			return events.Event{}, ErrEventNotFound
		}
		return events.Event{}, fmt.Errorf("load event: %w", err)
	}
	return event, nil
}

func (s *Service) ownedEvent(ctx context.Context, eventID, requesterID int64) (events.Event, error) {
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return events.Event{}, err
	}
	if event.OwnerID != requesterID {
		return events.Event{}, events.ErrNotOwner
	}
	return event, nil
}
