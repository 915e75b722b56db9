package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/usly-events/server/internal/audit"
	"github.com/usly-events/server/internal/domain/events"
	"github.com/usly-events/server/internal/domain/signups"
)

var _ signups.Repository = (*SignupRepository)(nil)

type SignupRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *SignupRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

// Join inserts the signup and its audit row in one transaction. The event
// row is locked first, so the published/capacity check and the insert are
// atomic with respect to concurrent joins; the unique (event_id, user_id)
// constraint backstops double joins.
func (r *SignupRepository) Join(ctx context.Context, eventID, userID int64, entry audit.Entry) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		var (
			status   string
			capacity *int32
		)
		row := tx.QueryRow(ctx, `SELECT status, capacity FROM events WHERE id = $1 FOR UPDATE`, eventID)
		if err := row.Scan(&status, &capacity); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return signups.ErrEventNotFound
			}
			return fmt.Errorf("lock event: %w", err)
		}
		if events.Status(status) != events.StatusPublished {
			return signups.ErrEventNotPublished
		}

		if capacity != nil {
			var confirmed int64
			row := tx.QueryRow(ctx, `SELECT count(*) FROM signups WHERE event_id = $1`, eventID)
			if err := row.Scan(&confirmed); err != nil {
				return fmt.Errorf("count signups: %w", err)
			}
			if confirmed >= int64(*capacity) {
				return signups.ErrEventFull
			}
		}

		_, err := tx.Exec(ctx, `INSERT INTO signups (event_id, user_id) VALUES ($1, $2)`, eventID, userID)
		if err != nil {
			if isUniqueViolation(err, "signups_event_id_user_id_key") {
				return signups.ErrAlreadyJoined
			}
			return fmt.Errorf("insert signup: %w", err)
		}

		return insertAuditEntry(ctx, tx, entry)
	})
}

// Leave deletes the signup and writes the audit row atomically. The event
// row is locked and re-checked first; leaving is only valid while the
// event is published.
func (r *SignupRepository) Leave(ctx context.Context, eventID, userID int64, entry audit.Entry) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		var status string
		row := tx.QueryRow(ctx, `SELECT status FROM events WHERE id = $1 FOR UPDATE`, eventID)
		if err := row.Scan(&status); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return signups.ErrEventNotFound
			}
			return fmt.Errorf("lock event: %w", err)
		}
		if events.Status(status) != events.StatusPublished {
			return signups.ErrEventNotPublished
		}

		tag, err := tx.Exec(ctx, `DELETE FROM signups WHERE event_id = $1 AND user_id = $2`, eventID, userID)
		if err != nil {
			return fmt.Errorf("delete signup: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return signups.ErrNotJoined
		}
		return insertAuditEntry(ctx, tx, entry)
	})
}

func (r *SignupRepository) CountForEvent(ctx context.Context, eventID int64) (int64, error) {
	var count int64
	row := r.queryer().QueryRow(ctx, `SELECT count(*) FROM signups WHERE event_id = $1`, eventID)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count signups: %w", err)
	}
	return count, nil
}

func (r *SignupRepository) ListForUser(ctx context.Context, userID int64, sort signups.Sort, page events.Pagination) ([]signups.UserSignup, int64, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT s.id, s.event_id, s.user_id, s.created_at,
       `+prefixedEventColumns("e")+`, count(*) OVER() AS total
  FROM signups s
  JOIN events e ON e.id = s.event_id
 WHERE s.user_id = $1
 ORDER BY `+signupOrder(sort)+`, s.id ASC
 LIMIT $2 OFFSET $3
`, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list user signups: %w", err)
	}
	defer rows.Close()

	var (
		result []signups.UserSignup
		total  int64
	)
	for rows.Next() {
		var (
			item    signups.UserSignup
			status  string
			pricing string
		)
		if err := rows.Scan(
			&item.Signup.ID,
			&item.Signup.EventID,
			&item.Signup.UserID,
			&item.Signup.CreatedAt,
			&item.Event.ID,
			&item.Event.OwnerID,
			&item.Event.Title,
			&item.Event.Description,
			&item.Event.City,
			&item.Event.StartAt,
			&item.Event.EndAt,
			&item.Event.Capacity,
			&status,
			&pricing,
			&item.Event.Pricing.Fixed,
			&item.Event.Pricing.Min,
			&item.Event.Pricing.Max,
			&item.Event.Pricing.PaymentLink,
			&item.Event.CoverURL,
			&item.Event.CreatedAt,
			&item.Event.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan user signup: %w", err)
		}
		item.Event.Status = events.Status(status)
		item.Event.Pricing.Type = events.PricingType(pricing)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list user signups: %w", err)
	}

	if len(result) == 0 {
		row := r.queryer().QueryRow(ctx, `SELECT count(*) FROM signups WHERE user_id = $1`, userID)
		if err := row.Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count user signups: %w", err)
		}
	}
	return result, total, nil
}

func (r *SignupRepository) ListParticipants(ctx context.Context, eventID int64, page events.Pagination) ([]signups.Participant, int64, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT s.user_id, a.email, s.created_at, count(*) OVER() AS total
  FROM signups s
  JOIN accounts a ON a.id = s.user_id
 WHERE s.event_id = $1
 ORDER BY s.created_at ASC, s.id ASC
 LIMIT $2 OFFSET $3
`, eventID, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var (
		result []signups.Participant
		total  int64
	)
	for rows.Next() {
		var participant signups.Participant
		if err := rows.Scan(&participant.UserID, &participant.Email, &participant.JoinedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan participant: %w", err)
		}
		result = append(result, participant)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list participants: %w", err)
	}

	if len(result) == 0 {
		row := r.queryer().QueryRow(ctx, `SELECT count(*) FROM signups WHERE event_id = $1`, eventID)
		if err := row.Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count participants: %w", err)
		}
	}
	return result, total, nil
}

func (r *SignupRepository) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// signupOrder maps a validated sort value to an ORDER BY clause. The sort
// is an enum, never raw user input.
func signupOrder(sort signups.Sort) string {
	switch sort {
	case signups.SortJoinedAsc:
		return "s.created_at ASC"
	case signups.SortStartAsc:
		return "e.start_at ASC"
	case signups.SortStartDesc:
		return "e.start_at DESC"
	default:
		return "s.created_at DESC"
	}
}

func prefixedEventColumns(alias string) string {
	return alias + `.id, ` + alias + `.owner_id, ` + alias + `.title, ` + alias + `.description, ` +
		alias + `.city, ` + alias + `.start_at, ` + alias + `.end_at, ` + alias + `.capacity, ` +
		alias + `.status, ` + alias + `.pricing_type, ` + alias + `.price_fixed, ` + alias + `.price_min, ` +
		alias + `.price_max, ` + alias + `.payment_link, ` + alias + `.cover_url, ` + alias + `.created_at, ` +
		alias + `.updated_at`
}
