package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/usly-events/server/internal/domain/events"
)

var _ events.Repository = (*EventRepository)(nil)

type EventRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *EventRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

const eventColumns = `id, owner_id, title, description, city, start_at, end_at, capacity, status,
       pricing_type, price_fixed, price_min, price_max, payment_link, cover_url, created_at, updated_at`

func (r *EventRepository) Create(ctx context.Context, event events.Event) (events.Event, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO events (owner_id, title, description, city, start_at, end_at, capacity, status,
                    pricing_type, price_fixed, price_min, price_max, payment_link, cover_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING `+eventColumns,
		event.OwnerID,
		event.Title,
		event.Description,
		event.City,
		event.StartAt,
		event.EndAt,
		event.Capacity,
		string(event.Status),
		string(event.Pricing.Type),
		event.Pricing.Fixed,
		event.Pricing.Min,
		event.Pricing.Max,
		event.Pricing.PaymentLink,
		event.CoverURL,
	)
	created, err := scanEvent(row)
	if err != nil {
		return events.Event{}, fmt.Errorf("insert event: %w", err)
	}
	return created, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (events.Event, error) {
	row := r.queryer().QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return events.Event{}, events.ErrNotFound
		}
		return events.Event{}, fmt.Errorf("select event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Update(ctx context.Context, event events.Event) (events.Event, error) {
	row := r.queryer().QueryRow(ctx, `
UPDATE events
   SET title = $2, description = $3, city = $4, start_at = $5, end_at = $6, capacity = $7,
       status = $8, pricing_type = $9, price_fixed = $10, price_min = $11, price_max = $12,
       payment_link = $13, cover_url = $14, updated_at = now()
 WHERE id = $1
RETURNING `+eventColumns,
		event.ID,
		event.Title,
		event.Description,
		event.City,
		event.StartAt,
		event.EndAt,
		event.Capacity,
		string(event.Status),
		string(event.Pricing.Type),
		event.Pricing.Fixed,
		event.Pricing.Min,
		event.Pricing.Max,
		event.Pricing.PaymentLink,
		event.CoverURL,
	)
	updated, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return events.Event{}, events.ErrNotFound
		}
		return events.Event{}, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	// signups reference events with ON DELETE CASCADE; audit rows only
	// reference accounts and stay behind
	tag, err := r.queryer().Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventRepository) List(ctx context.Context, filters events.Filters, page events.Pagination) (events.ListResult, error) {
	var day *time.Time
	if filters.Day != nil {
		value := filters.Day.UTC()
		day = &value
	}

	rows, err := r.queryer().Query(ctx, `
SELECT `+eventColumns+`, count(*) OVER() AS total
  FROM events
 WHERE ($1::bigint IS NULL OR owner_id = $1::bigint)
   AND ($2 = '' OR status = $2)
   AND ($3 = '' OR city ILIKE $3)
   AND ($4::timestamptz IS NULL OR (start_at >= date_trunc('day', $4::timestamptz)
        AND start_at < date_trunc('day', $4::timestamptz) + interval '1 day'))
 ORDER BY start_at ASC, id ASC
 LIMIT $5 OFFSET $6
`,
		filters.OwnerID,
		string(filters.Status),
		filters.City,
		day,
		page.Limit,
		page.Offset,
	)
	if err != nil {
		return events.ListResult{}, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	result := events.ListResult{Events: make([]events.Event, 0, page.Limit)}
	for rows.Next() {
		event, total, err := scanEventWithTotal(rows)
		if err != nil {
			return events.ListResult{}, fmt.Errorf("scan event: %w", err)
		}
		result.Total = total
		result.Events = append(result.Events, event)
	}
	if err := rows.Err(); err != nil {
		return events.ListResult{}, fmt.Errorf("list events: %w", err)
	}

	// an empty page beyond the end still needs the real total
	if len(result.Events) == 0 {
		row := r.queryer().QueryRow(ctx, `
SELECT count(*)
  FROM events
 WHERE ($1::bigint IS NULL OR owner_id = $1::bigint)
   AND ($2 = '' OR status = $2)
   AND ($3 = '' OR city ILIKE $3)
   AND ($4::timestamptz IS NULL OR (start_at >= date_trunc('day', $4::timestamptz)
        AND start_at < date_trunc('day', $4::timestamptz) + interval '1 day'))
`, filters.OwnerID, string(filters.Status), filters.City, day)
		if err := row.Scan(&result.Total); err != nil {
			return events.ListResult{}, fmt.Errorf("count events: %w", err)
		}
	}
	return result, nil
}

func scanEvent(row pgx.Row) (events.Event, error) {
	var (
		event   events.Event
		status  string
		pricing string
	)
	err := row.Scan(
		&event.ID,
		&event.OwnerID,
		&event.Title,
		&event.Description,
		&event.City,
		&event.StartAt,
		&event.EndAt,
		&event.Capacity,
		&status,
		&pricing,
		&event.Pricing.Fixed,
		&event.Pricing.Min,
		&event.Pricing.Max,
		&event.Pricing.PaymentLink,
		&event.CoverURL,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return events.Event{}, err
	}
	event.Status = events.Status(status)
	event.Pricing.Type = events.PricingType(pricing)
	return event, nil
}

func scanEventWithTotal(row pgx.Row) (events.Event, int64, error) {
	var (
		event   events.Event
		status  string
		pricing string
		total   int64
	)
	err := row.Scan(
		&event.ID,
		&event.OwnerID,
		&event.Title,
		&event.Description,
		&event.City,
		&event.StartAt,
		&event.EndAt,
		&event.Capacity,
		&status,
		&pricing,
		&event.Pricing.Fixed,
		&event.Pricing.Min,
		&event.Pricing.Max,
		&event.Pricing.PaymentLink,
		&event.CoverURL,
		&event.CreatedAt,
		&event.UpdatedAt,
		&total,
	)
	if err != nil {
		return events.Event{}, 0, err
	}
	event.Status = events.Status(status)
	event.Pricing.Type = events.PricingType(pricing)
	return event, total, nil
}
