package events

import "context"

// Repository persists events. Lookups return ErrNotFound for missing rows.
type Repository interface {
	Create(ctx context.Context, event Event) (Event, error)
	GetByID(ctx context.Context, id int64) (Event, error)
	Update(ctx context.Context, event Event) (Event, error)

	// Delete removes the event; associated signups are removed with it.
	Delete(ctx context.Context, id int64) error

	List(ctx context.Context, filters Filters, page Pagination) (ListResult, error)
}
