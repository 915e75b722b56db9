// Package events implements the event lifecycle state machine and the
// pricing rules partners must satisfy before an event can be persisted.
package events

import "time"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// CanTransitionTo reports whether next is a legal forward transition.
// The lifecycle is draft -> published -> archived; no state is skipped
// and no backward transition exists.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusPublished
	case StatusPublished:
		return next == StatusArchived
	default:
		return false
	}
}

func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusDraft, StatusPublished, StatusArchived:
		return Status(value), true
	default:
		return "", false
	}
}

type PricingType string

const (
	PricingFree      PricingType = "free"
	PricingPaidFixed PricingType = "paid_fixed"
	PricingPaidRange PricingType = "paid_range"
)

// Pricing describes how attendance is paid for. Prices are integer minor
// units (cents). The set fields must exactly match Type; Validate enforces
// that.
type Pricing struct {
	Type        PricingType
	Fixed       *int64
	Min         *int64
	Max         *int64
	PaymentLink *string
}

type Event struct {
	ID          int64
	OwnerID     int64
	Title       string
	Description *string
	City        string
	StartAt     time.Time
	EndAt       time.Time
	Capacity    *int32
	Status      Status
	Pricing     Pricing
	CoverURL    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Filters narrows event listings. OwnerID restricts to a partner's own
// events; Status is only honored for owner listings (public listings are
// always published-only).
type Filters struct {
	OwnerID *int64
	Status  Status
	City    string
	Day     *time.Time
}

type Pagination struct {
	Limit  int
	Offset int
}

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Clamp normalizes pagination to the supported window.
func (p Pagination) Clamp() Pagination {
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

type ListResult struct {
	Events []Event
	Total  int64
}
