package events

import "errors"

var (
	// ErrNotFound is returned when an event lookup fails.
	ErrNotFound = errors.New("event not found")

	// ErrNotOwner is returned when a mutating operation is attempted by an
	// account that does not own the event. Ownership is checked on every
	// mutation, independent of role.
	ErrNotOwner = errors.New("requester does not own this event")

	// ErrInvalidTransition is returned for lifecycle transitions other than
	// draft->published and published->archived.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrEventArchived is returned when updating an archived event; archived
	// is terminal and its fields are immutable.
	ErrEventArchived = errors.New("archived events cannot be modified")

	// ErrInvalidDates is returned when end_at is not after start_at.
	ErrInvalidDates = errors.New("start_at must be earlier than end_at")

	// ErrInvalidCapacity is returned for capacities outside 1..100000.
	ErrInvalidCapacity = errors.New("capacity must be between 1 and 100000")
)

// Pricing rule violations. Each rule has its own error so clients can render
// a precise message.
var (
	ErrInvalidPricingType        = errors.New("unknown pricing type")
	ErrFreeMustNotHavePricing    = errors.New("free events must not set prices or a payment link")
	ErrPaidFixedRequiresPrice    = errors.New("paid_fixed requires price_fixed")
	ErrPaidFixedMustNotHaveRange = errors.New("paid_fixed must not set price_min or price_max")
	ErrPaidRangeRequiresMinMax   = errors.New("paid_range requires price_min and price_max")
	ErrPaidRangeMinAboveMax      = errors.New("price_min must be less than or equal to price_max")
	ErrPaidRangeMustNotHaveFixed = errors.New("paid_range must not set price_fixed")
	ErrPaidRequiresPaymentLink   = errors.New("paid events require a payment link")
	ErrPriceNotPositive          = errors.New("prices must be positive")
	ErrPricingTypeRequired       = errors.New("pricing_type is required when changing pricing fields")
)
