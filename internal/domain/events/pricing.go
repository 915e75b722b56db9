package events

// Validate checks that the set pricing fields exactly match the declared
// mode. It is a pure function of the descriptor; callers decide when it
// runs (always on create, on update only when the patch touches pricing).
func (p Pricing) Validate() error {
	for _, price := range []*int64{p.Fixed, p.Min, p.Max} {
		if price != nil && *price < 1 {
			return ErrPriceNotPositive
		}
	}

	switch p.Type {
	case PricingFree:
		if p.Fixed != nil || p.Min != nil || p.Max != nil || p.PaymentLink != nil {
			return ErrFreeMustNotHavePricing
		}
	case PricingPaidFixed:
		if p.Fixed == nil {
			return ErrPaidFixedRequiresPrice
		}
		if p.Min != nil || p.Max != nil {
			return ErrPaidFixedMustNotHaveRange
		}
		if p.PaymentLink == nil || *p.PaymentLink == "" {
			return ErrPaidRequiresPaymentLink
		}
	case PricingPaidRange:
		if p.Min == nil || p.Max == nil {
			return ErrPaidRangeRequiresMinMax
		}
		if *p.Min > *p.Max {
			return ErrPaidRangeMinAboveMax
		}
		if p.Fixed != nil {
			return ErrPaidRangeMustNotHaveFixed
		}
		if p.PaymentLink == nil || *p.PaymentLink == "" {
			return ErrPaidRequiresPaymentLink
		}
	default:
		return ErrInvalidPricingType
	}
	return nil
}
