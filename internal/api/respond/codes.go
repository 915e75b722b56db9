package respond

// Stable machine-readable error codes carried in the response envelope.
// Clients branch on these, so the strings never change.
const (
	CodeValidationError  = "VALIDATION_ERROR"
	CodeInternalError    = "INTERNAL_ERROR"
	CodeRateLimited      = "RATE_LIMITED"
	CodeNotFound         = "NOT_FOUND"
	CodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	CodeUnsupportedMedia = "UNSUPPORTED_MEDIA_TYPE"

	CodeEmailAlreadyExists = "EMAIL_ALREADY_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountInactive    = "ACCOUNT_INACTIVE"
	CodeAgeTooLow          = "AGE_TOO_LOW"
	CodeTermsRequired      = "TERMS_REQUIRED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeForbidden          = "FORBIDDEN"
	CodeForbiddenNotOwner  = "FORBIDDEN_NOT_OWNER"

	CodeEventNotFound           = "EVENT_NOT_FOUND"
	CodeEventNotPublished       = "EVENT_NOT_PUBLISHED"
	CodeEventFull               = "EVENT_FULL"
	CodeEventArchived           = "EVENT_ARCHIVED"
	CodeAlreadyJoined           = "ALREADY_JOINED"
	CodeNotJoined               = "NOT_JOINED"
	CodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	CodeInvalidEventDates       = "INVALID_EVENT_DATES"
	CodeInvalidCapacity         = "INVALID_CAPACITY"
	CodeInvalidSort             = "INVALID_SORT"
	CodeInvalidAgeRange         = "INVALID_AGE_RANGE"

	CodeInvalidPricingType        = "INVALID_PRICING_TYPE"
	CodePricingTypeRequired       = "PRICING_TYPE_REQUIRED"
	CodeFreeMustNotHavePricing    = "FREE_EVENT_MUST_NOT_HAVE_PRICES_OR_LINK"
	CodePaidFixedRequiresPrice    = "PAID_FIXED_REQUIRES_PRICE_FIXED"
	CodePaidFixedMustNotHaveRange = "PAID_FIXED_MUST_NOT_HAVE_RANGE"
	CodePaidRangeRequiresMinMax   = "PAID_RANGE_REQUIRES_PRICE_MIN_MAX"
	CodePaidRangeMinAboveMax      = "PAID_RANGE_MIN_MUST_BE_LTE_MAX"
	CodePaidRangeMustNotHaveFixed = "PAID_RANGE_MUST_NOT_HAVE_FIXED_PRICE"
	CodePaidRequiresPaymentLink   = "PAID_EVENT_REQUIRES_PAYMENT_LINK"
	CodePriceNotPositive          = "PRICE_NOT_POSITIVE"
)

var defaultMessages = map[string]string{
	CodeValidationError:  "Request validation failed",
	CodeInternalError:    "Internal server error",
	CodeRateLimited:      "Too many requests",
	CodeNotFound:         "Resource not found",
	CodePayloadTooLarge:  "Request payload too large",
	CodeUnsupportedMedia: "Unsupported media type",

	CodeEmailAlreadyExists: "An account with this email already exists",
	CodeInvalidCredentials: "Invalid email or password",
	CodeAccountInactive:    "Account is not active",
	CodeAgeTooLow:          "You must be at least 16 years old",
	CodeTermsRequired:      "Terms and privacy policy must be accepted",
	CodeUnauthorized:       "Authentication required",
	CodeTokenExpired:       "Session token has expired",
	CodeForbidden:          "Insufficient permissions",
	CodeForbiddenNotOwner:  "Only the event owner may do this",

	CodeEventNotFound:           "Event not found",
	CodeEventNotPublished:       "Event is not open for signups",
	CodeEventFull:               "Event is at capacity",
	CodeEventArchived:           "Archived events cannot be modified",
	CodeAlreadyJoined:           "You already joined this event",
	CodeNotJoined:               "You have not joined this event",
	CodeInvalidStatusTransition: "Status transition is not allowed",
	CodeInvalidEventDates:       "Event end must be after start",
	CodeInvalidCapacity:         "Capacity must be a positive number",
	CodeInvalidSort:             "Unsupported sort order",
	CodeInvalidAgeRange:         "Minimum age preference must not exceed maximum",

	CodeInvalidPricingType:        "Unknown pricing type",
	CodePricingTypeRequired:       "pricing_type is required when changing pricing",
	CodeFreeMustNotHavePricing:    "Free events must not carry price fields",
	CodePaidFixedRequiresPrice:    "Fixed-price events require price_fixed",
	CodePaidFixedMustNotHaveRange: "Fixed-price events must not carry a price range",
	CodePaidRangeRequiresMinMax:   "Range-priced events require price_min and price_max",
	CodePaidRangeMinAboveMax:      "price_min must not exceed price_max",
	CodePaidRangeMustNotHaveFixed: "Range-priced events must not carry price_fixed",
	CodePaidRequiresPaymentLink:   "Paid events require a payment link",
	CodePriceNotPositive:          "Prices must be positive",
}
