package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/usly-events/server/internal/api/middleware"
	"github.com/usly-events/server/internal/api/respond"
	"github.com/usly-events/server/internal/domain/accounts"
	"github.com/usly-events/server/internal/domain/events"
)

const maxBodyBytes = 1 << 20 // 1 MiB for JSON bodies; uploads have their own cap

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// decodeJSON reads the request body into dst. It writes the error response
// itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respond.Error(w, r, http.StatusRequestEntityTooLarge, respond.CodePayloadTooLarge, err)
			return false
		}
		respond.Error(w, r, http.StatusUnprocessableEntity, respond.CodeValidationError, err,
			respond.WithMessage("Malformed JSON body"))
		return false
	}
	return true
}

func parsePagination(query url.Values) events.Pagination {
	page := events.Pagination{}
	if v, err := strconv.Atoi(query.Get("limit")); err == nil {
		page.Limit = v
	}
	if v, err := strconv.Atoi(query.Get("offset")); err == nil {
		page.Offset = v
	}
	return page.Clamp()
}

// mustAccount returns the authenticated account; routing guarantees it is
// present behind the auth middleware.
func mustAccount(w http.ResponseWriter, r *http.Request) (accounts.Account, bool) {
	account, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, respond.CodeUnauthorized, nil)
		return accounts.Account{}, false
	}
	return account, true
}

// writeValidationError renders validator failures as field details.
func writeValidationError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			details[fe.Field()] = fe.Tag()
		}
		respond.Error(w, r, http.StatusUnprocessableEntity, respond.CodeValidationError, err,
			respond.WithDetails(details))
		return
	}
	respond.Error(w, r, http.StatusUnprocessableEntity, respond.CodeValidationError, err)
}
