package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/usly-events/server/internal/api/respond"
	"github.com/usly-events/server/internal/audit"
	"github.com/usly-events/server/internal/auth"
	"github.com/usly-events/server/internal/domain/accounts"
)

type contextKey string

const accountKey contextKey = "account"

// AccountFromContext returns the authenticated account stored by Auth.
func AccountFromContext(ctx context.Context) (accounts.Account, bool) {
	account, ok := ctx.Value(accountKey).(accounts.Account)
	return account, ok
}

// WithAccount returns ctx carrying the account the way Auth stores it.
func WithAccount(ctx context.Context, account accounts.Account) context.Context {
	return context.WithValue(ctx, accountKey, account)
}

// Auth validates the bearer token and loads the active account into the
// request context. An expired token is refused but still audited with the
// subject recovered from it, so session-timeout attempts stay traceable.
func Auth(tokens *auth.JWTManager, svc *accounts.Service, recorder *audit.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				respond.Error(w, r, http.StatusUnauthorized, respond.CodeUnauthorized, err)
				return
			}

			subject, err := tokens.Validate(token)
			if err != nil {
				if errors.Is(err, auth.ErrExpiredToken) {
					auditExpired(r, recorder, subject)
					respond.Error(w, r, http.StatusUnauthorized, respond.CodeTokenExpired, err)
					return
				}
				respond.Error(w, r, http.StatusUnauthorized, respond.CodeUnauthorized, err)
				return
			}

			accountID, err := strconv.ParseInt(subject, 10, 64)
			if err != nil {
				respond.Error(w, r, http.StatusUnauthorized, respond.CodeUnauthorized, err)
				return
			}

			account, err := svc.GetActive(r.Context(), accountID)
			if err != nil {
				switch {
				case errors.Is(err, accounts.ErrAccountInactive):
					respond.Error(w, r, http.StatusForbidden, respond.CodeAccountInactive, err)
				case errors.Is(err, accounts.ErrAccountNotFound):
					respond.Error(w, r, http.StatusUnauthorized, respond.CodeUnauthorized, err)
				default:
					respond.Error(w, r, http.StatusInternalServerError, respond.CodeInternalError, err)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), account)))
		})
	}
}

// RequireRole gates a handler behind an explicit role allow-list. Admin is
// not implicitly allowed; list it where it belongs.
func RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account, ok := AccountFromContext(r.Context())
			if !ok {
				respond.Error(w, r, http.StatusUnauthorized, respond.CodeUnauthorized, nil)
				return
			}
			if !auth.HasRole(account.Role, roles...) {
				respond.Error(w, r, http.StatusForbidden, respond.CodeForbidden, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func auditExpired(r *http.Request, recorder *audit.Recorder, subject string) {
	if recorder == nil {
		return
	}
	var actorID *int64
	if id, err := strconv.ParseInt(subject, 10, 64); err == nil {
		actorID = &id
	}
	origin := audit.OriginFromRequest(r)
	recorder.Record(r.Context(), audit.Entry{
		ActorID:   actorID,
		Action:    audit.ActionTokenExpired,
		IP:        origin.IP,
		UserAgent: origin.UserAgent,
	})
}
