// Package audit appends immutable records of security-relevant actions.
// Writes are best-effort: a failed audit insert is logged and counted but
// never fails the operation that triggered it. The one exception is the
// signup ledger, which writes its audit rows inside the same transaction
// as the signup mutation (see internal/domain/signups).
package audit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/usly-events/server/internal/metrics"
)

// Action tags recorded in the audit trail.
const (
	ActionRegister     = "REGISTER"
	ActionLoginSuccess = "LOGIN_SUCCESS"
	ActionLoginFail    = "LOGIN_FAIL"
	ActionLogout       = "LOGOUT"
	ActionTokenExpired = "TOKEN_EXPIRED"
	ActionEventJoin    = "EVENT_JOIN"
	ActionEventLeave   = "EVENT_LEAVE"
)

// Entry is a single audit record. ActorID is nil for failed authentication
// attempts where no account could be resolved.
type Entry struct {
	ActorID   *int64
	Action    string
	IP        string
	UserAgent string
	Details   string
	CreatedAt time.Time
}

// Store persists audit entries. Implemented by the postgres audit repository.
type Store interface {
	Insert(ctx context.Context, entry Entry) error
}

type Recorder struct {
	store  Store
	logger zerolog.Logger
}

func NewRecorder(store Store, logger zerolog.Logger) *Recorder {
	return &Recorder{
		store:  store,
		logger: logger.With().Str("component", "audit").Logger(),
	}
}

// Record appends entry to the audit trail. It never returns an error:
// failures are surfaced through the log and the audit write failure counter.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if err := r.store.Insert(ctx, entry); err != nil {
		metrics.AuditWriteFailures.WithLabelValues(entry.Action).Inc()
		r.logger.Error().
			Err(err).
			Str("action", entry.Action).
			Msg("audit write failed")
	}
}

// Origin describes where a request came from.
type Origin struct {
	IP        string
	UserAgent string
}

// OriginFromRequest resolves the client address, preferring the first hop of
// a forwarded-for chain over the direct peer address.
func OriginFromRequest(r *http.Request) Origin {
	return Origin{
		IP:        clientIP(r),
		UserAgent: r.Header.Get("User-Agent"),
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
