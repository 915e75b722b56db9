package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/usly-events/server/internal/api/middleware"
	"github.com/usly-events/server/internal/audit"
	"github.com/usly-events/server/internal/auth"
	"github.com/usly-events/server/internal/domain/accounts"
	"github.com/usly-events/server/internal/domain/events"
	"github.com/usly-events/server/internal/domain/profiles"
	"github.com/usly-events/server/internal/domain/signups"
)

// In-memory fakes shared by the handler tests. They mirror the storage
// contracts, including the capacity re-check the postgres ledger does
// under its row lock.

type memAccounts struct {
	mu      sync.Mutex
	nextID  int64
	byEmail map[string]accounts.Account
}

func newMemAccounts() *memAccounts {
	return &memAccounts{nextID: 1, byEmail: make(map[string]accounts.Account)}
}

func (m *memAccounts) Create(_ context.Context, account accounts.Account) (accounts.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byEmail[account.Email]; exists {
		return accounts.Account{}, accounts.ErrEmailTaken
	}
	account.ID = m.nextID
	m.nextID++
	account.CreatedAt = time.Now().UTC()
	m.byEmail[account.Email] = account
	return account, nil
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (accounts.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byEmail[email]
	if !ok {
		return accounts.Account{}, accounts.ErrAccountNotFound
	}
	return account, nil
}

func (m *memAccounts) GetByID(_ context.Context, id int64) (accounts.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, account := range m.byEmail {
		if account.ID == id {
			return account, nil
		}
	}
	return accounts.Account{}, accounts.ErrAccountNotFound
}

type memEvents struct {
	mu     sync.Mutex
	nextID int64
	events map[int64]events.Event
}

func newMemEvents() *memEvents {
	return &memEvents{nextID: 1, events: make(map[int64]events.Event)}
}

func (m *memEvents) Create(_ context.Context, event events.Event) (events.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	event.ID = m.nextID
	m.nextID++
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	m.events[event.ID] = event
	return event, nil
}

func (m *memEvents) GetByID(_ context.Context, id int64) (events.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.events[id]
	if !ok {
		return events.Event{}, events.ErrNotFound
	}
	return event, nil
}

func (m *memEvents) Update(_ context.Context, event events.Event) (events.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[event.ID]; !ok {
		return events.Event{}, events.ErrNotFound
	}
	event.UpdatedAt = time.Now().UTC()
	m.events[event.ID] = event
	return event, nil
}

func (m *memEvents) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return events.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

func (m *memEvents) List(_ context.Context, filters events.Filters, page events.Pagination) (events.ListResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []events.Event
	for _, event := range m.events {
		if filters.OwnerID != nil && event.OwnerID != *filters.OwnerID {
			continue
		}
		if filters.Status != "" && event.Status != filters.Status {
			continue
		}
		if filters.City != "" && !strings.EqualFold(filters.City, event.City) {
			continue
		}
		matched = append(matched, event)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	total := int64(len(matched))
	if page.Offset < len(matched) {
		matched = matched[page.Offset:]
	} else {
		matched = nil
	}
	if len(matched) > page.Limit {
		matched = matched[:page.Limit]
	}
	return events.ListResult{Events: matched, Total: total}, nil
}

type memberKey struct {
	eventID int64
	userID  int64
}

type memLedger struct {
	mu      sync.Mutex
	store   *memEvents
	nextID  int64
	members map[memberKey]signups.Signup
	emails  map[int64]string
	audits  []audit.Entry
}

func newMemLedger(store *memEvents) *memLedger {
	return &memLedger{store: store, nextID: 1, members: make(map[memberKey]signups.Signup), emails: make(map[int64]string)}
}

func (l *memLedger) Join(_ context.Context, eventID, userID int64, entry audit.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	event, ok := l.store.events[eventID]
	if !ok {
		return signups.ErrEventNotFound
	}
	if event.Status != events.StatusPublished {
		return signups.ErrEventNotPublished
	}
	key := memberKey{eventID, userID}
	if _, exists := l.members[key]; exists {
		return signups.ErrAlreadyJoined
	}
	if event.Capacity != nil && l.count(eventID) >= int64(*event.Capacity) {
		return signups.ErrEventFull
	}
	l.members[key] = signups.Signup{ID: l.nextID, EventID: eventID, UserID: userID, CreatedAt: entry.CreatedAt}
	l.nextID++
	l.audits = append(l.audits, entry)
	return nil
}

func (l *memLedger) Leave(_ context.Context, eventID, userID int64, entry audit.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	event, ok := l.store.events[eventID]
	if !ok {
		return signups.ErrEventNotFound
	}
	if event.Status != events.StatusPublished {
		return signups.ErrEventNotPublished
	}
	key := memberKey{eventID, userID}
	if _, exists := l.members[key]; !exists {
		return signups.ErrNotJoined
	}
	delete(l.members, key)
	l.audits = append(l.audits, entry)
	return nil
}

func (l *memLedger) CountForEvent(_ context.Context, eventID int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count(eventID), nil
}

func (l *memLedger) count(eventID int64) int64 {
	var n int64
	for key := range l.members {
		if key.eventID == eventID {
			n++
		}
	}
	return n
}

func (l *memLedger) ListForUser(_ context.Context, userID int64, _ signups.Sort, _ events.Pagination) ([]signups.UserSignup, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var result []signups.UserSignup
	for key, signup := range l.members {
		if key.userID == userID {
			result = append(result, signups.UserSignup{Signup: signup, Event: l.store.events[key.eventID]})
		}
	}
	return result, int64(len(result)), nil
}

func (l *memLedger) ListParticipants(_ context.Context, eventID int64, _ events.Pagination) ([]signups.Participant, int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var result []signups.Participant
	for key, signup := range l.members {
		if key.eventID == eventID {
			result = append(result, signups.Participant{UserID: key.userID, Email: l.emails[key.userID], JoinedAt: signup.CreatedAt})
		}
	}
	return result, int64(len(result)), nil
}

type memProfiles struct {
	users    map[int64]profiles.UserProfile
	partners map[int64]profiles.PartnerProfile
}

func newMemProfiles() *memProfiles {
	return &memProfiles{users: make(map[int64]profiles.UserProfile), partners: make(map[int64]profiles.PartnerProfile)}
}

func (m *memProfiles) GetUserProfile(_ context.Context, userID int64) (profiles.UserProfile, error) {
	profile, ok := m.users[userID]
	if !ok {
		return profiles.UserProfile{}, profiles.ErrNotFound
	}
	return profile, nil
}

func (m *memProfiles) UpsertUserProfile(_ context.Context, profile profiles.UserProfile) (profiles.UserProfile, error) {
	profile.UpdatedAt = time.Now().UTC()
	m.users[profile.UserID] = profile
	return profile, nil
}

func (m *memProfiles) GetPartnerProfile(_ context.Context, userID int64) (profiles.PartnerProfile, error) {
	profile, ok := m.partners[userID]
	if !ok {
		return profiles.PartnerProfile{}, profiles.ErrNotFound
	}
	return profile, nil
}

func (m *memProfiles) UpsertPartnerProfile(_ context.Context, profile profiles.PartnerProfile) (profiles.PartnerProfile, error) {
	profile.UpdatedAt = time.Now().UTC()
	m.partners[profile.UserID] = profile
	return profile, nil
}

type auditSink struct {
	entries []audit.Entry
}

func (s *auditSink) Insert(_ context.Context, entry audit.Entry) error {
	s.entries = append(s.entries, entry)
	return nil
}

// env bundles the wired services and handlers for a test.
type env struct {
	accounts *accounts.Service
	events   *events.Service
	signups  *signups.Service
	profiles *profiles.Service

	eventsRepo *memEvents
	ledger     *memLedger
	sink       *auditSink

	authHandler     *AuthHandler
	eventsHandler   *EventsHandler
	partnerHandler  *PartnerEventsHandler
	profilesHandler *ProfilesHandler
}

func newEnv(t *testing.T) *env {
	t.Helper()

	tokens := auth.NewJWTManager("test-secret", time.Hour, "usly")
	sink := &auditSink{}
	recorder := audit.NewRecorder(sink, zerolog.Nop())

	accountsRepo := newMemAccounts()
	eventsRepo := newMemEvents()
	ledger := newMemLedger(eventsRepo)
	profilesRepo := newMemProfiles()

	accountsService := accounts.NewService(accountsRepo, tokens, recorder, zerolog.Nop())
	eventsService := events.NewService(eventsRepo, zerolog.Nop())
	signupsService := signups.NewService(ledger, eventsRepo, zerolog.Nop())
	profilesService := profiles.NewService(profilesRepo, zerolog.Nop())

	return &env{
		accounts:        accountsService,
		events:          eventsService,
		signups:         signupsService,
		profiles:        profilesService,
		eventsRepo:      eventsRepo,
		ledger:          ledger,
		sink:            sink,
		authHandler:     NewAuthHandler(accountsService),
		eventsHandler:   NewEventsHandler(eventsService, signupsService),
		partnerHandler:  NewPartnerEventsHandler(eventsService, signupsService),
		profilesHandler: NewProfilesHandler(profilesService),
	}
}

func asAccount(req *http.Request, account accounts.Account) *http.Request {
	return req.WithContext(middleware.WithAccount(req.Context(), account))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeEnvelope(t, rec)
	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok, "response has no error body: %s", rec.Body.String())
	return errBody["code"].(string)
}

func (e *env) publishedEvent(t *testing.T, ownerID int64, capacity *int32) events.Event {
	t.Helper()
	start := time.Now().Add(48 * time.Hour).UTC()
	event, err := e.eventsRepo.Create(context.Background(), events.Event{
		OwnerID:  ownerID,
		Title:    "Harbor run club",
		City:     "Hamburg",
		StartAt:  start,
		EndAt:    start.Add(2 * time.Hour),
		Capacity: capacity,
		Status:   events.StatusPublished,
		Pricing:  events.Pricing{Type: events.PricingFree},
	})
	require.NoError(t, err)
	return event
}
