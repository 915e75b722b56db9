package api

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/usly-events/server/internal/api/handlers"
	"github.com/usly-events/server/internal/api/middleware"
	"github.com/usly-events/server/internal/audit"
	"github.com/usly-events/server/internal/auth"
	"github.com/usly-events/server/internal/config"
	"github.com/usly-events/server/internal/domain/accounts"
	"github.com/usly-events/server/internal/domain/events"
	"github.com/usly-events/server/internal/domain/profiles"
	"github.com/usly-events/server/internal/domain/signups"
	"github.com/usly-events/server/internal/media"
	"github.com/usly-events/server/internal/metrics"
	"github.com/usly-events/server/internal/storage/postgres"
)

// NewRouter wires repositories, services and handlers into the HTTP mux.
// The pool is owned by the caller; the router never closes it. ctx bounds
// the background goroutines the middleware spawns.
func NewRouter(ctx context.Context, cfg config.Config, logger zerolog.Logger, pool *pgxpool.Pool, version string) (http.Handler, error) {
	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.Issuer)
	recorder := audit.NewRecorder(repo.Audit(), logger)

	accountsService := accounts.NewService(repo.Accounts(), tokens, recorder, logger)
	eventsService := events.NewService(repo.Events(), logger)
	signupsService := signups.NewService(repo.Signups(), repo.Events(), logger)
	profilesService := profiles.NewService(repo.Profiles(), logger)

	mediaStore, err := media.NewStore(cfg.Uploads.Dir, cfg.Uploads.MaxSizeBytes, logger)
	if err != nil {
		return nil, err
	}

	authHandler := handlers.NewAuthHandler(accountsService)
	eventsHandler := handlers.NewEventsHandler(eventsService, signupsService)
	partnerHandler := handlers.NewPartnerEventsHandler(eventsService, signupsService)
	profilesHandler := handlers.NewProfilesHandler(profilesService)
	uploadsHandler := handlers.NewUploadsHandler(mediaStore, profilesService, cfg.Server.BaseURL, cfg.Uploads.MaxSizeBytes)
	legalHandler := handlers.NewLegalHandler(cfg.Server.BaseURL)
	health := handlers.NewHealthChecker(pool, version)

	authed := middleware.Auth(tokens, accountsService, recorder)
	userOnly := func(h http.Handler) http.Handler {
		return authed(middleware.RequireRole(auth.RoleUser)(h))
	}
	partnerOnly := func(h http.Handler) http.Handler {
		return authed(middleware.RequireRole(auth.RolePartner)(h))
	}
	loginLimited := middleware.RateLimit(ctx, cfg.RateLimit, middleware.TierLogin)
	publicLimited := middleware.RateLimit(ctx, cfg.RateLimit, middleware.TierPublic)

	mux := http.NewServeMux()
	mux.Handle("/healthz", health.Healthz())
	mux.Handle("/readyz", health.Readyz())
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/uploads/static/", http.StripPrefix("/uploads/static/",
		http.FileServer(http.Dir(mediaStore.Dir()))))

	mux.Handle("/api/v1/auth/register", methodMux(map[string]http.Handler{
		http.MethodPost: loginLimited(http.HandlerFunc(authHandler.Register)),
	}))
	mux.Handle("/api/v1/auth/login", methodMux(map[string]http.Handler{
		http.MethodPost: loginLimited(http.HandlerFunc(authHandler.Login)),
	}))
	mux.Handle("/api/v1/auth/logout", methodMux(map[string]http.Handler{
		http.MethodPost: authed(http.HandlerFunc(authHandler.Logout)),
	}))
	mux.Handle("/api/v1/auth/me", methodMux(map[string]http.Handler{
		http.MethodGet: authed(http.HandlerFunc(authHandler.Me)),
	}))

	mux.Handle("/api/v1/legal/terms", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(legalHandler.Terms),
	}))
	mux.Handle("/api/v1/legal/privacy", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(legalHandler.Privacy),
	}))

	mux.Handle("/api/v1/events", methodMux(map[string]http.Handler{
		http.MethodGet: publicLimited(http.HandlerFunc(eventsHandler.List)),
	}))
	mux.Handle("/api/v1/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet: publicLimited(http.HandlerFunc(eventsHandler.Get)),
	}))
	mux.Handle("/api/v1/events/{id}/join", methodMux(map[string]http.Handler{
		http.MethodPost:   userOnly(http.HandlerFunc(eventsHandler.Join)),
		http.MethodDelete: userOnly(http.HandlerFunc(eventsHandler.Leave)),
	}))

	mux.Handle("/api/v1/users/me", methodMux(map[string]http.Handler{
		http.MethodGet:   userOnly(http.HandlerFunc(profilesHandler.GetUser)),
		http.MethodPatch: userOnly(http.HandlerFunc(profilesHandler.PatchUser)),
	}))
	mux.Handle("/api/v1/users/me/events", methodMux(map[string]http.Handler{
		http.MethodGet: userOnly(http.HandlerFunc(eventsHandler.MySignups)),
	}))

	mux.Handle("/api/v1/partners/me", methodMux(map[string]http.Handler{
		http.MethodGet:   partnerOnly(http.HandlerFunc(profilesHandler.GetPartner)),
		http.MethodPatch: partnerOnly(http.HandlerFunc(profilesHandler.PatchPartner)),
	}))
	mux.Handle("/api/v1/partners/events", methodMux(map[string]http.Handler{
		http.MethodGet:  partnerOnly(http.HandlerFunc(partnerHandler.List)),
		http.MethodPost: partnerOnly(http.HandlerFunc(partnerHandler.Create)),
	}))
	mux.Handle("/api/v1/partners/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    partnerOnly(http.HandlerFunc(partnerHandler.Get)),
		http.MethodPatch:  partnerOnly(http.HandlerFunc(partnerHandler.Patch)),
		http.MethodDelete: partnerOnly(http.HandlerFunc(partnerHandler.Delete)),
	}))
	mux.Handle("/api/v1/partners/events/{id}/publish", methodMux(map[string]http.Handler{
		http.MethodPost: partnerOnly(http.HandlerFunc(partnerHandler.Publish)),
	}))
	mux.Handle("/api/v1/partners/events/{id}/archive", methodMux(map[string]http.Handler{
		http.MethodPost: partnerOnly(http.HandlerFunc(partnerHandler.Archive)),
	}))
	mux.Handle("/api/v1/partners/events/{id}/participants", methodMux(map[string]http.Handler{
		http.MethodGet: partnerOnly(http.HandlerFunc(partnerHandler.Participants)),
	}))
	mux.Handle("/api/v1/partners/events/{id}/stats", methodMux(map[string]http.Handler{
		http.MethodGet: partnerOnly(http.HandlerFunc(partnerHandler.Stats)),
	}))

	mux.Handle("/api/v1/uploads/avatar", methodMux(map[string]http.Handler{
		http.MethodPost: userOnly(http.HandlerFunc(uploadsHandler.Avatar)),
	}))
	mux.Handle("/api/v1/uploads/logo", methodMux(map[string]http.Handler{
		http.MethodPost: partnerOnly(http.HandlerFunc(uploadsHandler.Logo)),
	}))
	mux.Handle("/api/v1/uploads/event-cover", methodMux(map[string]http.Handler{
		http.MethodPost: partnerOnly(http.HandlerFunc(uploadsHandler.EventCover)),
	}))

	var handler http.Handler = mux
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.RequestLogging(logger)(handler)
	return handler, nil
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allowedMethods(handlers))
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
