package api

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/romyseb/wedding/internal/app"
	"github.com/romyseb/wedding/internal/handlers"
	"github.com/romyseb/wedding/internal/locale"
	"github.com/romyseb/wedding/internal/middleware"
	"github.com/romyseb/wedding/internal/monitoring"
	"github.com/romyseb/wedding/internal/services"
)

// GuestAccess is everything the guest facing routes need from the access service.
type GuestAccess interface {
	Verify(ctx context.Context, token string) (services.AccessDecision, error)
	Confirm(ctx context.Context, token, forcedLocale string) (*services.GuestSession, error)
	Authenticate(ctx context.Context, credential string) (*services.GuestSession, error)
	Overview(ctx context.Context, session *services.GuestSession) (*services.InvitationOverview, error)
}

// Dependencies carries the services the router exposes.
type Dependencies struct {
	Config     *app.Config
	Access     GuestAccess
	Invites    handlers.InviteIssuer
	RSVPs      handlers.RSVPRecorder
	Songs      handlers.SongCatalog
	Negotiator *locale.Negotiator

	// RateStore backs the public API rate limit. Nil disables limiting.
	RateStore middleware.RateStore

	// Health is optional; without it /health only reports that the process is up.
	Health *monitoring.HealthManager
}

func (d Dependencies) validate() error {
	switch {
	case d.Config == nil:
		return errors.New("config must be provided")
	case d.Access == nil:
		return errors.New("access service must be provided")
	case d.Invites == nil:
		return errors.New("invite service must be provided")
	case d.RSVPs == nil:
		return errors.New("rsvp service must be provided")
	case d.Songs == nil:
		return errors.New("song service must be provided")
	}
	return nil
}

// NewRouter builds the Gin engine, wires middleware and registers the site routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if deps.Negotiator == nil {
		deps.Negotiator = locale.NewNegotiator(deps.Config.App.DefaultLocale)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())

	registerHealthRoutes(r, deps.Config, deps.Health)

	api := r.Group("/api")
	if deps.Config.RateLimit.Enabled {
		api.Use(middleware.RateLimit(deps.RateStore, deps.Config.RateLimit.Requests, deps.Config.RateLimit.Window))
	}

	if err := registerAccessRoutes(r, api, deps); err != nil {
		return nil, err
	}
	if err := registerInviteRoutes(api, deps.Invites); err != nil {
		return nil, err
	}
	if err := registerGuestbookRoutes(api, deps.RSVPs, deps.Songs); err != nil {
		return nil, err
	}

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}

var (
	_ GuestAccess           = (*services.AccessService)(nil)
	_ handlers.InviteIssuer = (*services.InviteService)(nil)
	_ handlers.RSVPRecorder = (*services.RSVPService)(nil)
	_ handlers.SongCatalog  = (*services.SongService)(nil)
)
