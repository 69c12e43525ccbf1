package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/romyseb/wedding/internal/api"
	"github.com/romyseb/wedding/internal/app"
	"github.com/romyseb/wedding/internal/app/maintenance"
	"github.com/romyseb/wedding/internal/auth"
	"github.com/romyseb/wedding/internal/cache"
	"github.com/romyseb/wedding/internal/database"
	"github.com/romyseb/wedding/internal/emails"
	"github.com/romyseb/wedding/internal/locale"
	"github.com/romyseb/wedding/internal/middleware"
	"github.com/romyseb/wedding/internal/monitoring"
	"github.com/romyseb/wedding/internal/monitoring/checks"
	"github.com/romyseb/wedding/internal/services"
	"github.com/romyseb/wedding/pkg/logger"
	"github.com/romyseb/wedding/pkg/mail"
	"github.com/romyseb/wedding/web"
)

const databaseCheckTimeout = 2 * time.Second

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB        *gorm.DB
	Scheduler *maintenance.Scheduler
	Health    *monitoring.HealthManager
	Router    *gin.Engine

	// cancel stops background goroutines such as the memory rate store sweeper.
	cancel context.CancelFunc
}

// bootstrapRuntime initialises the database, services, background jobs and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	ctx, cancel := context.WithCancel(ctx)
	stack := &runtimeStack{cancel: cancel}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mod
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	codec, err := auth.NewTokenCodec(cfg.Auth.TokenCodecConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise token codec: %w", err)
	}

	mailer, err := newMailer(cfg, log)
	if err != nil {
		return nil, err
	}

	negotiator := locale.NewNegotiator(cfg.App.DefaultLocale)
	templates, err := web.EmailTemplates()
	if err != nil {
		return nil, fmt.Errorf("load email templates: %w", err)
	}
	renderer, err := emails.NewRenderer(templates, negotiator)
	if err != nil {
		return nil, fmt.Errorf("initialise email renderer: %w", err)
	}

	store, err := services.NewInvitationStore(stack.DB)
	if err != nil {
		return nil, err
	}

	invites, err := services.NewInviteService(store, codec, mailer, renderer,
		services.WithInviteBaseURL(cfg.App.BaseURL),
		services.WithInviteSender(cfg.Email.FromAddress()),
		services.WithDispatchConcurrency(cfg.Invites.DispatchConcurrency),
	)
	if err != nil {
		return nil, fmt.Errorf("initialise invite service: %w", err)
	}

	access, err := services.NewAccessService(store, codec, negotiator)
	if err != nil {
		return nil, fmt.Errorf("initialise access service: %w", err)
	}

	rsvps, err := services.NewRSVPService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise rsvp service: %w", err)
	}

	songs, err := services.NewSongService(stack.DB)
	if err != nil {
		return nil, fmt.Errorf("initialise song service: %w", err)
	}

	// Counters live in the database unless configured otherwise; the purge job sweeps
	// whichever store is in use.
	var counters cache.Store = cache.NewDatabaseStore(stack.DB)
	if strings.EqualFold(strings.TrimSpace(cfg.RateLimit.Store), "memory") {
		counters = cache.NewMemoryStore()
	}

	var rateStore middleware.RateStore
	if cfg.RateLimit.Enabled {
		rateStore = middleware.NewRateStore(counters)
	}

	tracker := monitoring.NewJobTracker()
	if cfg.Maintenance.Enabled {
		stack.Scheduler = maintenance.NewScheduler(store, counters,
			maintenance.WithStatsSchedule(cfg.Maintenance.StatsSchedule),
			maintenance.WithCachePurgeSchedule(cfg.Maintenance.CachePurgeSchedule),
			maintenance.WithTracker(tracker),
		)
		if err := stack.Scheduler.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
		if err := stack.Scheduler.RefreshMemberStats(ctx); err != nil {
			log.Warn("initial member stats refresh failed", zap.Error(err))
		}
	}

	stack.Health = monitoring.NewHealthManager()
	stack.Health.RegisterLiveness(monitoring.NewCheck("process", func(context.Context) monitoring.ProbeResult {
		return monitoring.ProbeResult{Status: monitoring.StatusUp}
	}))
	stack.Health.RegisterReadiness(checks.Database(stack.DB, databaseCheckTimeout))
	if stack.Scheduler != nil {
		stack.Health.RegisterReadiness(checks.Maintenance(tracker, 0))
	}

	stack.Router, err = api.NewRouter(api.Dependencies{
		Config:     cfg,
		Access:     access,
		Invites:    invites,
		RSVPs:      rsvps,
		Songs:      songs,
		Negotiator: negotiator,
		RateStore:  rateStore,
		Health:     stack.Health,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Scheduler != nil {
		stopCtx := s.Scheduler.Stop()
		if stopCtx != nil {
			ctx = stopCtx
		}
		<-ctx.Done()
	}

	if s.cancel != nil {
		s.cancel()
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
	}
}

func newMailer(cfg *app.Config, log *zap.Logger) (mail.Mailer, error) {
	if !cfg.Email.SMTP.Enabled {
		log.Warn("smtp disabled; invitation emails are logged only")
		return mail.NewLogMailer(logger.WithModule("mail")), nil
	}

	mailer, err := mail.NewSMTPMailer(cfg.Email.SMTPSettings())
	if err != nil {
		return nil, fmt.Errorf("initialise smtp mailer: %w", err)
	}
	log.Info("smtp enabled", zap.String("host", cfg.Email.SMTP.Host), zap.Int("port", cfg.Email.SMTP.Port))
	return mailer, nil
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := convertDatabaseConfig(cfg)
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.Prepare(db); err != nil {
		closeDatabase(db, logger.WithModule("database"))
		return nil, fmt.Errorf("prepare database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", dbCfg.Driver))

	return db, nil
}

func convertDatabaseConfig(cfg *app.Config) database.Config {
	dbCfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(cfg.Database.Driver)),
		Path:   strings.TrimSpace(cfg.Database.Path),
		DSN:    strings.TrimSpace(cfg.Database.DSN),
	}

	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		applyHostConfig(&dbCfg, cfg.Database.Postgres)
	case "mysql":
		applyHostConfig(&dbCfg, cfg.Database.MySQL)
	default:
		// Leave driver as-is to surface unsupported driver error during open.
	}

	return dbCfg
}

func applyHostConfig(dbCfg *database.Config, host app.DBAuthConfig) {
	dbCfg.Host = strings.TrimSpace(host.Host)
	dbCfg.Port = host.Port
	dbCfg.Name = strings.TrimSpace(host.Database)
	dbCfg.User = strings.TrimSpace(host.Username)
	dbCfg.Password = strings.TrimSpace(host.Password)
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
