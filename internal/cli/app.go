package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	authhandler "projecthub/internal/auth/handler"
	"projecthub/internal/auth/revocation"
	authservice "projecthub/internal/auth/service"
	"projecthub/internal/auth/token"
	dashboardhandler "projecthub/internal/dashboard/handler"
	dashboardservice "projecthub/internal/dashboard/service"
	httpapi "projecthub/internal/http"
	invitationhandler "projecthub/internal/invitations/handler"
	invitationservice "projecthub/internal/invitations/service"
	invitationstore "projecthub/internal/invitations/store"
	materialhandler "projecthub/internal/materials/handler"
	materialservice "projecthub/internal/materials/service"
	materialstore "projecthub/internal/materials/store"
	"projecthub/internal/notification"
	outboxstore "projecthub/internal/notification/store"
	"projecthub/internal/platform/config"
	"projecthub/internal/platform/metrics"
	"projecthub/internal/platform/middleware"
	"projecthub/internal/platform/postgres"
	"projecthub/internal/platform/redis"
	projecthandler "projecthub/internal/projects/handler"
	projectservice "projecthub/internal/projects/service"
	projectstore "projecthub/internal/projects/store"
	taskhandler "projecthub/internal/tasks/handler"
	taskservice "projecthub/internal/tasks/service"
	taskstore "projecthub/internal/tasks/store"
	userhandler "projecthub/internal/users/handler"
	userservice "projecthub/internal/users/service"
	userstore "projecthub/internal/users/store"
	"projecthub/pkg/secrets"
)

// revocationList is satisfied by both the Redis and the in-process list.
type revocationList interface {
	authservice.Revoker
	middleware.RevocationChecker
}

// app holds everything serve runs and closes.
type app struct {
	db     *sql.DB
	redis  *goredis.Client
	router http.Handler
	worker *notification.Worker
	memTRL *revocation.MemoryTRL
}

// buildApp opens the pool and Redis, then wires stores, services and
// handlers. On error everything opened so far is closed.
func buildApp(ctx context.Context, cfg config.Config, log *slog.Logger) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.close(log)
		}
	}()

	a.db, err = postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err = postgres.Migrate(ctx, a.db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	a.redis, err = redis.Open(ctx, cfg.Redis)
	if err != nil && !errors.Is(err, redis.ErrNotConfigured) {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(a.db, cfg.Database.Name),
	)
	m := metrics.New(reg)

	signingKey := cfg.Auth.JWTSigningKey
	if signingKey == "" {
		signingKey, err = secrets.Generate()
		if err != nil {
			return nil, err
		}
		log.Warn("JWT_SIGNING_KEY not set, using an ephemeral key; tokens will not survive a restart")
	}

	var trl revocationList
	if a.redis != nil {
		trl = revocation.NewRedisTRL(a.redis)
	} else {
		a.memTRL = revocation.NewMemoryTRL()
		trl = a.memTRL
	}

	var sender notification.Sender
	if cfg.SMTP.Host != "" {
		sender, err = notification.NewMailer(cfg.SMTP)
		if err != nil {
			return nil, err
		}
	} else {
		log.Warn("SMTP_HOST not set, invitation mails will only be logged")
		sender = notification.NewLogSender(log)
	}

	txRunner := postgres.NewTxRunner(a.db)
	users := userstore.NewPostgres(a.db)
	projects := projectstore.NewPostgres(a.db)
	tasks := taskstore.NewPostgres(a.db)
	outbox := outboxstore.NewPostgres(a.db)

	jwtService := token.NewJWTService(signingKey, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	requireAuth := middleware.RequireAuth(token.NewMiddlewareAdapter(jwtService), trl, log)
	proxies, err := middleware.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, err
	}
	loginLimiter := middleware.NewIPRateLimiter(cfg.Auth.LoginRatePerSec, cfg.Auth.LoginRateBurst, log, m)

	handlers := []httpapi.Registrar{
		userhandler.New(userservice.New(users,
			userservice.WithLogger(log),
			userservice.WithMetrics(m),
			userservice.WithBcryptCost(cfg.Auth.BcryptCost),
		), log),
		projecthandler.New(projectservice.New(projects,
			projectservice.WithLogger(log),
			projectservice.WithMetrics(m),
		), log),
		taskhandler.New(taskservice.New(tasks, txRunner,
			taskservice.WithLogger(log),
			taskservice.WithMetrics(m),
		), log),
		materialhandler.New(materialservice.New(materialstore.NewPostgres(a.db),
			materialservice.WithLogger(log),
			materialservice.WithMetrics(m),
		), log),
		invitationhandler.New(invitationservice.New(invitationstore.NewPostgres(a.db), outbox, txRunner,
			invitationservice.WithLogger(log),
			invitationservice.WithMetrics(m),
			invitationservice.WithBaseURL(cfg.Server.BaseURL),
		), log),
		authhandler.New(authservice.New(users, jwtService, trl,
			authservice.WithLogger(log),
			authservice.WithMetrics(m),
			authservice.WithBcryptCost(cfg.Auth.BcryptCost),
		), log, requireAuth, loginLimiter.Middleware),
		dashboardhandler.New(dashboardservice.New(projects, tasks,
			dashboardservice.WithLogger(log),
		), log),
	}

	checks := map[string]httpapi.HealthCheck{"database": a.db.PingContext}
	if a.redis != nil {
		checks["redis"] = redis.HealthCheck(a.redis)
	}

	a.router = httpapi.NewRouter(httpapi.Config{
		Logger:         log,
		Metrics:        m,
		Gatherer:       reg,
		Handlers:       handlers,
		HealthChecks:   checks,
		TrustedProxies: proxies,
	})
	a.worker = notification.NewWorker(outbox, sender, cfg.Notify,
		notification.WithLogger(log),
		notification.WithMetrics(m),
	)
	return a, nil
}

// close releases the pool and the Redis client. It is called once.
func (a *app) close(log *slog.Logger) {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Error("failed to close redis client", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Error("failed to close database pool", "error", err)
		}
	}
}
