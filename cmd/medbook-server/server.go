package main

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/medbook/medbook/internal/config"
	"github.com/medbook/medbook/internal/domain/appointment"
	"github.com/medbook/medbook/internal/domain/doctor"
	"github.com/medbook/medbook/internal/domain/user"
	"github.com/medbook/medbook/internal/platform/auth"
	"github.com/medbook/medbook/internal/platform/breaker"
	"github.com/medbook/medbook/internal/platform/db"
	"github.com/medbook/medbook/internal/platform/events"
	"github.com/medbook/medbook/internal/platform/middleware"
	"github.com/medbook/medbook/internal/platform/telemetry"
	"github.com/medbook/medbook/internal/platform/validation"
)

const apiVersion = "1.0.0"

// store bundles the repositories of one storage driver.
type store struct {
	users   user.Repository
	doctors doctor.Repository
	appts   appointment.Repository
	pinger  db.Pinger
	close   func()
}

func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		gdb, err := db.OpenSQLite(cfg.SQLiteDSN)
		if err != nil {
			return nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			db.CloseSQLite(gdb)
			return nil, err
		}
		return &store{
			users:   user.NewRepoGorm(gdb),
			doctors: doctor.NewRepoGorm(gdb),
			appts:   appointment.NewRepoGorm(gdb),
			pinger:  db.SQLPinger{DB: sqlDB},
			close:   func() { db.CloseSQLite(gdb) },
		}, nil
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolOptions{
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			return nil, err
		}
		return &store{
			users:   user.NewRepoPG(pool),
			doctors: doctor.NewRepoPG(pool),
			appts:   appointment.NewRepoPG(pool),
			pinger:  pool,
			close:   pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// deps is everything newServer needs beyond configuration.
type deps struct {
	store       *store
	revocations auth.RevocationStore
	events      events.Publisher
	metrics     *telemetry.Metrics
}

// wireDeps connects the optional redis and AMQP backends, falling back to
// in-process implementations when they are not configured or unreachable.
func wireDeps(cfg *config.Config, logger zerolog.Logger, st *store) (deps, func()) {
	d := deps{
		store:       st,
		revocations: auth.NewMemoryRevocationStore(),
		events:      events.LogPublisher{Logger: logger},
		metrics:     telemetry.New("medbook"),
	}
	var closers []func()

	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("invalid REDIS_URL, using in-memory token revocation")
		} else {
			client := redis.NewClient(opt)
			d.revocations = auth.NewRedisRevocationStore(client, breaker.New("redis", breaker.Settings{}, logger))
			closers = append(closers, func() { client.Close() })
			logger.Info().Str("addr", opt.Addr).Msg("token revocation backed by redis")
		}
	}

	if cfg.AMQPURL != "" {
		pub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPQueue, breaker.New("amqp", breaker.Settings{}, logger))
		if err != nil {
			logger.Warn().Err(err).Msg("AMQP unavailable, logging appointment events instead")
		} else {
			d.events = pub
			closers = append(closers, func() { pub.Close() })
			logger.Info().Str("queue", cfg.AMQPQueue).Msg("publishing appointment events to AMQP")
		}
	}

	return d, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}

// ipExtractor keys clients on the socket address unless trusted proxy
// ranges are configured, in which case X-Forwarded-For is honored only
// when it arrives through one of them.
func ipExtractor(trusted []string) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trusted {
		if _, ipNet, err := net.ParseCIDR(cidr); err == nil {
			opts = append(opts, echo.TrustIPRange(ipNet))
		}
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

func newServer(cfg *config.Config, logger zerolog.Logger, d deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()
	e.IPExtractor = ipExtractor(cfg.TrustedProxies)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(d.metrics.Middleware())
	e.Use(middleware.SecurityHeaders(cfg.HSTSMaxAge))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))
	if cfg.BodyLimit != "" {
		e.Use(echomw.BodyLimit(cfg.BodyLimit))
	}
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"message": "Medical Appointment System API",
			"version": apiVersion,
			"endpoints": map[string]string{
				"auth":         "/api/auth",
				"users":        "/api/users",
				"doctors":      "/api/doctors",
				"appointments": "/api/appointments",
			},
		})
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": apiVersion})
	})
	e.GET("/health/db", db.HealthHandler(d.store.pinger))
	e.GET("/metrics", d.metrics.Handler())

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	authLimit := middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.AuthRateLimitRPS,
		BurstSize:         cfg.AuthRateLimitBurst,
	})

	api := e.Group("/api", middleware.RateLimit(rateLimitCfg))
	authn := auth.JWTMiddleware(auth.JWTConfig{
		SigningKey:  []byte(cfg.JWTSecret),
		Issuer:      cfg.JWTIssuer,
		Revocations: d.revocations,
	})

	tokens := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.TokenTTL)
	userSvc := user.NewService(d.store.users, tokens, d.revocations)
	user.NewHandler(userSvc).RegisterRoutes(api, authn, authLimit)

	doctorSvc := doctor.NewService(d.store.doctors)
	doctor.NewHandler(doctorSvc).RegisterRoutes(api, authn)

	apptSvc := appointment.NewService(d.store.appts, d.events, d.metrics, logger)
	appointment.NewHandler(apptSvc).RegisterRoutes(api, authn)

	return e
}
