// Package app wires the stub API server.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/storage/postgres"
	"github.com/xenking/kart-storefront/internal/storage/redis"
	"github.com/xenking/kart-storefront/internal/stub"
	"github.com/xenking/kart-storefront/pkg/health"
	"github.com/xenking/kart-storefront/pkg/httpmiddleware"
)

// Backends are the store and token store selected by configuration, plus
// cleanup for whatever connections they hold.
type Backends struct {
	Store  stub.Store
	Tokens stub.TokenStore
	Close  func()
}

// OpenBackends connects the configured store and token backends.
func OpenBackends(ctx context.Context, lg *zap.Logger, cfg *Config) (*Backends, error) {
	b := &Backends{}
	var closers []func()
	b.Close = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.Store {
	case StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "create db pool")
		}
		closers = append(closers, pool.Close)
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			b.Close()
			return nil, errors.Wrap(err, "run migrations")
		}
		b.Store = postgres.NewStore(pool)
	default:
		seed, err := stub.DemoSeed()
		if err != nil {
			return nil, errors.Wrap(err, "build demo seed")
		}
		lg.Info("Using in-memory store with demo data")
		b.Store = stub.NewMemoryStore(seed)
	}

	switch cfg.Tokens {
	case TokensRedis:
		rdb, err := redis.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			b.Close()
			return nil, errors.Wrap(err, "connect redis")
		}
		closers = append(closers, func() { _ = rdb.Close() })
		b.Tokens = redis.NewTokenStore(rdb, cfg.Redis.Prefix, cfg.Redis.TokenTTL)
	default:
		b.Tokens = stub.NewMemoryTokens()
	}
	return b, nil
}

// NewHandler builds the middleware-wrapped API handler.
func NewHandler(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config, srv *stub.Server, h *health.Health) http.Handler {
	routeFinder := httpmiddleware.MakeRouteFinder(srv.Router())

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", h.LiveEndpoint)
	mux.HandleFunc("/readyz", h.ReadyEndpoint)
	mux.Handle("/", srv)

	return httpmiddleware.Wrap(mux,
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			Origins: cfg.CORS.Origins,
			Headers: []string{"Content-Type", "Authorization", httpmiddleware.RequestIDHeader},
			MaxAge:  86400,
		}),
		httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
		}),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(lg),
		httpmiddleware.Instrument("kart-api-stub", routeFinder, m.MeterProvider(), m.TracerProvider()),
		httpmiddleware.LogRequests(routeFinder),
	)
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("store", cfg.Store),
		zap.String("tokens", cfg.Tokens),
	)

	backends, err := OpenBackends(ctx, lg, cfg)
	if err != nil {
		return err
	}
	defer backends.Close()

	healthSvc := health.New()
	healthSvc.AddReadinessCheck("store", 5*time.Second, health.PingCheck(backends.Store))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	srv := stub.NewServer(backends.Store, backends.Tokens)
	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           NewHandler(ctx, zctx.From(ctx), m, cfg, srv, healthSvc),
	}

	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
