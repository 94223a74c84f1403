// Package storefront wires the terminal storefront client: configuration,
// logging, session storage, the API client and the TUI.
package storefront

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xenking/kart-storefront/internal/domain/admin"
	"github.com/xenking/kart-storefront/internal/domain/carousel"
	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/catalog"
	"github.com/xenking/kart-storefront/internal/domain/checkout"
	"github.com/xenking/kart-storefront/internal/domain/nav"
	"github.com/xenking/kart-storefront/internal/domain/session"
	"github.com/xenking/kart-storefront/internal/storage/file"
	"github.com/xenking/kart-storefront/internal/storage/redis"
	"github.com/xenking/kart-storefront/internal/storeapi"
	"github.com/xenking/kart-storefront/internal/tui"
)

// NewLogger builds a JSON logger writing to the configured log file. The
// terminal belongs to the TUI, so nothing is logged to stdout or stderr.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{cfg.LogFile}
	zc.ErrorOutputPaths = []string{cfg.LogFile}
	zc.Sampling = nil
	if cfg.Debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	lg, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return lg, nil
}

// openSessions returns the configured session repository and a cleanup
// function for its connection.
func openSessions(ctx context.Context, cfg *Config) (session.Repository, func(), error) {
	switch cfg.Session.Backend {
	case SessionRedis:
		rc := cfg.Session.Redis
		rdb, err := redis.Connect(ctx, rc.Addr, rc.Password, rc.DB)
		if err != nil {
			return nil, nil, errors.Wrap(err, "connect redis")
		}
		return redis.NewSessionRepository(rdb, rc.Key, rc.TTL), func() { _ = rdb.Close() }, nil
	default:
		path := cfg.Session.Path
		if path == "" {
			var err error
			if path, err = file.DefaultPath(); err != nil {
				return nil, nil, err
			}
		}
		return file.NewSessionRepository(path), func() {}, nil
	}
}

// NewDeps builds the domain views over one API base URL.
func NewDeps(ctx context.Context, cfg *Config, repo session.Repository) (tui.Deps, error) {
	opts := storeapi.Options{Timeout: cfg.Timeout}

	// Login and token resolution pass the token explicitly, so the auth
	// client has no token source.
	authClient, err := storeapi.New(cfg.baseURL(), nil, opts)
	if err != nil {
		return tui.Deps{}, errors.Wrap(err, "create auth client")
	}
	sessions := session.NewManager(repo, authClient.Auth())

	api, err := storeapi.New(cfg.baseURL(), sessions, opts)
	if err != nil {
		return tui.Deps{}, errors.Wrap(err, "create api client")
	}

	signal := &checkout.Signal{}
	prompter := tui.NewPrompter()
	notices := tui.NewNotices()

	zctx.From(ctx).Info("Storefront client configured",
		zap.String("base_url", cfg.baseURL()),
		zap.String("session_backend", cfg.Session.Backend),
	)

	return tui.Deps{
		Sessions:         sessions,
		Shell:            nav.NewShell(sessions, api.Carts()),
		Catalog:          catalog.NewBrowser(api.Products()),
		Cart:             cart.NewView(api.Carts(), signal),
		Editor:           admin.NewEditor(api.Products(), prompter, notices),
		Checkout:         checkout.NewFlow(signal),
		Carousel:         carousel.New(carousel.DefaultImages),
		Prompter:         prompter,
		Notices:          notices,
		CarouselInterval: cfg.carouselInterval(),
	}, nil
}

// Run starts the TUI and blocks until the user quits or ctx is done.
func Run(ctx context.Context, lg *zap.Logger, cfg *Config) error {
	ctx, cancel := context.WithCancel(zctx.Base(ctx, lg))
	// Cancelling releases a delete still waiting for confirmation.
	defer cancel()

	repo, closeRepo, err := openSessions(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "open session store")
	}
	defer closeRepo()

	deps, err := NewDeps(ctx, cfg, repo)
	if err != nil {
		return err
	}

	program := tea.NewProgram(tui.NewModel(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "run tui")
	}
	lg.Info("Storefront client exited")
	return nil
}
