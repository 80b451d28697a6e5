// Package server wires the account service together: storage, token codec,
// mail delivery, services and the HTTP and gRPC surfaces. It also runs the
// refresh-token janitor and handles graceful shutdown.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/xbackend/internal/logging"
	"github.com/dmitrijs2005/xbackend/internal/server/auth"
	"github.com/dmitrijs2005/xbackend/internal/server/config"
	"github.com/dmitrijs2005/xbackend/internal/server/mailer"
	"github.com/dmitrijs2005/xbackend/internal/server/ratelimit"
	"github.com/dmitrijs2005/xbackend/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/xbackend/internal/server/requests"
	"github.com/dmitrijs2005/xbackend/internal/server/services"

	gs "github.com/dmitrijs2005/xbackend/internal/server/grpc"
	hs "github.com/dmitrijs2005/xbackend/internal/server/http"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	repomanager repomanager.RepositoryManager
	userService *services.UserService
	httpServer  *hs.HTTPServer
	grpcServer  *gs.GRPCServer
	closers     []io.Closer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, logging.NewJSONLogger(os.Stdout, c.LogLevel))
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	codec, err := auth.NewCodecFromConfig(c)
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}

	m, err := mailer.NewFromConfig(c, logger.With("module", "mailer"))
	if err != nil {
		return nil, fmt.Errorf("mailer init error: %w", err)
	}

	rm, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("db migrations error: %w", err)
	}

	app := &App{config: c, logger: logger, repomanager: rm, closers: []io.Closer{rm}}

	us, err := services.NewUserService(rm, codec, auth.NewPasswordHasher(c.PasswordHashCost), m, logger,
		services.WithRefreshRotation(c.RotateRefreshTokens))
	if err != nil {
		app.close(ctx)
		return nil, err
	}
	ps := services.NewProfileService(rm, logger)
	as := services.NewAvatarService(c)
	gate := auth.NewGate(codec)
	policy := requests.Policy{MinPasswordEntropy: c.PasswordMinEntropy}

	var httpOpts []hs.Option
	if c.RateLimitEnabled() {
		if c.RedisAddr != "" {
			client := ratelimit.NewRedisClient(c.RedisAddr, c.RedisPassword, c.RedisDB)
			app.closers = append(app.closers, client)
			httpOpts = append(httpOpts, hs.WithRateLimiter(ratelimit.NewRedisStore(client, c.RateLimitRequests, c.RateLimitWindow)))
		} else {
			httpOpts = append(httpOpts, hs.WithRateLimiter(ratelimit.NewMemoryStore(c.RateLimitRequests, c.RateLimitWindow)))
		}
	}

	app.userService = us
	app.httpServer = hs.NewHTTPServer(c.EndpointAddrHTTP, logger, us, ps, as, gate, policy, httpOpts...)
	app.grpcServer = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, us, ps, as, gate, policy)

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, "http server", "error", err)
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpcServer.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server", "error", err)
		cancelFunc()
	}
}

// runJanitor deletes expired refresh tokens every interval until ctx ends.
func (app *App) runJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.userService.CleanupExpiredRefreshTokens(ctx)
			if err != nil {
				app.logger.Error(ctx, "refresh token cleanup", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "expired refresh tokens removed", "count", n)
			}
		}
	}
}

func (app *App) close(ctx context.Context) {
	for _, c := range app.closers {
		if err := c.Close(); err != nil {
			app.logger.Error(ctx, "close", "error", err)
		}
	}
}

// Run blocks until a shutdown signal arrives, ctx is cancelled or one of the
// servers fails, then waits for every goroutine and releases resources.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.runJanitor(ctx, app.config.RefreshTokenCleanupInterval)
	}()

	wg.Wait()

	app.close(context.Background())
	app.logger.Info(context.Background(), "App stopped")
}
