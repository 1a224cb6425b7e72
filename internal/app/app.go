package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/GlebRadaev/influmarket/internal/cache"
	"github.com/GlebRadaev/influmarket/internal/config"
	"github.com/GlebRadaev/influmarket/internal/gateway"
	"github.com/GlebRadaev/influmarket/internal/handlers"
	"github.com/GlebRadaev/influmarket/internal/notify"
	"github.com/GlebRadaev/influmarket/internal/pg"
	"github.com/GlebRadaev/influmarket/internal/reconcile"
	"github.com/GlebRadaev/influmarket/internal/repo"
	"github.com/GlebRadaev/influmarket/internal/service"
	"github.com/GlebRadaev/influmarket/internal/traces"
	"github.com/GlebRadaev/influmarket/pkg/auth"
	"github.com/GlebRadaev/influmarket/pkg/clients"
	"github.com/GlebRadaev/influmarket/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg   *config.Config
	api   *handlers.Handlers
	srv   *service.Services
	repo  *repo.Repositories
	jobs  *river.Client[pgx.Tx]
	recon *reconcile.Service

	pool          *pgxpool.Pool
	redis         *redis.Client
	traceShutdown func(context.Context) error

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("can't load config: %w", err)
	}
	a.cfg = cfg

	if err := logger.InitLogger(cfg); err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}

	a.traceShutdown, err = traces.Init(ctx, cfg.OtelEndpoint)
	if err != nil {
		return fmt.Errorf("can't init tracing: %w", err)
	}

	a.pool, err = getPgxpool(ctx, cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	if err := pg.RunMigrations(a.pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}
	if err := migrateRiver(ctx, a.pool); err != nil {
		zap.L().Error("river migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run river migrations: %w", err)
	}

	txManager := pg.NewTXManager(a.pool)
	conn := pg.New(a.pool)
	a.repo = repo.New(conn, txManager)

	if cfg.RedisAddress != "" {
		a.redis = cache.NewRedisClient(cfg.RedisAddress, cfg.RedisPassword)
	} else {
		zap.L().Info("redis address not set, balance cache disabled")
	}

	a.jobs, err = newJobClient(a.pool, a.repo)
	if err != nil {
		return fmt.Errorf("can't build job client: %w", err)
	}

	a.srv = service.New(cfg, a.repo, service.Dependencies{
		TxManager: txManager,
		Cache:     cache.NewBalanceCache(a.redis, cfg.BalanceCacheTTL),
		Gateway:   gateway.New(cfg, clients.NewHTTPClient()),
		Verifier:  gateway.NewVerifier(cfg.GatewayKeySecret, cfg.WebhookSecret),
		Notifier:  notify.NewQueue(a.jobs),
	})
	a.api = handlers.New(a.srv, auth.NewJWTService(cfg.JWTSecret))
	a.recon = reconcile.New(cfg, a.srv.Ledger)

	if err := a.jobs.Start(ctx); err != nil {
		return fmt.Errorf("can't start job client: %w", err)
	}
	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}
	a.recon.Start(ctx)

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		return nil, err
	}
	return dbpool, nil
}

func migrateRiver(ctx context.Context, pool *pgxpool.Pool) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return err
	}
	_, err = migrator.Migrate(ctx, rivermigrate.DirectionUp, nil)
	return err
}

func newJobClient(pool *pgxpool.Pool, repos *repo.Repositories) (*river.Client[pgx.Tx], error) {
	workers := river.NewWorkers()
	river.AddWorker(workers, notify.NewWorker(repos.Notification))

	return river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
		},
		Workers: workers,
	})
}

func (a *Application) router() http.Handler {
	router := chi.NewRouter()
	a.api.InitRoutes(router)

	return cors.New(cors.Options{
		AllowedOrigins:   a.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Gateway-Signature"},
		AllowCredentials: true,
	}).Handler(router)
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	server := http.Server{
		Addr:              a.cfg.Address,
		Handler:           a.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(sCtx); err != nil {
			zap.L().Error("http server shutdown failed", zap.Error(err))
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

// close releases the job client, cache, tracer and pool after the HTTP
// server has drained.
func (a *Application) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.jobs != nil {
		if err := a.jobs.Stop(ctx); err != nil {
			zap.L().Error("job client stop failed", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			zap.L().Warn("redis close failed", zap.Error(err))
		}
	}
	if a.traceShutdown != nil {
		if err := a.traceShutdown(ctx); err != nil {
			zap.L().Warn("tracer shutdown failed", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	close(a.errCh)
	wg.Wait()
	a.close()

	return appErr
}
