// Command server runs the Easyplit API: session-cookie authentication in
// front of group and expense resources. Postgres, Redis, and Kafka are all
// optional; absent backends fall back to in-memory stores so a bare binary
// still runs end to end.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"easyplit/internal/audit"
	authhandler "easyplit/internal/auth/handler"
	"easyplit/internal/auth/lockout"
	"easyplit/internal/auth/service"
	sessionstore "easyplit/internal/auth/store/session"
	userstore "easyplit/internal/auth/store/user"
	"easyplit/internal/auth/token"
	"easyplit/internal/expense"
	expensehandler "easyplit/internal/expense/handler"
	"easyplit/internal/group"
	grouphandler "easyplit/internal/group/handler"
	"easyplit/internal/oauth"
	"easyplit/internal/platform/config"
	"easyplit/internal/platform/httpserver"
	"easyplit/internal/platform/kafka"
	"easyplit/internal/platform/logger"
	"easyplit/internal/platform/metrics"
	"easyplit/internal/platform/middleware"
	"easyplit/internal/platform/postgres"
	"easyplit/internal/platform/redis"
	httptransport "easyplit/internal/transport/http"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.FromEnv()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)
	m := metrics.New()

	pool, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	if err := postgres.ApplySchema(ctx, pool); err != nil {
		return err
	}
	rdb, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}
	producer, err := kafka.NewProducer(ctx, cfg.Kafka)
	if err != nil {
		return err
	}
	if producer != nil {
		defer producer.Close()
	}

	// Stores: real backends when configured, memory otherwise.
	var users service.UserStore
	var groupDir group.UserDirectory
	if pool != nil {
		pg := userstore.NewPostgresStore(pool.Pool)
		users, groupDir = pg, pg
	} else {
		mem := userstore.NewInMemoryStore()
		users, groupDir = mem, mem
		log.Warn("no DATABASE_URL set, using in-memory user store")
	}

	var sessions service.SessionStore
	var lockoutStore lockout.Store
	if rdb != nil {
		sessions = sessionstore.NewRedisStore(rdb.Client)
		lockoutStore = lockout.NewRedisStore(rdb.Client)
	} else {
		sessions = sessionstore.NewInMemoryStore()
		lockoutStore = lockout.NewInMemoryStore()
		log.Warn("no REDIS_URL set, using in-memory session store")
	}

	// Audit outbox: Postgres when available, memory otherwise. The relay
	// only runs when Kafka is configured.
	var auditStore audit.Store
	var outbox audit.OutboxStore
	if pool != nil {
		db, err := audit.OpenPostgres(cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		pg := audit.NewPostgresStore(db)
		auditStore, outbox = pg, pg
	} else {
		mem := audit.NewInMemoryStore()
		auditStore, outbox = mem, mem
	}
	publisher := audit.NewPublisher(auditStore, audit.WithPublisherLogger(log))

	locks, err := lockout.New(lockoutStore, lockout.WithLogger(log))
	if err != nil {
		return err
	}

	codec := token.NewCodec(cfg.JWTSigningKey, "easyplit")
	authSvc, err := service.New(users, sessions, codec,
		service.WithLockout(locks),
		service.WithAuditPublisher(publisher),
		service.WithMetrics(m),
		service.WithLogger(log),
		service.WithSessionTTL(cfg.SessionTTL),
	)
	if err != nil {
		return err
	}

	groupSvc, err := group.NewService(newGroupStore(pool), groupDir,
		group.WithAuditPublisher(publisher),
		group.WithMetrics(m),
		group.WithLogger(log),
	)
	if err != nil {
		return err
	}
	expenseSvc, err := expense.NewService(newExpenseStore(pool), groupSvc,
		expense.WithAuditPublisher(publisher),
		expense.WithMetrics(m),
		expense.WithLogger(log),
	)
	if err != nil {
		return err
	}

	resolver := middleware.ResolverFunc(func(ctx context.Context, raw string) (*middleware.Identity, error) {
		user, sess, err := authSvc.Resolve(ctx, raw)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, nil
		}
		return &middleware.Identity{UserID: user.ID, SessionID: sess.ID}, nil
	})

	gateDelay := cfg.GateDelay
	if cfg.IsProduction() {
		gateDelay = 0
	}

	cookie := authhandler.CookieConfig{
		Name:   cfg.CookieName,
		Secure: cfg.CookieSecure,
		TTL:    cfg.SessionTTL,
	}
	health := map[string]httptransport.HealthCheck{}
	if pool != nil {
		health["postgres"] = func() error { return pool.Health(context.Background()) }
	}
	if rdb != nil {
		health["redis"] = func() error { return rdb.Health(context.Background()) }
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:   log,
		Resolver: resolver,
		Gate: middleware.GateConfig{
			CookieName: cfg.CookieName,
			LoginURL:   cfg.LoginURL,
			Delay:      gateDelay,
		},
		Auth:     authhandler.New(authSvc, cookie, log),
		OAuth:    oauth.New(cfg.OAuth, cfg.CookieName, cfg.CookieSecure, log),
		Groups:   grouphandler.New(groupSvc, log),
		Expenses: expensehandler.New(expenseSvc, log),
		Health:   health,
	})

	srv := httpserver.New(cfg.Addr, router)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting easyplit server", "addr", cfg.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if producer != nil {
		relay := audit.NewRelay(outbox, producer, cfg.Kafka.AuditTopic, log)
		g.Go(func() error {
			err := relay.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newGroupStore(pool *postgres.Pool) group.Store {
	if pool != nil {
		return group.NewPostgresStore(pool.Pool)
	}
	return group.NewInMemoryStore()
}

func newExpenseStore(pool *postgres.Pool) expense.Store {
	if pool != nil {
		return expense.NewPostgresStore(pool.Pool)
	}
	return expense.NewInMemoryStore()
}
