// Package app connects the stores and builds the services shared by the
// storefront server and the admin CLI.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	authrepo "github.com/chibyk-cyber/pro-shop/internal/auth/repository"
	authsvc "github.com/chibyk-cyber/pro-shop/internal/auth/service"
	"github.com/chibyk-cyber/pro-shop/internal/cart/cache"
	cartrepo "github.com/chibyk-cyber/pro-shop/internal/cart/repository"
	cartsvc "github.com/chibyk-cyber/pro-shop/internal/cart/service"
	"github.com/chibyk-cyber/pro-shop/internal/catalog"
	catalogrepo "github.com/chibyk-cyber/pro-shop/internal/catalog/repository"
	checkoutsvc "github.com/chibyk-cyber/pro-shop/internal/checkout/service"
	"github.com/chibyk-cyber/pro-shop/internal/config"
	"github.com/chibyk-cyber/pro-shop/internal/mongodb"
	ordersrepo "github.com/chibyk-cyber/pro-shop/internal/orders/repository"
	"github.com/chibyk-cyber/pro-shop/internal/payment"
	"github.com/chibyk-cyber/pro-shop/internal/postgres"
	"github.com/chibyk-cyber/pro-shop/internal/profile"
	"github.com/chibyk-cyber/pro-shop/internal/session"
)

type App struct {
	DB      *sql.DB
	Mongo   *mongo.Database
	Redis   *redis.Client
	Catalog *catalog.Catalog

	Orders   *ordersrepo.Repository
	Users    *authrepo.Repository
	Carts    *cartsvc.CartService
	Auth     *authsvc.AuthService
	Sessions *session.Store
	Profiles *profile.Service
	Checkout *checkoutsvc.CheckoutService

	catalogRepo *catalogrepo.Repository
	log         *slog.Logger
}

// ConnectPostgres opens the orders and users database and applies both
// migration sets.
func ConnectPostgres(ctx context.Context, cfg *config.Config, log *slog.Logger) (*sql.DB, error) {
	db, err := postgres.Connect(ctx, postgres.Credentials{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		DBName:   cfg.Postgres.DBName,
	}, postgres.RetryPolicy{
		Attempts: cfg.Postgres.RetryConnAttempts,
		Delay:    cfg.Postgres.RetryConnDelay,
		MaxDelay: cfg.Postgres.RetryConnMaxDelay,
	}, log)
	if err != nil {
		return nil, err
	}

	if err := postgres.RunMigrations(db, cfg.Postgres.UsersMigrations, authrepo.MigrationsTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("users migrations: %w", err)
	}
	if err := postgres.RunMigrations(db, cfg.Postgres.OrdersMigrations, ordersrepo.MigrationsTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("orders migrations: %w", err)
	}
	return db, nil
}

// OpenCatalog opens the SQLite product store, migrates it and loads the
// immutable catalog.
func OpenCatalog(ctx context.Context, cfg *config.Config) (*catalogrepo.Repository, *catalog.Catalog, error) {
	repo, err := catalogrepo.NewRepository(cfg.Catalog.DBPath)
	if err != nil {
		return nil, nil, err
	}
	if err := repo.RunMigrations(cfg.Catalog.Migrations); err != nil {
		_ = repo.Close()
		return nil, nil, fmt.Errorf("catalog migrations: %w", err)
	}
	c, err := catalog.Load(ctx, repo)
	if err != nil {
		_ = repo.Close()
		return nil, nil, err
	}
	return repo, c, nil
}

// New connects every store and builds the services. Checkout is built
// disabled when no payment secret is configured.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	a := &App{log: log}

	db, err := ConnectPostgres(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.DB = db

	a.catalogRepo, a.Catalog, err = OpenCatalog(ctx, cfg)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	log.Info("catalog loaded", slog.Int("products", a.Catalog.Len()))

	a.Mongo, err = mongodb.Connect(ctx, cfg.Mongo)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.Redis = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	if err := a.Redis.Ping(ctx).Err(); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	cartRepo := cartrepo.NewMongoRepository(a.Mongo)
	if err := cartRepo.CreateIndexes(ctx); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("cart indexes: %w", err)
	}
	profileRepo := profile.NewMongoRepository(a.Mongo)
	if err := profileRepo.CreateIndexes(ctx); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("profile indexes: %w", err)
	}

	a.Orders = ordersrepo.NewRepository(db)
	a.Users = authrepo.NewRepository(db)
	a.Carts = cartsvc.NewCartService(cartRepo, cache.NewRedisCache(a.Redis), a.Catalog, log)
	a.Auth = authsvc.NewAuthService(a.Users, cfg, authsvc.DefaultHashParams, log)
	a.Sessions = session.NewStore(a.Redis, cfg.Redis.SessionTTL)
	a.Profiles = profile.NewService(profileRepo)

	var pay checkoutsvc.PaymentClient
	if cfg.CheckoutEnabled() {
		pay = payment.NewClient(payment.Config{
			BaseURL:   cfg.Paystack.BaseURL,
			SecretKey: cfg.Paystack.SecretKey,
			Timeout:   cfg.Paystack.Timeout,
		}, log)
	}
	a.Checkout = checkoutsvc.NewCheckoutService(a.Carts, pay, a.Orders, a.Catalog, cfg.Paystack.Currency, log)

	return a, nil
}

// Close releases every store that was opened.
func (a *App) Close(ctx context.Context) {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.Mongo != nil {
		errs = append(errs, a.Mongo.Client().Disconnect(ctx))
	}
	if a.catalogRepo != nil {
		errs = append(errs, a.catalogRepo.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if err := errors.Join(errs...); err != nil {
		a.log.Warn("failed to close stores", slog.String("error", err.Error()))
	}
}
