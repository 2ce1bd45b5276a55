// Package mongodb opens the document store that holds carts.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/chibyk-cyber/pro-shop/internal/config"
)

const appName = "storefront"

var errNoDatabase = errors.New("mongo database name is empty")

// Connect dials cfg.URI, pings the primary and returns the cfg.DBName
// database. The client is closed again when the ping fails.
func Connect(ctx context.Context, cfg config.Mongo) (*mongo.Database, error) {
	if cfg.DBName == "" {
		return nil, errNoDatabase
	}

	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client.Database(cfg.DBName), nil
}
