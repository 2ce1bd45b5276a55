// Package mongotest starts a throwaway MongoDB for repository tests.
package mongotest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/chibyk-cyber/pro-shop/internal/config"
	mongoconn "github.com/chibyk-cyber/pro-shop/internal/mongodb"
)

// Start runs a mongo:7 container and returns a database handle on it.
// The test is skipped under -short.
func Start(t *testing.T) (*mongo.Database, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := mongoconn.Connect(ctx, config.Mongo{URI: uri, DBName: "testdb"})
	require.NoError(t, err)

	cleanup := func() {
		_ = db.Client().Disconnect(ctx)
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return db, cleanup
}
