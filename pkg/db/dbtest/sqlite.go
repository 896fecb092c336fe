// Package dbtest opens migrated in-memory SQLite databases for repository and service tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/angelmondragon/sweetshop-backend/pkg/config"
	"github.com/angelmondragon/sweetshop-backend/pkg/db"
	"github.com/angelmondragon/sweetshop-backend/pkg/migrate"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Open returns a client bound to a fresh in-memory database with every
// embedded migration applied. The database is dropped when the test ends.
func Open(t *testing.T) *db.Client {
	t.Helper()

	ctx := context.Background()
	cfg := config.DBConfig{
		Driver: config.DBDriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()),
	}
	client, err := db.New(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	sqlDB, err := client.SQL()
	require.NoError(t, err)
	require.NoError(t, migrate.Up(ctx, sqlDB, client.Dialect()))
	return client
}
