package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wishwell/api/internal/testutil"
)

// setupDB gives each test a migrated, empty database or skips when none is
// reachable.
func setupDB(t *testing.T) (context.Context, *pgxpool.Pool) {
	t.Helper()
	pool := testutil.NewTestPool(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	t.Cleanup(cancel)

	testutil.ApplyMigrations(t, ctx, pool)
	testutil.TruncateAll(t, ctx, pool)
	return ctx, pool
}
