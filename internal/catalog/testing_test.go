package catalog

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestGateway returns a migrated gateway on a private in-memory SQLite
// database. One connection keeps the database alive and makes leaked
// sessions show up as timeouts.
func newTestGateway(t *testing.T) *Gateway {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	g := NewGateway(db, zap.NewNop())
	require.NoError(t, g.Migrate(context.Background()))
	return g
}

func inSession(t *testing.T, g *Gateway, fn func(s *Session)) {
	t.Helper()
	require.NoError(t, g.WithSession(context.Background(), func(s *Session) error {
		fn(s)
		return nil
	}))
}

func requireSameProduct(t *testing.T, want, got Product) {
	t.Helper()
	require.Equal(t, want.ID, got.ID)
	require.Equal(t, want.Name, got.Name)
	require.Equal(t, want.Description, got.Description)
	require.True(t, want.Price.Equal(got.Price), "price want=%s got=%s", want.Price, got.Price)
	require.Equal(t, want.Quantity, got.Quantity)
}

func price(v int64) decimal.Decimal { return decimal.NewFromInt(v) }
