package catalogclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"ProductCatalog/internal/catalog"
	"ProductCatalog/pkg/catalogclient"
)

func newCatalogTS(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true, Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	g := catalog.NewGateway(db, zap.NewNop())
	require.NoError(t, g.Migrate(context.Background()))
	_, err = catalog.ReconcileSeed(context.Background(), g, nil, nil)
	require.NoError(t, err)

	ts := httptest.NewServer(catalog.NewHandler(&catalog.Server{Gateway: g}, catalog.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "catalog",
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestClient_RoundTrip(t *testing.T) {
	ts := newCatalogTS(t)
	c := catalogclient.New(ts.URL + "/")
	ctx := context.Background()

	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Phone", list[0].Name)

	in := catalogclient.Product{ID: 3, Name: "Tablet", Price: decimal.NewFromInt(19999), Quantity: 7}
	created, err := c.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, in.ID, created.ID)

	got, err := c.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Tablet", got.Name)
	assert.True(t, got.Price.Equal(in.Price))

	updated, err := c.Update(ctx, 3, catalogclient.Product{Name: "Tablet Pro", Price: decimal.NewFromInt(21999)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated.ID)
	assert.Equal(t, "Tablet Pro", updated.Name)

	require.NoError(t, c.Delete(ctx, 3))

	_, err = c.Get(ctx, 3)
	require.ErrorIs(t, err, catalogclient.ErrNotFound)
	require.ErrorIs(t, c.Delete(ctx, 3), catalogclient.ErrNotFound)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, catalogclient.ErrNotFound},
		{http.StatusConflict, catalogclient.ErrConflict},
		{http.StatusBadRequest, catalogclient.ErrBadRequest},
		{http.StatusServiceUnavailable, catalogclient.ErrUnavailable},
		{http.StatusTeapot, catalogclient.ErrBadStatus},
	}

	for _, tc := range tests {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
		}))

		_, err := catalogclient.New(ts.URL).Get(context.Background(), 1)
		assert.ErrorIs(t, err, tc.want, "status=%d", tc.status)
		ts.Close()
	}
}

func TestClient_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := catalogclient.New(url).List(context.Background())
	require.ErrorIs(t, err, catalogclient.ErrUnavailable)
}
