//go:build integration

package integration

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"ProductCatalog/pkg/catalogclient"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8082")

func TestSystem_E2E_CRUD(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/readyz")
	c := catalogclient.New(baseURL)

	seeded, err := c.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(seeded) < 2 {
		t.Fatalf("expected seed rows, got %d", len(seeded))
	}

	id := 1000 + rand.Int64N(1_000_000)

	created, err := c.Create(ctx, catalogclient.Product{
		ID: id, Name: "Tablet", Price: decimal.NewFromInt(19999), Quantity: 7,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != id || created.Name != "Tablet" {
		t.Fatalf("created=%+v", created)
	}

	if _, err := c.Create(ctx, catalogclient.Product{ID: id, Name: "dup"}); !errors.Is(err, catalogclient.ErrConflict) {
		t.Fatalf("duplicate create err=%v want conflict", err)
	}

	if _, err := c.Update(ctx, id, catalogclient.Product{Name: "Tablet Pro", Price: decimal.NewFromInt(21999)}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := c.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Tablet Pro" || !got.Price.Equal(decimal.NewFromInt(21999)) {
		t.Fatalf("after update=%+v", got)
	}

	if err := c.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.Get(ctx, id); !errors.Is(err, catalogclient.ErrNotFound) {
		t.Fatalf("get after delete err=%v want not found", err)
	}

	if os.Getenv("E2E_RESTART_CATALOG") == "1" {
		restartCatalogContainer(t, ctx)
		waitReady(t, ctx, baseURL+"/readyz")

		after, err := c.List(ctx)
		if err != nil {
			t.Fatalf("list after restart: %v", err)
		}
		if len(after) != len(seeded) {
			t.Fatalf("restart changed row count: before=%d after=%d", len(seeded), len(after))
		}
	}
}

func TestSystem_E2E_Greeting(t *testing.T) {
	resp, err := http.Get(baseURL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(raw) != "Hello, World!" {
		t.Fatalf("status=%d body=%q", resp.StatusCode, raw)
	}
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp.StatusCode == http.StatusOK {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service not ready: %s", url)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
