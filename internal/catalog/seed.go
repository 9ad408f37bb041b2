package catalog

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type SeedMetrics struct {
	Inserted prometheus.Counter
}

func NewSeedMetrics(reg prometheus.Registerer) *SeedMetrics {
	m := &SeedMetrics{
		Inserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_seed_inserted_total",
			Help: "Seed products inserted at startup",
		}),
	}
	reg.MustRegister(m.Inserted)
	return m
}

// ReconcileSeed inserts SeedProducts in one transaction when the table is
// empty and leaves a non-empty table untouched. It returns the number of
// rows inserted.
func ReconcileSeed(ctx context.Context, g *Gateway, log *zap.Logger, m *SeedMetrics) (int, error) {
	if log == nil {
		log = zap.NewNop()
	}

	inserted := 0
	err := g.WithSession(ctx, func(s *Session) error {
		n, err := s.Count(ctx)
		if err != nil {
			return err
		}
		if n != 0 {
			log.Info("seed skipped", zap.Int64("existing", n))
			return nil
		}

		seeds := SeedProducts()
		if err := s.Tx(ctx, func(tx *Session) error {
			for _, p := range seeds {
				if _, err := tx.Insert(ctx, p); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			return err
		}

		inserted = len(seeds)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if inserted > 0 {
		log.Info("seed inserted", zap.Int("count", inserted))
		if m != nil {
			m.Inserted.Add(float64(inserted))
		}
	}
	return inserted, nil
}
