package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

// Gateway owns the database handle and hands out per-request sessions.
type Gateway struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewGateway(db *gorm.DB, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{db: db, log: log}
}

// Migrate creates the products table if needed. There is no versioning.
func (g *Gateway) Migrate(ctx context.Context) error {
	return classify(g.db.WithContext(ctx).AutoMigrate(&Product{}))
}

func (g *Gateway) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		sqlDB, err := g.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
}

func (g *Gateway) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithSession pins one pooled connection for the duration of fn and
// releases it on every exit path, panics included.
func (g *Gateway) WithSession(ctx context.Context, fn func(*Session) error) error {
	opened := false

	err := g.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		opened = true
		s := &Session{
			ID:  uuid.NewString(),
			db:  conn.Session(&gorm.Session{}),
			log: g.log,
		}

		s.log.Debug("session opened", zap.String("session_id", s.ID))
		defer s.log.Debug("session closed", zap.String("session_id", s.ID))

		return fn(s)
	})

	if err != nil && !opened {
		return classify(err)
	}
	return err
}

// Session is a unit of work bound to a single connection.
type Session struct {
	ID string

	db  *gorm.DB
	log *zap.Logger
}

func (s *Session) List(ctx context.Context) ([]Product, error) {
	out := make([]Product, 0, 16)

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Order("id ASC").Find(&out).Error
	})
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (s *Session) Get(ctx context.Context, id int64) (Product, bool, error) {
	var p Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.WithContext(ctx).First(&p, id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Product{}, false, nil
	}
	if err != nil {
		return Product{}, false, classify(err)
	}
	return p, true, nil
}

func (s *Session) Insert(ctx context.Context, p Product) (Product, error) {
	p = p.normalized()
	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Create(&p).Error
	})
	if err != nil {
		return Product{}, classify(err)
	}
	return p, nil
}

// Update overwrites name, description, price and quantity of row id.
func (s *Session) Update(ctx context.Context, id int64, p Product) (Product, error) {
	var affected int64
	p = p.normalized()

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		res := s.db.WithContext(ctx).
			Model(&Product{}).
			Where("id = ?", id).
			Updates(p.changes())
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return Product{}, classify(err)
	}
	if affected == 0 {
		return Product{}, ErrNotFound
	}

	p.ID = id
	return p, nil
}

func (s *Session) Delete(ctx context.Context, id int64) error {
	var affected int64

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		res := s.db.WithContext(ctx).Delete(&Product{}, id)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return classify(err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Session) Count(ctx context.Context) (int64, error) {
	var n int64

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Model(&Product{}).Count(&n).Error
	})
	if err != nil {
		return 0, classify(err)
	}
	return n, nil
}

// Tx runs fn inside one transaction on the session's connection and
// commits once when fn returns nil.
func (s *Session) Tx(ctx context.Context, fn func(*Session) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Session{ID: s.ID, db: tx.Session(&gorm.Session{}), log: s.log})
	})
	return classify(err)
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
