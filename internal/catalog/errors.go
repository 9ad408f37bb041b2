package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("product not found")
	ErrValidation         = errors.New("invalid request")
	ErrConflict           = errors.New("product already exists")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

const (
	pgUniqueCode         = "23505"
	pgNotNullCode        = "23502"
	pgCheckCode          = "23514"
	pgDataExceptionClass = "22"
)

// classify maps driver errors onto the catalog error set.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict),
		errors.Is(err, ErrValidation), errors.Is(err, ErrStorageUnavailable):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return ErrConflict
	case isRejectedInput(err):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	default:
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueCode
}

// isRejectedInput reports whether Postgres refused the values themselves:
// an oversized string, an out of range number or a missing required column.
func isRejectedInput(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch {
	case strings.HasPrefix(pgErr.Code, pgDataExceptionClass):
		return true
	case pgErr.Code == pgNotNullCode, pgErr.Code == pgCheckCode:
		return true
	}
	return false
}
