package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"library-api/internal/metrics"
)

var (
	// ErrNotFound is wrapped by every "<entity> not found" error.
	ErrNotFound = errors.New("not found")

	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrBookNotFound     = fmt.Errorf("book %w", ErrNotFound)
	ErrBookCopyNotFound = fmt.Errorf("book copy %w", ErrNotFound)
	ErrBorrowNotFound   = fmt.Errorf("borrow %w", ErrNotFound)
	ErrCompanyNotFound  = fmt.Errorf("company %w", ErrNotFound)

	// ErrConstraintViolation wraps a database integrity error (foreign key,
	// unique, not null, check). The database's message is kept.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrInvalidInput is returned for payloads the database never sees.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateCNPJ is returned when another company already has the CNPJ.
	ErrDuplicateCNPJ = errors.New("a company with this cnpj already exists")
)

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// translateDBError maps driver errors onto the service taxonomy. notFound is
// returned for gorm.ErrRecordNotFound.
func translateDBError(err, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	if msg, ok := constraintMessage(err); ok {
		metrics.DBErrorsTotal.WithLabelValues("constraint").Inc()
		return fmt.Errorf("%w: %s", ErrConstraintViolation, msg)
	}
	metrics.DBErrorsTotal.WithLabelValues("internal").Inc()
	return err
}

// constraintMessage recognises PostgreSQL SQLSTATE class 23 (integrity
// constraint violation) and SQLite constraint failures.
func constraintMessage(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if !strings.HasPrefix(pgErr.Code, "23") {
			return "", false
		}
		if pgErr.Detail != "" {
			return pgErr.Message + " (" + pgErr.Detail + ")", true
		}
		return pgErr.Message, true
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) ||
		errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return err.Error(), true
	}
	if strings.Contains(err.Error(), "constraint failed") {
		return err.Error(), true
	}
	return "", false
}

// failureEvent picks the level for a failed write: constraint violations are
// caused by the caller and logged at warn, anything else at error.
func failureEvent(log zerolog.Logger, err error) *zerolog.Event {
	if _, ok := constraintMessage(err); ok {
		return log.Warn()
	}
	return log.Error()
}
