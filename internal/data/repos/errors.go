package repos

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/lumenlearn/mastery-engine/internal/domain"
)

// MapError classifies store failures into engine error codes. Connection and
// serialization failures become CodeDependencyUnavailable so callers can
// retry blindly; the engine itself never retries (every write is already
// safe to re-submit).
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*domain.Error); ok {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.Wrap(domain.CodeNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domain.Wrap(domain.CodeDependencyUnavailable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "40001", "40P01", "55P03":
			// serialization failure / deadlock / lock not available
			return domain.Wrap(domain.CodeDependencyUnavailable, op, err)
		case "53300", "57P03":
			// too many connections / cannot connect now
			return domain.Wrap(domain.CodeDependencyUnavailable, op, err)
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "broken pipe"),
		strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "temporar"):
		return domain.Wrap(domain.CodeDependencyUnavailable, op, err)
	default:
		return domain.Wrap(domain.CodeInternal, op, err)
	}
}
