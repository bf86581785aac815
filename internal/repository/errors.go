package repository

import (
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nikolayk812/dishhub/internal/domain"
)

// Postgres error class 08 covers connection exceptions.
const connectionExceptionClass = "08"

// classifyError tags connection-class failures with
// domain.ErrStoreUnavailable so callers can tell a transient outage from
// a rejected statement. Other errors pass through unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, connectionExceptionClass) {
		return errors.Join(err, domain.ErrStoreUnavailable)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return errors.Join(err, domain.ErrStoreUnavailable)
	}

	return err
}
