package web

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

func PgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if ok := errors.As(err, &pgErr); ok && pgErr != nil {
		return strings.TrimSpace(pgErr.Code)
	}
	return ""
}

// IsPgInvalidInput matches the data-exception SQLSTATEs a malformed
// request can trigger before our own validation catches it.
func IsPgInvalidInput(err error) bool {
	switch PgErrorCode(err) {
	case "22P02", "22003", "22007", "22008":
		return true
	default:
		return false
	}
}

// IsPgUniqueViolation reports a duplicate-key insert.
func IsPgUniqueViolation(err error) bool {
	return PgErrorCode(err) == "23505"
}

// IsPgForeignKeyViolation reports a reference to a missing or still
// referenced row.
func IsPgForeignKeyViolation(err error) bool {
	return PgErrorCode(err) == "23503"
}
