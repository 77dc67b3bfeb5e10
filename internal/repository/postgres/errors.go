package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"taskapi/internal/repository"
)

// SQLSTATE codes mapped onto repository error kinds.
const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
)

// classify wraps a failed query with the matching repository error kind.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeForeignKeyViolation:
			return errors.Join(repository.ErrReferentialIntegrity, err)
		case codeUniqueViolation:
			return errors.Join(repository.ErrDuplicate, err)
		}
	}
	return errors.Join(repository.ErrTransport, err)
}
