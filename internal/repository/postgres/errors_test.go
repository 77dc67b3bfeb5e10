package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"taskapi/internal/repository"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"foreign key", &pgconn.PgError{Code: codeForeignKeyViolation}, repository.ErrReferentialIntegrity},
		{"unique", &pgconn.PgError{Code: codeUniqueViolation}, repository.ErrDuplicate},
		{"other sqlstate", &pgconn.PgError{Code: "42P01"}, repository.ErrTransport},
		{"plain error", errors.New("broken pipe"), repository.ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}
