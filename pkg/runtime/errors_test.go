package runtime

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", pgx.ErrNoRows, ErrNotFound},
		{"wrapped no rows", &QueryError{Query: "SELECT 1", Err: pgx.ErrNoRows}, ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, ErrConflict},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, ErrConflict},
		{"connection exception", &pgconn.PgError{Code: "08006"}, ErrStoreUnavailable},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, ErrStoreUnavailable},
		{"too many connections", &pgconn.PgError{Code: "53300"}, ErrStoreUnavailable},
		{"sentinel passes through", fmt.Errorf("%w: no default", ErrInvalidState), ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("Classify(%v) = %v, want match for %v", tt.err, got, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Errorf("Classify(%v) lost the original error", tt.err)
			}
		})
	}
}

func TestClassify_Unmapped(t *testing.T) {
	syntax := &pgconn.PgError{Code: "42601"}
	assert.Same(t, error(syntax), Classify(syntax))

	assert.Nil(t, Classify(nil))
	assert.Equal(t, context.Canceled, Classify(context.Canceled))
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap("get", "bookmark", "1", nil))

	err := Wrap("get", "bookmark", "7", pgx.ErrNoRows)
	var ee *EntityError
	if assert.ErrorAs(t, err, &ee) {
		assert.Equal(t, "get", ee.Op)
		assert.Equal(t, "bookmark", ee.Entity)
		assert.Equal(t, "7", ee.Key)
	}
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), `get bookmark "7": `)

	// an already attributed error keeps its first identity
	again := Wrap("delete", "topic", "x", err)
	assert.Same(t, err, again)
}

func TestValidationError(t *testing.T) {
	err := errors.Join(&ValidationError{Field: "url", Message: "is required"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "url")
}
