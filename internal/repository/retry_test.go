package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourorg/tagpack-service/internal/config"
)

func TestRetryReadRecovers(t *testing.T) {
	calls := 0
	err := retryRead(context.Background(), 3, func() error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryReadGivesUp(t *testing.T) {
	calls := 0
	transient := errors.New("connection reset")
	err := retryRead(context.Background(), 2, func() error {
		calls++
		return transient
	})

	assert.ErrorIs(t, err, transient)
	assert.Equal(t, 3, calls, "first attempt plus two retries")
}

func TestRetryReadPermanentErrors(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
	}{
		{"no rows", context.Background(), sql.ErrNoRows},
		{"cancelled", context.Background(), context.Canceled},
		{"deadline", context.Background(), context.DeadlineExceeded},
		{"cancelled context", cancelled, errors.New("connection reset")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := retryRead(tt.ctx, 5, func() error {
				calls++
				return tt.err
			})

			assert.Error(t, err)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     "5432",
		User:     "tagstore",
		Password: "secret",
		DBName:   "tags",
		SSLMode:  "disable",
	})

	assert.Equal(t, "host=db port=5432 user=tagstore password=secret dbname=tags sslmode=disable", dsn)
}
