package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryBackoff_ExponentialWithJitter(t *testing.T) {
	for attempt := 0; attempt < defaultRetryAttempts; attempt++ {
		base := defaultRetryBaseWait << attempt
		minExpected := time.Duration(float64(base) * (1 - retryJitterFraction))
		maxExpected := time.Duration(float64(base) * (1 + retryJitterFraction))

		for i := 0; i < 20; i++ {
			d := retryBackoff(attempt)
			assert.GreaterOrEqual(t, d, minExpected)
			assert.LessOrEqual(t, d, maxExpected)
		}
	}
}

func TestRetryBackoff_NegativeAttemptUsesBase(t *testing.T) {
	d := retryBackoff(-1)
	assert.GreaterOrEqual(t, d, time.Duration(float64(defaultRetryBaseWait)*(1-retryJitterFraction)))
	assert.LessOrEqual(t, d, time.Duration(float64(defaultRetryBaseWait)*(1+retryJitterFraction)))
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		msg    string
		expect bool
	}{
		{"dial tcp 127.0.0.1:5432: connection refused", true},
		{"connection reset by peer", true},
		{"broken pipe", true},
		{"i/o timeout", true},
		{"unexpected EOF", true},
		{"could not connect to server", true},
		{"syntax error at or near", false},
		{"duplicate key value violates unique constraint", false},
		{"relation does not exist", false},
	}

	assert.False(t, isConnectionError(nil))
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.expect, isConnectionError(errors.New(tt.msg)))
		})
	}
}

func TestSleepCtx(t *testing.T) {
	assert.NoError(t, sleepCtx(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepCtx(ctx, time.Hour), context.Canceled)
}

func TestPostgresConfig_DSN(t *testing.T) {
	cfg := DefaultPostgresConfig()
	cfg.Host = "db"
	assert.Equal(t, "postgres://storefront:storefront@db:5432/storefront?sslmode=disable", cfg.DSN())
}

func TestNewPostgresPool_InvalidDSN(t *testing.T) {
	cfg := DefaultPostgresConfig()
	cfg.Port = -1
	cfg.Host = "bad host%"

	_, err := NewPostgresPool(context.Background(), &cfg, nil)
	assert.Error(t, err)
}
