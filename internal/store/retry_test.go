package store

import (
	"errors"
	"testing"

	"github.com/lindqvist/court-circuit/internal/tournament"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetryExhaustsAttemptsThenSurfacesStoreIOError(t *testing.T) {
	attempts := 0
	err := withRetry("LoadPlayers", func() error {
		attempts++
		return errors.New("database is locked")
	})

	require.Error(t, err)
	assert.Equal(t, retryAttempts, attempts)

	var ioErr *tournament.StoreIOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "LoadPlayers", ioErr.Op)
	assert.ErrorContains(t, err, "database is locked")
}

func TestWithRetryRecoversFromTransientFailure(t *testing.T) {
	attempts := 0
	err := withRetry("ReplaceMatches", func() error {
		attempts++
		if attempts < retryAttempts {
			return errors.New("database is locked")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, retryAttempts, attempts)
}

func TestWithRetryTreatsConsistencyErrorsAsPermanent(t *testing.T) {
	attempts := 0
	err := withRetry("LoadMatches", func() error {
		attempts++
		return tournament.NewConsistencyError("duplicate match row %q", "M1")
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	var cErr *tournament.ConsistencyError
	assert.ErrorAs(t, err, &cErr)
	var ioErr *tournament.StoreIOError
	assert.False(t, errors.As(err, &ioErr))
}
