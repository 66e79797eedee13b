package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfWeek(t *testing.T) {
	// Thursday
	ts := time.Date(2026, 10, 15, 17, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), StartOfWeek(ts))

	// Sunday belongs to the week that started the previous Monday
	sunday := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), StartOfWeek(sunday))
}

func TestParseDateOr(t *testing.T) {
	fallback := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	got, err := ParseDateOr("", fallback)
	require.NoError(t, err)
	assert.Equal(t, fallback, got)

	got, err = ParseDateOr("2026-03-20", fallback)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDateOr("20/03/2026", fallback)
	assert.Error(t, err)
}
