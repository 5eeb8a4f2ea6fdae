package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseTimestamp(t *testing.T) {
	t.Run("RFC3339 with offset", func(t *testing.T) {
		ts, err := ParseTimestamp("2024-01-15T10:30:00+02:00")
		assert.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC), ts)
	})

	t.Run("Local date-time", func(t *testing.T) {
		ts, err := ParseTimestamp("2024-01-15T10:30")
		assert.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), ts)
	})

	t.Run("Bare date", func(t *testing.T) {
		ts, err := ParseTimestamp(" 2024-01-15 ")
		assert.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), ts)
	})

	t.Run("Invalid", func(t *testing.T) {
		_, err := ParseTimestamp("2024/01/15")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "expected ISO 8601")

		_, err = ParseTimestamp("")
		assert.Error(t, err)
	})
}
