package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeExpiry(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("plain hold", func(t *testing.T) {
		got := ComputeExpiry(now, 5, nil)
		assert.Equal(t, now.AddDate(0, 0, 5), got)
	})

	t.Run("draw date caps the hold", func(t *testing.T) {
		draw := now.AddDate(0, 0, 2)
		got := ComputeExpiry(now, 5, &draw)
		assert.Equal(t, draw, got)
	})

	t.Run("draw date beyond hold leaves it alone", func(t *testing.T) {
		draw := now.AddDate(0, 0, 30)
		got := ComputeExpiry(now, 5, &draw)
		assert.Equal(t, now.AddDate(0, 0, 5), got)
	})

	t.Run("non-positive hold falls back to default", func(t *testing.T) {
		assert.Equal(t, now.AddDate(0, 0, DefaultHoldDays), ComputeExpiry(now, 0, nil))
		assert.Equal(t, now.AddDate(0, 0, DefaultHoldDays), ComputeExpiry(now, -3, nil))
	})

	t.Run("zero draw date ignored", func(t *testing.T) {
		var zero time.Time
		got := ComputeExpiry(now, 5, &zero)
		assert.Equal(t, now.AddDate(0, 0, 5), got)
	})
}
