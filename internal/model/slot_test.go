package model_test

import (
	"testing"
	"time"

	"github.com/hostpool/sls/internal/model"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestSlotExpiry(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	available := &model.Slot{ID: 1, Status: model.SlotAvailable}
	require.False(t, available.Occupied())
	_, ok := available.ExpiresAt()
	require.False(t, ok)
	require.False(t, available.Expired(t0.Add(24*time.Hour)))

	occupied := &model.Slot{
		ID:              2,
		Status:          model.SlotOccupied,
		Username:        strPtr("alice"),
		StartTimestamp:  timePtr(t0),
		DurationSeconds: 3600,
	}
	require.True(t, occupied.Occupied())
	require.Equal(t, time.Hour, occupied.LeaseDuration())

	expiresAt, ok := occupied.ExpiresAt()
	require.True(t, ok)
	require.Equal(t, t0.Add(time.Hour), expiresAt)

	require.False(t, occupied.Expired(t0))
	require.False(t, occupied.Expired(t0.Add(time.Hour-time.Second)))

	// Expiry is inclusive at the boundary instant.
	require.True(t, occupied.Expired(t0.Add(time.Hour)))
	require.True(t, occupied.Expired(t0.Add(2*time.Hour)))
}

func TestUsageLogWindow(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	usageLog := &model.UsageLog{
		Username:               "alice",
		UsageCount:             10,
		LastUsed:               timePtr(t0),
		RateLimitWindowSeconds: 3600,
		MaxUsesThreshold:       10,
	}

	require.False(t, usageLog.WindowElapsed(t0.Add(time.Hour)))
	require.True(t, usageLog.WindowElapsed(t0.Add(time.Hour+time.Second)))

	// At the cap inside the window the request is denied; once the window
	// elapses the stale count no longer counts against the user.
	require.True(t, usageLog.WindowExceeded(t0.Add(30*time.Minute)))
	require.False(t, usageLog.WindowExceeded(t0.Add(2*time.Hour)))

	// A log that has never been used has no window to elapse.
	fresh := &model.UsageLog{Username: "bob", RateLimitWindowSeconds: 3600, MaxUsesThreshold: 10}
	require.False(t, fresh.WindowElapsed(t0))
	require.False(t, fresh.WindowExceeded(t0))
}

func TestQuotaExhausted(t *testing.T) {
	require.False(t, model.Quota{Consumed: 0, Total: 200}.Exhausted())
	require.False(t, model.Quota{Consumed: 199, Total: 200}.Exhausted())
	require.True(t, model.Quota{Consumed: 200, Total: 200}.Exhausted())
	require.True(t, model.Quota{Consumed: 201, Total: 200}.Exhausted())
}
