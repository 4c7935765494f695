package lease_test

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/hostpool/sls/internal/db"
	"github.com/hostpool/sls/internal/dbtest"
	"github.com/hostpool/sls/internal/lease"
	"github.com/hostpool/sls/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// occupiedSlotsForUser counts the slots currently leased by the user.
func occupiedSlotsForUser(t *testing.T, gormdb *gorm.DB, username string) int64 {
	t.Helper()
	var count int64
	err := gormdb.Model(&model.Slot{}).
		Where("status = ?", model.SlotOccupied).
		Where("username = ?", username).
		Count(&count).Error
	require.NoError(t, err)
	return count
}

func TestRequestSessionLifecycle(t *testing.T) {
	gormdb := dbtest.NewDB(t)
	ctx := context.Background()
	ids := dbtest.ProvisionPool(t, gormdb, 2)

	_, err := db.EnsureSettings(ctx, gormdb, 3600)
	require.NoError(t, err)

	clock := quartz.NewMock(t)
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock.Set(t0)

	allocator := lease.NewAllocator(clock)
	reclaimer := lease.NewReclaimer(clock)

	// The first request binds the first slot in id order for the
	// platform-wide duration.
	session, err := allocator.RequestSession(ctx, gormdb, &lease.SessionRequest{
		Username:    "alice",
		ProjectID:   "project-1",
		StartCycles: 7,
	})
	require.NoError(t, err)
	require.Equal(t, ids[0], session.SlotID)
	require.Equal(t, t0, session.StartTimestamp)
	require.Equal(t, int64(3600), session.DurationSeconds)

	// The second slot remains available.
	available, err := db.ListAvailableSlots(ctx, gormdb)
	require.NoError(t, err)
	require.Len(t, available, 1)
	require.Equal(t, ids[1], available[0].ID)

	// Occupied slot well-formedness: user and start timestamp both set.
	slot, err := db.GetSlot(ctx, gormdb, ids[0])
	require.NoError(t, err)
	require.Equal(t, model.SlotOccupied, slot.Status)
	require.NotNil(t, slot.Username)
	require.NotNil(t, slot.StartTimestamp)
	require.Equal(t, int64(7), slot.StartCycles)

	// A second request before expiry is rejected rather than allocated a
	// second slot.
	_, err = allocator.RequestSession(ctx, gormdb, &lease.SessionRequest{
		Username:  "alice",
		ProjectID: "project-1",
	})
	require.ErrorIs(t, err, lease.ErrAlreadyLeased)
	require.Equal(t, int64(1), occupiedSlotsForUser(t, gormdb, "alice"))

	// Past expiry, a purge returns the slot to the pool and the user can
	// lease again.
	clock.Advance(3700 * time.Second)

	reclaimed, err := reclaimer.PurgeExpired(ctx, gormdb)
	require.NoError(t, err)
	require.Equal(t, int64(1), reclaimed)

	slot, err = db.GetSlot(ctx, gormdb, ids[0])
	require.NoError(t, err)
	require.Equal(t, model.SlotAvailable, slot.Status)
	require.Nil(t, slot.Username)
	require.Nil(t, slot.StartTimestamp)

	session, err = allocator.RequestSession(ctx, gormdb, &lease.SessionRequest{
		Username:  "alice",
		ProjectID: "project-1",
	})
	require.NoError(t, err)
	require.Equal(t, ids[0], session.SlotID)
	require.Equal(t, int64(1), occupiedSlotsForUser(t, gormdb, "alice"))
}

func TestRequestSessionPoolExhausted(t *testing.T) {
	gormdb := dbtest.NewDB(t)
	ctx := context.Background()
	dbtest.ProvisionPool(t, gormdb, 1)

	_, err := db.EnsureSettings(ctx, gormdb, 3600)
	require.NoError(t, err)

	allocator := lease.NewAllocator(quartz.NewMock(t))

	_, err = allocator.RequestSession(ctx, gormdb, &lease.SessionRequest{
		Username:  "alice",
		ProjectID: "project-1",
	})
	require.NoError(t, err)

	_, err = allocator.RequestSession(ctx, gormdb, &lease.SessionRequest{
		Username:  "bob",
		ProjectID: "project-2",
	})
	require.ErrorIs(t, err, lease.ErrNoSlotsAvailable)

	// A denied request consumes no quota.
	usageLog, err := db.GetUsageLog(ctx, gormdb, "bob")
	require.NoError(t, err)
	require.Zero(t, usageLog.UsageCount)
	require.Zero(t, usageLog.Quota.Consumed)
}

func TestRequestSessionWindowCap(t *testing.T) {
	gormdb := dbtest.NewDB(t)
	ctx := context.Background()
	dbtest.ProvisionPool(t, gormdb, 1)

	_, err := db.EnsureSettings(ctx, gormdb, 3600)
	require.NoError(t, err)

	clock := quartz.NewMock(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock.Set(now)

	allocator := lease.NewAllocator(clock)

	// The user hit the cap moments ago.
	_, err = db.GetUsageLog(ctx, gormdb, "bob")
	require.NoError(t, err)
	err = gormdb.Model(&model.UsageLog{}).
		Where("username = ?", "bob").
		Updates(map[string]interface{}{
			"usage_count": db.DefaultMaxUsesThreshold,
			"last_used":   now.Add(-time.Minute),
		}).Error
	require.NoError(t, err)

	_, err = allocator.RequestSession(ctx, gormdb, &lease.SessionRequest{
		Username:  "bob",
		ProjectID: "project-1",
	})
	require.ErrorIs(t, err, lease.ErrQuotaExceeded)

	// No slot was touched.
	available, err := db.ListAvailableSlots(ctx, gormdb)
	require.NoError(t, err)
	require.Len(t, available, 1)
}

func TestRequestSessionElapsedWindowResets(t *testing.T) {
	gormdb := dbtest.NewDB(t)
	ctx := context.Background()
	dbtest.ProvisionPool(t, gormdb, 1)

	_, err := db.EnsureSettings(ctx, gormdb, 3600)
	require.NoError(t, err)

	clock := quartz.NewMock(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock.Set(now)

	allocator := lease.NewAllocator(clock)

	// The user hit the cap, but the rate-limit window has since elapsed.
	_, err = db.GetUsageLog(ctx, gormdb, "bob")
	require.NoError(t, err)
	lastUsed := now.Add(-time.Duration(db.DefaultRateLimitWindowSeconds+1) * time.Second)
	err = gormdb.Model(&model.UsageLog{}).
		Where("username = ?", "bob").
		Updates(map[string]interface{}{
			"usage_count": db.DefaultMaxUsesThreshold,
			"last_used":   lastUsed,
		}).Error
	require.NoError(t, err)

	_, err = allocator.RequestSession(ctx, gormdb, &lease.SessionRequest{
		Username:  "bob",
		ProjectID: "project-1",
	})
	require.NoError(t, err)

	// The count reset to zero before the request was recorded.
	usageLog, err := db.GetUsageLog(ctx, gormdb, "bob")
	require.NoError(t, err)
	require.Equal(t, int64(1), usageLog.UsageCount)
}

func TestRequestSessionLifetimeQuotaExhausted(t *testing.T) {
	gormdb := dbtest.NewDB(t)
	ctx := context.Background()
	dbtest.ProvisionPool(t, gormdb, 1)

	_, err := db.EnsureSettings(ctx, gormdb, 3600)
	require.NoError(t, err)

	allocator := lease.NewAllocator(quartz.NewMock(t))

	// The lifetime quota is used up; the window state doesn't matter.
	_, err = db.GetUsageLog(ctx, gormdb, "bob")
	require.NoError(t, err)
	err = gormdb.Model(&model.UsageLog{}).
		Where("username = ?", "bob").
		UpdateColumn("quota_consumed", db.DefaultQuotaTotal).Error
	require.NoError(t, err)

	_, err = allocator.RequestSession(ctx, gormdb, &lease.SessionRequest{
		Username:  "bob",
		ProjectID: "project-1",
	})
	require.ErrorIs(t, err, lease.ErrQuotaExceeded)
}

func TestCheckQuotaDoesNotMutate(t *testing.T) {
	gormdb := dbtest.NewDB(t)
	ctx := context.Background()

	allocator := lease.NewAllocator(quartz.NewMock(t))

	decision, err := allocator.CheckQuota(ctx, gormdb, "alice")
	require.NoError(t, err)
	require.True(t, decision.Allowed)
	require.Empty(t, decision.Reason)

	usageLog, err := db.GetUsageLog(ctx, gormdb, "alice")
	require.NoError(t, err)
	require.Zero(t, usageLog.UsageCount)
	require.Zero(t, usageLog.Quota.Consumed)

	// An exhausted lifetime quota is reported with a reason.
	err = gormdb.Model(&model.UsageLog{}).
		Where("username = ?", "alice").
		UpdateColumn("quota_consumed", db.DefaultQuotaTotal).Error
	require.NoError(t, err)

	decision, err = allocator.CheckQuota(ctx, gormdb, "alice")
	require.NoError(t, err)
	require.False(t, decision.Allowed)
	require.NotEmpty(t, decision.Reason)
}
