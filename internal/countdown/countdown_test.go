package countdown_test

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/hostpool/sls/internal/countdown"
	"github.com/stretchr/testify/require"
)

func TestProjectorRemaining(t *testing.T) {
	ctx := context.Background()
	clock := quartz.NewMock(t)
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock.Set(t0)

	projector := countdown.NewProjector(clock, nil, nil)
	require.Zero(t, projector.Remaining())

	projector.Start(t0, time.Hour)
	require.Equal(t, time.Hour, projector.Remaining())

	clock.Advance(15 * time.Minute).MustWait(ctx)
	require.Equal(t, 45*time.Minute, projector.Remaining())

	// Past the expiry instant the projection clamps at zero rather than
	// going negative.
	clock.Advance(2 * time.Hour).MustWait(ctx)
	require.Zero(t, projector.Remaining())
}

func TestProjectorTicks(t *testing.T) {
	ctx := context.Background()
	clock := quartz.NewMock(t)
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock.Set(t0)

	ticks := make(chan time.Duration, 16)
	projector := countdown.NewProjector(clock, func(remaining time.Duration) {
		ticks <- remaining
	}, nil)
	defer projector.Stop()

	projector.Start(t0, 5*time.Second)

	clock.Advance(time.Second).MustWait(ctx)
	require.Equal(t, 4*time.Second, <-ticks)

	clock.Advance(time.Second).MustWait(ctx)
	require.Equal(t, 3*time.Second, <-ticks)
}

func TestProjectorExpiresOnce(t *testing.T) {
	ctx := context.Background()
	clock := quartz.NewMock(t)
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock.Set(t0)

	expired := make(chan struct{}, 4)
	projector := countdown.NewProjector(clock, nil, func() {
		expired <- struct{}{}
	})

	projector.Start(t0, 3*time.Second)

	clock.Advance(3 * time.Second).MustWait(ctx)
	require.Len(t, expired, 1)
	<-expired
	require.Zero(t, projector.Remaining())

	// The notification fires once per Start, not once per clock event.
	clock.Advance(time.Minute).MustWait(ctx)
	require.Empty(t, expired)
}

func TestProjectorStartAlreadyExpired(t *testing.T) {
	ctx := context.Background()
	clock := quartz.NewMock(t)
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock.Set(t0)

	expired := make(chan struct{}, 1)
	projector := countdown.NewProjector(clock, nil, func() {
		expired <- struct{}{}
	})

	// A lease whose window already elapsed before the projection was built.
	projector.Start(t0.Add(-time.Hour), 30*time.Minute)
	require.Zero(t, projector.Remaining())

	clock.Advance(time.Millisecond).MustWait(ctx)
	require.Len(t, expired, 1)
}

func TestProjectorRestartReplacesCountdown(t *testing.T) {
	ctx := context.Background()
	clock := quartz.NewMock(t)
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock.Set(t0)

	expired := make(chan struct{}, 4)
	projector := countdown.NewProjector(clock, nil, func() {
		expired <- struct{}{}
	})

	projector.Start(t0, 2*time.Second)
	clock.Advance(time.Second).MustWait(ctx)

	// Restarting with fresh lease parameters discards the old deadline.
	projector.Start(clock.Now(), 10*time.Second)
	require.Equal(t, 10*time.Second, projector.Remaining())

	clock.Advance(2 * time.Second).MustWait(ctx)
	require.Empty(t, expired)
	require.Equal(t, 8*time.Second, projector.Remaining())

	clock.Advance(8 * time.Second).MustWait(ctx)
	require.Len(t, expired, 1)
}

func TestProjectorStopSilencesCallbacks(t *testing.T) {
	ctx := context.Background()
	clock := quartz.NewMock(t)
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock.Set(t0)

	ticks := make(chan time.Duration, 16)
	expired := make(chan struct{}, 1)
	projector := countdown.NewProjector(clock, func(remaining time.Duration) {
		ticks <- remaining
	}, func() {
		expired <- struct{}{}
	})

	projector.Start(t0, 3*time.Second)
	projector.Stop()
	require.Zero(t, projector.Remaining())

	clock.Advance(time.Minute).MustWait(ctx)
	require.Empty(t, ticks)
	require.Empty(t, expired)
}
