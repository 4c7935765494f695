package lease

import (
	"context"

	"github.com/coder/quartz"
	"github.com/hashicorp/go-multierror"
	"github.com/hostpool/sls/internal/db"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Reclaimer returns the slots of elapsed sessions to the available pool.
type Reclaimer struct {
	clock quartz.Clock
}

// NewReclaimer returns a reclaimer using the given clock.
func NewReclaimer(clock quartz.Clock) *Reclaimer {
	return &Reclaimer{clock: clock}
}

// PurgeExpired releases every occupied slot whose lease window has elapsed
// and returns the number reclaimed. The expiry predicate is evaluated
// against a single snapshot of the current time taken at scan start, so a
// slot that satisfies the predicate then is reclaimed even if the scan
// takes a while. A single slot failing to release doesn't abort the pass;
// failures are accumulated and reported alongside the count of successes.
func (r *Reclaimer) PurgeExpired(ctx context.Context, gormdb *gorm.DB) (int64, error) {
	log := log.WithFields(logrus.Fields{"context": "purging expired sessions"})

	now := r.clock.Now()

	expired, err := db.ListExpiredSlots(ctx, gormdb, now)
	if err != nil {
		return 0, err
	}

	var reclaimed int64
	var failures *multierror.Error
	for i := range expired {
		slotID := expired[i].ID

		err := gormdb.Transaction(func(tx *gorm.DB) error {
			// Re-check under the row lock: a concurrent release or admin
			// reset may have beaten us to this slot.
			slot, err := db.GetSlotForUpdate(ctx, tx, slotID)
			if err != nil {
				return err
			}
			if slot == nil || !slot.Expired(now) {
				return nil
			}
			return db.ReleaseSlot(ctx, tx, slotID)
		})
		if err != nil {
			log.Errorf("unable to reclaim slot %d: %s", slotID, err.Error())
			failures = multierror.Append(failures, errors.Wrapf(err, "slot %d", slotID))
			continue
		}

		reclaimed++
	}

	log.Debugf("reclaimed %d of %d expired slots", reclaimed, len(expired))

	return reclaimed, failures.ErrorOrNil()
}

// ResetAll unconditionally releases every slot regardless of remaining
// lease time and returns the number of leases cleared. Irreversible; used
// for emergency pool recovery.
func (r *Reclaimer) ResetAll(ctx context.Context, gormdb *gorm.DB) (int64, error) {
	return db.ResetAllSlots(ctx, gormdb)
}

// SetGlobalDuration changes the lease duration applied to future
// allocations and returns the previous value. Occupied slots keep the
// duration they were stamped with; an admin who wants to cut running
// sessions short uses ResetAll instead.
func SetGlobalDuration(ctx context.Context, gormdb *gorm.DB, seconds int64) (int64, error) {
	if seconds <= 0 {
		return 0, errors.New("the lease duration must be greater than zero")
	}
	return db.SetLeaseDuration(ctx, gormdb, seconds)
}
