// Package lease implements the session lease allocator and the expiry and
// reclamation service for the shared runner pool.
package lease

import (
	"context"
	"time"

	"github.com/coder/quartz"
	"github.com/hostpool/sls/internal/db"
	"github.com/hostpool/sls/internal/model"
	"github.com/hostpool/sls/logging"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "lease"})

// SessionRequest describes a user's request for a shared runner session.
type SessionRequest struct {
	Username  string `json:"username"`
	ProjectID string `json:"project_id"`

	// StartCycles is the resource-accounting reading supplied by the
	// accounting collaborator at bind time. Informational only.
	StartCycles int64 `json:"start_cycles"`
}

// Session is the result of a successful allocation: the bound slot and the
// expiry parameters the client countdown is derived from. The runner id is
// nil until the provisioning collaborator attaches an instance.
type Session struct {
	SlotID          int64     `json:"slot_id"`
	RunnerID        *string   `json:"runner_id,omitempty"`
	StartTimestamp  time.Time `json:"start_timestamp"`
	DurationSeconds int64     `json:"duration"`
}

// Decision is the outcome of a read-only quota check.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Allocator assigns available slots to requesting users. All slot and
// usage-log mutations happen inside a single transaction with row locks on
// the chosen slot and the user's usage log, so a bind and its quota
// recording commit or roll back together.
type Allocator struct {
	clock quartz.Clock
}

// NewAllocator returns an allocator using the given clock. Production
// callers pass quartz.NewReal().
func NewAllocator(clock quartz.Clock) *Allocator {
	return &Allocator{clock: clock}
}

// checkQuota applies the two denial rules: the lifetime quota cap and the
// rolling-window cap. The lifetime cap is checked first because it denies
// regardless of window state.
func checkQuota(usageLog *model.UsageLog, now time.Time) *Decision {
	if usageLog.Quota.Exhausted() {
		return &Decision{Allowed: false, Reason: "lifetime quota exhausted"}
	}
	if usageLog.WindowExceeded(now) {
		return &Decision{Allowed: false, Reason: "rate limit window cap reached"}
	}
	return &Decision{Allowed: true}
}

// CheckQuota reports whether a request from the user would currently be
// approved, without mutating any state.
func (a *Allocator) CheckQuota(ctx context.Context, gormdb *gorm.DB, username string) (*Decision, error) {
	usageLog, err := db.GetUsageLog(ctx, gormdb, username)
	if err != nil {
		return nil, err
	}
	return checkQuota(usageLog, a.clock.Now()), nil
}

// RequestSession allocates a slot to the user: the quota is consulted
// first, then the pool is scanned for the first available slot in id
// order, the slot is bound, and the request is recorded against the usage
// log. A user who already holds an occupied slot is rejected with
// ErrAlreadyLeased rather than allocated a second one.
func (a *Allocator) RequestSession(ctx context.Context, gormdb *gorm.DB, request *SessionRequest) (*Session, error) {
	log := log.WithFields(logrus.Fields{
		"context": "requesting a session",
		"user":    request.Username,
		"project": request.ProjectID,
	})

	var session *Session
	err := gormdb.Transaction(func(tx *gorm.DB) error {
		// Locking the usage log serializes concurrent requests from the
		// same user, which also makes the window-reset read-then-write
		// safe.
		usageLog, err := db.GetUsageLogForUpdate(ctx, tx, request.Username)
		if err != nil {
			return err
		}

		now := a.clock.Now()

		if decision := checkQuota(usageLog, now); !decision.Allowed {
			log.Debugf("request denied: %s", decision.Reason)
			return ErrQuotaExceeded
		}

		existing, err := db.GetActiveSlotForUser(ctx, tx, request.Username)
		if err != nil {
			return err
		}
		if existing != nil {
			log.Debugf("user already holds slot %d", existing.ID)
			return ErrAlreadyLeased
		}

		slot, err := db.FindAvailableSlotForUpdate(ctx, tx)
		if err != nil {
			return err
		}
		if slot == nil {
			log.Debug("the slot pool is exhausted")
			return ErrNoSlotsAvailable
		}

		settings, err := db.GetSettings(ctx, tx)
		if err != nil {
			return err
		}

		err = db.BindSlot(ctx, tx, slot, request.Username, request.ProjectID, now, settings.LeaseDurationSeconds, request.StartCycles)
		if err != nil {
			return err
		}

		err = db.RecordUsage(ctx, tx, usageLog, now)
		if err != nil {
			return err
		}

		session = &Session{
			SlotID:          slot.ID,
			RunnerID:        slot.RunnerID,
			StartTimestamp:  now,
			DurationSeconds: slot.DurationSeconds,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debugf("bound slot %d", session.SlotID)

	return session, nil
}
