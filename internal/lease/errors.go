package lease

import "github.com/pkg/errors"

// Allocation and reclamation failures returned to the caller. The UI layer
// decides retry and backoff policy; quota and pool exhaustion are expected,
// recoverable states for the free tier and must remain distinguishable
// from hard failures.
var (
	// ErrQuotaExceeded is returned when the rolling-window cap or the
	// lifetime quota cap has been hit. The user may retry later.
	ErrQuotaExceeded = errors.New("usage quota exceeded")

	// ErrNoSlotsAvailable is returned when every slot in the pool is
	// occupied. Transient.
	ErrNoSlotsAvailable = errors.New("no slots available")

	// ErrAlreadyLeased is returned when the user already holds an active
	// session. The caller should redirect to the existing session rather
	// than retry.
	ErrAlreadyLeased = errors.New("user already holds an active session")

	// ErrSlotNotFound is returned when a slot identifier is unknown.
	ErrSlotNotFound = errors.New("slot not found")

	// ErrSlotNotAvailable is returned when a bind targets a slot that is
	// already occupied, usually after losing a race.
	ErrSlotNotAvailable = errors.New("slot not available")
)
