package model

import "time"

// SlotStatus is the closed set of occupancy states for a slot. A slot is
// either available or occupied; there is no third state.
type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotOccupied  SlotStatus = "occupied"
)

// Slot represents a single leaseable runner slot in the shared pool.
//
// Invariant: a slot is occupied iff Username and StartTimestamp are both
// set. Available slots carry no lease data.
//
// swagger:model
type Slot struct {
	// The slot identifier
	//
	// readOnly: true
	ID int64 `gorm:"primaryKey" json:"id"`

	// The occupancy status, either "available" or "occupied"
	Status SlotStatus `gorm:"type:text;not null;default:'available'" json:"status"`

	// The identifier of the compute instance bound to this slot, absent
	// until the deployment service attaches one
	RunnerID *string `json:"runner_id,omitempty"`

	// The project currently borrowing the slot
	ProjectID *string `json:"project_id,omitempty"`

	// The platform identity that owns the underlying runner
	Owner string `gorm:"not null" json:"owner"`

	// The identity currently leasing the slot, present only while occupied
	Username *string `gorm:"index" json:"user,omitempty"`

	// The date and time the slot record was created
	CreateTimestamp time.Time `gorm:"column:create_timestamp;autoCreateTime" json:"create_timestamp"`

	// The date and time the current lease began, meaningful only while
	// occupied
	StartTimestamp *time.Time `json:"start_timestamp,omitempty"`

	// The lease length in seconds
	DurationSeconds int64 `gorm:"column:duration;not null;default:0" json:"duration"`

	// The resource accounting baseline captured at lease start
	StartCycles int64 `gorm:"not null;default:0" json:"start_cycles"`
}

// TableName specifies the table name to use in the database.
func (s *Slot) TableName() string {
	return "slots"
}

// Occupied returns true if the slot currently holds a lease.
func (s *Slot) Occupied() bool {
	return s.Status == SlotOccupied
}

// LeaseDuration returns the stamped lease length as a duration. Durations
// are stored and transmitted as integer seconds; this accessor is the only
// place the conversion happens.
func (s *Slot) LeaseDuration() time.Duration {
	return time.Duration(s.DurationSeconds) * time.Second
}

// ExpiresAt returns the instant the current lease expires. The second
// return value is false if the slot holds no lease.
func (s *Slot) ExpiresAt() (time.Time, bool) {
	if !s.Occupied() || s.StartTimestamp == nil {
		return time.Time{}, false
	}
	return s.StartTimestamp.Add(s.LeaseDuration()), true
}

// Expired returns true if the slot holds a lease whose window has elapsed
// at the given instant.
func (s *Slot) Expired(now time.Time) bool {
	expiresAt, ok := s.ExpiresAt()
	if !ok {
		return false
	}
	return !now.Before(expiresAt)
}

// SlotOccupancy is the (slot id, in use) pair returned by the occupancy
// dashboard listing.
//
// swagger:model
type SlotOccupancy struct {
	SlotID int64 `json:"slot_id"`
	InUse  bool  `json:"in_use"`
}
