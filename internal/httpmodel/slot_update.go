package httpmodel

import (
	"fmt"

	"github.com/hostpool/sls/internal/model"
	"github.com/hostpool/sls/internal/model/timestamp"
)

// SlotUpdate carries the partial field overwrite for the admin slot-update
// escape hatch. Only the fields that are present in the request body are
// written; explicit nulls are not distinguishable from absent fields, so
// clearing a lease is done through the release and reset operations
// instead.
//
// swagger:model
type SlotUpdate struct {

	// The occupancy status, either "available" or "occupied"
	Status *model.SlotStatus `json:"status"`

	// The identifier of the compute instance bound to this slot
	RunnerID *string `json:"runner_id"`

	// The project currently borrowing the slot
	ProjectID *string `json:"project_id"`

	// The platform identity that owns the underlying runner
	Owner *string `json:"owner"`

	// The identity currently leasing the slot
	Username *string `json:"user"`

	// The date and time the current lease began
	StartTimestamp *timestamp.Timestamp `json:"start_timestamp"`

	// The lease length in seconds
	DurationSeconds *int64 `json:"duration"`

	// The resource-accounting baseline captured at lease start
	StartCycles *int64 `json:"start_cycles"`
}

// Validate verifies that the fields that are present are usable.
func (u SlotUpdate) Validate() error {
	if u.Status != nil && *u.Status != model.SlotAvailable && *u.Status != model.SlotOccupied {
		return fmt.Errorf("the slot status must be either %q or %q", model.SlotAvailable, model.SlotOccupied)
	}
	if u.DurationSeconds != nil && *u.DurationSeconds < 0 {
		return fmt.Errorf("the lease duration must not be negative")
	}
	if u.StartCycles != nil && *u.StartCycles < 0 {
		return fmt.Errorf("the start cycles reading must not be negative")
	}
	return nil
}

// Fields converts the update to the column map handed to the database
// layer. An empty map means the request contained nothing to change.
func (u SlotUpdate) Fields() map[string]interface{} {
	fields := make(map[string]interface{})

	if u.Status != nil {
		fields["status"] = *u.Status
	}
	if u.RunnerID != nil {
		fields["runner_id"] = *u.RunnerID
	}
	if u.ProjectID != nil {
		fields["project_id"] = *u.ProjectID
	}
	if u.Owner != nil {
		fields["owner"] = *u.Owner
	}
	if u.Username != nil {
		fields["username"] = *u.Username
	}
	if u.StartTimestamp != nil {
		fields["start_timestamp"] = u.StartTimestamp.Time()
	}
	if u.DurationSeconds != nil {
		fields["duration"] = *u.DurationSeconds
	}
	if u.StartCycles != nil {
		fields["start_cycles"] = *u.StartCycles
	}

	return fields
}
