package httpmodel

import "fmt"

// GlobalDuration represents the platform-wide lease duration in seconds.
//
// swagger:model
type GlobalDuration struct {
	// The lease length in seconds applied to future allocations.
	//
	// required: true
	DurationSeconds int64 `json:"duration"`
}

// Validate verifies that the duration is usable.
func (d GlobalDuration) Validate() error {
	if d.DurationSeconds <= 0 {
		return fmt.Errorf("the lease duration must be greater than zero")
	}
	return nil
}
