package httpmodel

import (
	"fmt"

	"github.com/hostpool/sls/internal/lease"
)

// NewSession
//
// swagger:model
type NewSession struct {

	// The username requesting the session
	//
	// required: true
	Username string `json:"username"`

	// The project the session is for
	//
	// required: true
	ProjectID string `json:"project_id"`

	// The resource-accounting reading captured at bind time
	StartCycles int64 `json:"start_cycles"`
}

// Validate verifies that all the required fields in a session request are present.
func (r NewSession) Validate() error {
	if r.Username == "" {
		return fmt.Errorf("a username is required")
	}
	if r.ProjectID == "" {
		return fmt.Errorf("a project ID is required")
	}
	if r.StartCycles < 0 {
		return fmt.Errorf("the start cycles reading must not be negative")
	}
	return nil
}

// ToLeaseRequest converts the request body to the allocator's request type.
func (r NewSession) ToLeaseRequest() *lease.SessionRequest {
	return &lease.SessionRequest{
		Username:    r.Username,
		ProjectID:   r.ProjectID,
		StartCycles: r.StartCycles,
	}
}
