package model

import "time"

// Quota is the longer-lived allowance tracked independently of the rolling
// rate-limit window.
//
// swagger:model
type Quota struct {
	// The number of lease requests consumed over the lifetime of the log
	Consumed int64 `gorm:"column:quota_consumed;not null;default:0" json:"consumed"`

	// The lifetime allowance
	Total int64 `gorm:"column:quota_total;not null;default:0" json:"total"`
}

// Exhausted returns true if the lifetime allowance has been used up.
func (q Quota) Exhausted() bool {
	return q.Consumed >= q.Total
}

// UsageLog tracks the rolling usage counter and lifetime quota for a single
// user. One record exists per user, created on the user's first lease
// request.
//
// swagger:model
type UsageLog struct {
	// The usage log identifier
	//
	// readOnly: true
	ID *string `gorm:"type:uuid;default:uuid_generate_v1()" json:"id,omitempty"`

	// The username the log belongs to
	Username string `gorm:"not null;uniqueIndex" json:"username"`

	// Whether the quota window is currently counting
	IsActive bool `gorm:"not null;default:true" json:"is_active"`

	// The number of lease requests consumed in the current window
	UsageCount int64 `gorm:"not null;default:0" json:"usage_count"`

	// The date and time of the most recent lease request
	LastUsed *time.Time `json:"last_used,omitempty"`

	// The length of the rolling window in seconds; the usage count resets
	// once this much time has passed since the last request
	RateLimitWindowSeconds int64 `gorm:"column:rate_limit_window;not null;default:0" json:"rate_limit_window"`

	// The cap compared against the usage count when approving a request
	MaxUsesThreshold int64 `gorm:"not null;default:0" json:"max_uses_threshold"`

	// The lifetime allowance, independent of the rolling window
	Quota Quota `gorm:"embedded" json:"quota"`
}

// TableName specifies the table name to use in the database.
func (u *UsageLog) TableName() string {
	return "usage_logs"
}

// RateLimitWindow returns the rolling window as a duration. Windows are
// stored and transmitted as integer seconds; this accessor is the only
// place the conversion happens.
func (u *UsageLog) RateLimitWindow() time.Duration {
	return time.Duration(u.RateLimitWindowSeconds) * time.Second
}

// WindowElapsed returns true if enough time has passed since the last
// request for the usage count to reset.
func (u *UsageLog) WindowElapsed(now time.Time) bool {
	if u.LastUsed == nil {
		return false
	}
	return now.Sub(*u.LastUsed) > u.RateLimitWindow()
}

// WindowExceeded returns true if the rolling window cap has been hit and
// the window has not yet elapsed.
func (u *UsageLog) WindowExceeded(now time.Time) bool {
	return u.UsageCount >= u.MaxUsesThreshold && !u.WindowElapsed(now)
}
