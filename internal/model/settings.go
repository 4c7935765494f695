package model

import "time"

// SettingsID is the identifier of the single settings row.
const SettingsID int64 = 1

// Settings holds the platform-wide leasing settings. The table contains
// exactly one row; admin updates overwrite it in place.
type Settings struct {
	ID int64 `gorm:"primaryKey" json:"-"`

	// The lease length in seconds applied to future allocations
	LeaseDurationSeconds int64 `gorm:"column:lease_duration;not null" json:"lease_duration"`
}

// TableName specifies the table name to use in the database.
func (s *Settings) TableName() string {
	return "settings"
}

// LeaseDuration returns the platform-wide lease length as a duration.
func (s *Settings) LeaseDuration() time.Duration {
	return time.Duration(s.LeaseDurationSeconds) * time.Second
}
