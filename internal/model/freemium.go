package model

import "time"

// FreemiumUsageData is the denormalized read projection returned to the
// dashboard: the caller's current slot, if any, plus enough usage log
// fields to render a countdown and quota state. It is rebuilt from scratch
// on every fetch and is never a source of truth.
//
// swagger:model
type FreemiumUsageData struct {
	// The slot currently leased by the user, if any
	Slot *Slot `json:"slot,omitempty"`

	// The number of lease requests consumed in the current window
	UsageCount int64 `json:"usage_count"`

	// The rolling window cap
	MaxUsesThreshold int64 `json:"max_uses_threshold"`

	// The rolling window length in seconds
	RateLimitWindowSeconds int64 `json:"rate_limit_window"`

	// The date and time of the most recent lease request
	LastUsed *time.Time `json:"last_used,omitempty"`

	// The lifetime allowance
	Quota Quota `json:"quota"`
}

// FreemiumUsageDataFromLog builds the projection from a usage log and the
// user's current slot, which may be nil.
func FreemiumUsageDataFromLog(log *UsageLog, slot *Slot) *FreemiumUsageData {
	return &FreemiumUsageData{
		Slot:                   slot,
		UsageCount:             log.UsageCount,
		MaxUsesThreshold:       log.MaxUsesThreshold,
		RateLimitWindowSeconds: log.RateLimitWindowSeconds,
		LastUsed:               log.LastUsed,
		Quota:                  log.Quota,
	}
}
