package db

import (
	"context"
	"time"

	"github.com/hostpool/sls/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Defaults applied to a usage log created on a user's first lease request.
const (
	DefaultMaxUsesThreshold       = int64(10)
	DefaultRateLimitWindowSeconds = int64(3600)
	DefaultQuotaTotal             = int64(200)
)

// newUsageLog returns a usage log with the freemium defaults applied.
func newUsageLog(username string) model.UsageLog {
	return model.UsageLog{
		Username:               username,
		IsActive:               true,
		MaxUsesThreshold:       DefaultMaxUsesThreshold,
		RateLimitWindowSeconds: DefaultRateLimitWindowSeconds,
		Quota:                  model.Quota{Total: DefaultQuotaTotal},
	}
}

// GetUsageLog looks up the usage log for a user, adding one with the
// freemium defaults if necessary.
func GetUsageLog(ctx context.Context, db *gorm.DB, username string) (*model.UsageLog, error) {
	wrapMsg := "unable to look up or add the usage log"

	log := newUsageLog(username)
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoNothing: true,
		}).
		Create(&log).Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	// The conflict path doesn't load the existing row, so fetch it.
	var existing model.UsageLog
	err = db.WithContext(ctx).Where("username = ?", username).First(&existing).Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	return &existing, nil
}

// GetUsageLogForUpdate looks up the usage log for a user, creating it if
// necessary and taking a row lock so that the read-then-write window reset
// can't race a concurrent request for the same user. Must be called inside
// a transaction.
func GetUsageLogForUpdate(ctx context.Context, db *gorm.DB, username string) (*model.UsageLog, error) {
	wrapMsg := "unable to lock the usage log"

	log := newUsageLog(username)
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoNothing: true,
		}).
		Create(&log).Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	var existing model.UsageLog
	err = db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("username = ?", username).
		First(&existing).Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	return &existing, nil
}

// RecordUsage records an approved lease request against the usage log. If
// the rate-limit window has elapsed since the last request, the usage count
// resets to zero before incrementing, so the end state after a reset is a
// count of one. Both the window counter and the lifetime quota are
// incremented. The caller is responsible for holding a row lock on the log.
func RecordUsage(ctx context.Context, db *gorm.DB, log *model.UsageLog, now time.Time) error {
	wrapMsg := "unable to record the usage"

	if log.WindowElapsed(now) {
		log.UsageCount = 0
	}
	log.UsageCount++
	log.Quota.Consumed++
	log.LastUsed = &now

	err := db.WithContext(ctx).
		Model(log).
		Updates(map[string]interface{}{
			"usage_count":    log.UsageCount,
			"last_used":      log.LastUsed,
			"quota_consumed": log.Quota.Consumed,
		}).Error
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	return nil
}

// ResetWindow force-resets a user's rolling usage count to zero without
// touching the lifetime quota. Returns false if the user has no usage log.
func ResetWindow(ctx context.Context, db *gorm.DB, username string) (bool, error) {
	wrapMsg := "unable to reset the usage window"

	result := db.WithContext(ctx).
		Model(&model.UsageLog{}).
		Where("username = ?", username).
		UpdateColumn("usage_count", 0)
	if result.Error != nil {
		return false, errors.Wrap(result.Error, wrapMsg)
	}
	return result.RowsAffected > 0, nil
}

// DeleteAllUsageLogs wipes every usage log, returning the number of logs
// deleted. This is irreversible and is used for full-system quota amnesty.
func DeleteAllUsageLogs(ctx context.Context, db *gorm.DB) (int64, error) {
	wrapMsg := "unable to delete the usage logs"

	result := db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.UsageLog{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, wrapMsg)
	}
	return result.RowsAffected, nil
}
