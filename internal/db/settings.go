package db

import (
	"context"

	"github.com/hostpool/sls/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnsureSettings creates the single settings row if it doesn't exist yet,
// seeding the platform-wide lease duration with the given value. The
// existing row wins if one is already present.
func EnsureSettings(ctx context.Context, db *gorm.DB, leaseDurationSeconds int64) (*model.Settings, error) {
	wrapMsg := "unable to initialize the settings"

	settings := model.Settings{ID: model.SettingsID, LeaseDurationSeconds: leaseDurationSeconds}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(&settings).Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	err = db.WithContext(ctx).First(&settings, model.SettingsID).Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	return &settings, nil
}

// GetSettings returns the platform-wide leasing settings.
func GetSettings(ctx context.Context, db *gorm.DB) (*model.Settings, error) {
	wrapMsg := "unable to look up the settings"

	var settings model.Settings
	err := db.WithContext(ctx).First(&settings, model.SettingsID).Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	return &settings, nil
}

// SetLeaseDuration changes the lease duration applied to future
// allocations and returns the previous value. Already occupied slots keep
// the duration they were stamped with.
func SetLeaseDuration(ctx context.Context, db *gorm.DB, seconds int64) (int64, error) {
	wrapMsg := "unable to update the lease duration"

	var previous int64
	err := db.Transaction(func(tx *gorm.DB) error {
		var settings model.Settings
		err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&settings, model.SettingsID).Error
		if err != nil {
			return err
		}
		previous = settings.LeaseDurationSeconds

		return tx.WithContext(ctx).
			Model(&settings).
			UpdateColumn("lease_duration", seconds).Error
	})
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}
	return previous, nil
}
