package db

import (
	"context"
	"time"

	"github.com/hostpool/sls/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListSlots returns every slot in the pool in id order.
func ListSlots(ctx context.Context, db *gorm.DB) ([]model.Slot, error) {
	wrapMsg := "unable to list the slots"

	var slots []model.Slot
	err := db.WithContext(ctx).Order("id asc").Find(&slots).Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	return slots, nil
}

// ListAvailableSlots returns the slots that currently hold no lease, in id
// order.
func ListAvailableSlots(ctx context.Context, db *gorm.DB) ([]model.Slot, error) {
	wrapMsg := "unable to list the available slots"

	var slots []model.Slot
	err := db.WithContext(ctx).
		Where("status = ?", model.SlotAvailable).
		Order("id asc").
		Find(&slots).Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	return slots, nil
}

// ListSlotOccupancy returns (slot id, in use) pairs for the occupancy
// dashboard.
func ListSlotOccupancy(ctx context.Context, db *gorm.DB) ([]model.SlotOccupancy, error) {
	wrapMsg := "unable to list slot occupancy"

	slots, err := ListSlots(ctx, db)
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}

	result := make([]model.SlotOccupancy, len(slots))
	for i, slot := range slots {
		result[i] = model.SlotOccupancy{SlotID: slot.ID, InUse: slot.Occupied()}
	}
	return result, nil
}

// GetSlot looks up a slot by its identifier. A nil slot is returned if the
// identifier is unknown.
func GetSlot(ctx context.Context, db *gorm.DB, slotID int64) (*model.Slot, error) {
	wrapMsg := "unable to look up the slot"

	var slot model.Slot
	err := db.WithContext(ctx).First(&slot, slotID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	return &slot, nil
}

// GetSlotForUpdate looks up a slot by its identifier, taking a row lock so
// that concurrent mutations of the same slot are serialized. A nil slot is
// returned if the identifier is unknown. Must be called inside a
// transaction.
func GetSlotForUpdate(ctx context.Context, db *gorm.DB, slotID int64) (*model.Slot, error) {
	wrapMsg := "unable to look up the slot"

	var slot model.Slot
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&slot, slotID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	return &slot, nil
}

// FindAvailableSlotForUpdate returns the first available slot in id order,
// taking a row lock on it. A nil slot is returned if the pool is exhausted.
// Must be called inside a transaction.
func FindAvailableSlotForUpdate(ctx context.Context, db *gorm.DB) (*model.Slot, error) {
	wrapMsg := "unable to find an available slot"

	var slot model.Slot
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("status = ?", model.SlotAvailable).
		Order("id asc").
		First(&slot).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	return &slot, nil
}

// GetActiveSlotForUser returns the slot currently leased by the given user,
// or nil if the user holds no lease.
func GetActiveSlotForUser(ctx context.Context, db *gorm.DB, username string) (*model.Slot, error) {
	wrapMsg := "unable to look up the user's active slot"

	var slot model.Slot
	err := db.WithContext(ctx).
		Where("status = ?", model.SlotOccupied).
		Where("username = ?", username).
		First(&slot).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	return &slot, nil
}

// BindSlot stamps a lease onto the given slot. The caller is responsible
// for holding a row lock on the slot and for having verified that it is
// available.
func BindSlot(
	ctx context.Context,
	db *gorm.DB,
	slot *model.Slot,
	username, projectID string,
	startTimestamp time.Time,
	durationSeconds int64,
	startCycles int64,
) error {
	wrapMsg := "unable to bind the slot"

	slot.Status = model.SlotOccupied
	slot.Username = &username
	slot.ProjectID = &projectID
	slot.StartTimestamp = &startTimestamp
	slot.DurationSeconds = durationSeconds
	slot.StartCycles = startCycles

	err := db.WithContext(ctx).
		Model(slot).
		Select("Status", "Username", "ProjectID", "StartTimestamp", "DurationSeconds", "StartCycles").
		Updates(slot).Error
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	return nil
}

// ReleaseSlot clears the lease fields of a slot, returning it to the
// available pool. Releasing a slot that holds no lease is a no-op, so the
// operation is idempotent.
func ReleaseSlot(ctx context.Context, db *gorm.DB, slotID int64) error {
	wrapMsg := "unable to release the slot"

	err := db.WithContext(ctx).
		Model(&model.Slot{}).
		Where("id = ?", slotID).
		Updates(map[string]interface{}{
			"status":          model.SlotAvailable,
			"username":        nil,
			"project_id":      nil,
			"start_timestamp": nil,
			"start_cycles":    0,
		}).Error
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	return nil
}

// UpdateSlot overwrites arbitrary fields of a slot. This is the admin
// escape hatch for manual correction and is not part of the normal lease
// flow. The updated slot is returned; a nil slot is returned if the
// identifier is unknown.
func UpdateSlot(ctx context.Context, db *gorm.DB, slotID int64, fields map[string]interface{}) (*model.Slot, error) {
	wrapMsg := "unable to update the slot"

	var updated *model.Slot
	err := db.Transaction(func(tx *gorm.DB) error {
		slot, err := GetSlotForUpdate(ctx, tx, slotID)
		if err != nil {
			return err
		}
		if slot == nil {
			return nil
		}

		err = tx.WithContext(ctx).Model(slot).Updates(fields).Error
		if err != nil {
			return err
		}

		updated = slot
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	return updated, nil
}

// ListExpiredSlots returns the occupied slots whose lease windows have
// elapsed at the given instant, in id order.
func ListExpiredSlots(ctx context.Context, db *gorm.DB, now time.Time) ([]model.Slot, error) {
	wrapMsg := "unable to list the expired slots"

	var slots []model.Slot
	err := db.WithContext(ctx).
		Where("status = ?", model.SlotOccupied).
		Where("start_timestamp + make_interval(secs => duration) <= ?", now).
		Order("id asc").
		Find(&slots).Error
	if err != nil {
		return nil, errors.Wrap(err, wrapMsg)
	}
	return slots, nil
}

// ResetAllSlots unconditionally releases every slot in the pool regardless
// of remaining lease time, returning the number of leases that were
// cleared. Used for emergency pool recovery.
func ResetAllSlots(ctx context.Context, db *gorm.DB) (int64, error) {
	wrapMsg := "unable to reset the slot pool"

	result := db.WithContext(ctx).
		Model(&model.Slot{}).
		Where("status = ?", model.SlotOccupied).
		Updates(map[string]interface{}{
			"status":          model.SlotAvailable,
			"username":        nil,
			"project_id":      nil,
			"start_timestamp": nil,
			"start_cycles":    0,
		})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, wrapMsg)
	}
	return result.RowsAffected, nil
}

// ProvisionSlots grows the pool to the target size, creating available
// slots owned by the platform identity. Slots are never destroyed, so a
// target smaller than the current pool size is a no-op. The number of
// slots created is returned.
func ProvisionSlots(ctx context.Context, db *gorm.DB, targetSize int64, owner string) (int64, error) {
	wrapMsg := "unable to provision the slot pool"

	var current int64
	err := db.WithContext(ctx).Model(&model.Slot{}).Count(&current).Error
	if err != nil {
		return 0, errors.Wrap(err, wrapMsg)
	}

	created := int64(0)
	for i := current; i < targetSize; i++ {
		slot := model.Slot{Status: model.SlotAvailable, Owner: owner}
		err = db.WithContext(ctx).Create(&slot).Error
		if err != nil {
			return created, errors.Wrap(err, wrapMsg)
		}
		created++
	}
	return created, nil
}
