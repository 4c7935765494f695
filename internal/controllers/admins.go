package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/hostpool/sls/internal/db"
	"github.com/hostpool/sls/internal/httpmodel"
	"github.com/hostpool/sls/internal/lease"
	"github.com/hostpool/sls/internal/model"
	"github.com/hostpool/sls/internal/query"
	"github.com/hostpool/sls/utils"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// extractSlotID extracts and validates the slot ID path parameter.
func extractSlotID(ctx echo.Context) (int64, error) {
	value, err := query.ValidatedPathParam(ctx, "slot_id", "required,number")
	if err != nil {
		return 0, fmt.Errorf("the slot ID must be an integer")
	}
	slotID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("the slot ID must be an integer")
	}
	return slotID, nil
}

// SetGlobalDuration is the handler for the PUT /v1/admin/settings/duration
// endpoint.
//
// swagger:route PUT /v1/admin/settings/duration admin setGlobalDuration
//
// # Set Global Lease Duration
//
// Changes the lease duration applied to future allocations. Slots that are
// already occupied keep the duration they were stamped with.
//
// responses:
//
//	200: durationResponse
//	400: badRequestResponse
//	500: internalServerErrorResponse
func (s Server) SetGlobalDuration(ctx echo.Context) error {
	log := log.WithFields(logrus.Fields{"context": "setting the global lease duration"})

	context := ctx.Request().Context()

	var body httpmodel.GlobalDuration
	if err := ctx.Bind(&body); err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}
	if err := body.Validate(); err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	previous, err := lease.SetGlobalDuration(context, s.GORMDB, body.DurationSeconds)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	log.Infof("changed the global lease duration from %d to %d seconds", previous, body.DurationSeconds)

	resp := map[string]int64{
		"previous_duration": previous,
		"new_duration":      body.DurationSeconds,
	}
	return model.Success(ctx, resp, http.StatusOK)
}

// ResetSlots is the handler for the POST /v1/admin/slots/reset endpoint.
//
// swagger:route POST /v1/admin/slots/reset admin resetSlots
//
// # Reset All Slots
//
// Unconditionally releases every slot regardless of remaining lease time.
// Irreversible; used for emergency pool recovery.
//
// responses:
//
//	200: countResponse
//	500: internalServerErrorResponse
func (s Server) ResetSlots(ctx echo.Context) error {
	log := log.WithFields(logrus.Fields{"context": "resetting all slots"})

	count, err := s.Reclaimer.ResetAll(ctx.Request().Context(), s.GORMDB)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	log.Infof("reset %d leased slots", count)

	return model.Success(ctx, map[string]int64{"reset": count}, http.StatusOK)
}

// PurgeExpiredSessions is the handler for the POST /v1/admin/sessions/purge
// endpoint.
//
// swagger:route POST /v1/admin/sessions/purge admin purgeExpiredSessions
//
// # Purge Expired Sessions
//
// Releases every occupied slot whose lease window has elapsed and reports
// the number reclaimed. A slot that fails to release doesn't abort the
// pass; the successes still commit.
//
// responses:
//
//	200: countResponse
//	500: internalServerErrorResponse
func (s Server) PurgeExpiredSessions(ctx echo.Context) error {
	log := log.WithFields(logrus.Fields{"context": "purging expired sessions"})

	reclaimed, err := s.Reclaimer.PurgeExpired(ctx.Request().Context(), s.GORMDB)
	if err != nil {
		// Partial failures still report the successes.
		log.Errorf("incomplete purge: %s", err.Error())
		resp := map[string]interface{}{"reclaimed": reclaimed, "error": err.Error()}
		return model.Success(ctx, resp, http.StatusOK)
	}

	log.Infof("reclaimed %d expired slots", reclaimed)

	return model.Success(ctx, map[string]int64{"reclaimed": reclaimed}, http.StatusOK)
}

// DeleteUsageLogs is the handler for the DELETE /v1/admin/usage-logs
// endpoint.
//
// swagger:route DELETE /v1/admin/usage-logs admin deleteUsageLogs
//
// # Delete Usage Logs
//
// Wipes every usage log. Irreversible; used for full-system quota amnesty.
//
// responses:
//
//	200: countResponse
//	500: internalServerErrorResponse
func (s Server) DeleteUsageLogs(ctx echo.Context) error {
	log := log.WithFields(logrus.Fields{"context": "deleting all usage logs"})

	count, err := db.DeleteAllUsageLogs(ctx.Request().Context(), s.GORMDB)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	log.Infof("deleted %d usage logs", count)

	return model.Success(ctx, map[string]int64{"deleted": count}, http.StatusOK)
}

// ResetUsageWindow is the handler for the POST
// /v1/admin/usage-logs/:username/reset endpoint.
//
// swagger:route POST /v1/admin/usage-logs/{username}/reset admin resetUsageWindow
//
// # Reset Usage Window
//
// Force-resets the user's rolling usage count to zero without touching the
// lifetime quota.
//
// responses:
//
//	200: okResponse
//	404: notFoundResponse
//	500: internalServerErrorResponse
func (s Server) ResetUsageWindow(ctx echo.Context) error {
	log := log.WithFields(logrus.Fields{"context": "resetting a usage window"})

	username := utils.RemoveUsernameSuffix(ctx.Param("username"))
	if username == "" {
		return model.Error(ctx, "invalid username", http.StatusBadRequest)
	}

	found, err := db.ResetWindow(ctx.Request().Context(), s.GORMDB, username)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}
	if !found {
		msg := fmt.Sprintf("no usage log exists for %s", username)
		return model.Error(ctx, msg, http.StatusNotFound)
	}

	log.Infof("reset the usage window for %s", username)

	return model.Success(ctx, nil, http.StatusOK)
}

// UpdateSlot is the handler for the PATCH /v1/admin/slots/:slot_id
// endpoint.
//
// swagger:route PATCH /v1/admin/slots/{slot_id} admin updateSlot
//
// # Update Slot
//
// Overwrites arbitrary fields of a slot. This is the admin escape hatch
// for manual correction and is not part of the normal lease flow.
//
// responses:
//
//	200: slotResponse
//	400: badRequestResponse
//	404: notFoundResponse
//	500: internalServerErrorResponse
func (s Server) UpdateSlot(ctx echo.Context) error {
	log := log.WithFields(logrus.Fields{"context": "updating a slot"})

	context := ctx.Request().Context()

	slotID, err := extractSlotID(ctx)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	var body httpmodel.SlotUpdate
	if err := ctx.Bind(&body); err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}
	if err := body.Validate(); err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	fields := body.Fields()
	if len(fields) == 0 {
		return model.Error(ctx, "no fields to update", http.StatusBadRequest)
	}

	slot, err := db.UpdateSlot(context, s.GORMDB, slotID, fields)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}
	if slot == nil {
		msg := fmt.Sprintf("slot %d does not exist", slotID)
		return model.Error(ctx, msg, http.StatusNotFound)
	}

	log.Infof("updated slot %d", slotID)

	return model.Success(ctx, slot, http.StatusOK)
}
