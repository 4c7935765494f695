package controllers

import (
	"net/http"

	"github.com/hostpool/sls/internal/db"
	"github.com/hostpool/sls/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// GetAllSlots is the handler for the GET /v1/slots endpoint.
//
// swagger:route GET /v1/slots slots listSlots
//
// # List Slots
//
// Lists every slot in the pool with its current status.
//
// responses:
//
//	200: slotListing
//	500: internalServerErrorResponse
func (s Server) GetAllSlots(ctx echo.Context) error {
	log := log.WithFields(logrus.Fields{"context": "listing all slots"})

	slots, err := db.ListSlots(ctx.Request().Context(), s.GORMDB)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	log.Debug("listed the slots from the database")

	return model.Success(ctx, slots, http.StatusOK)
}

// GetAvailableSlots is the handler for the GET /v1/slots/available endpoint.
//
// swagger:route GET /v1/slots/available slots listAvailableSlots
//
// # List Available Slots
//
// Lists the slots that currently hold no lease.
//
// responses:
//
//	200: slotListing
//	500: internalServerErrorResponse
func (s Server) GetAvailableSlots(ctx echo.Context) error {
	log := log.WithFields(logrus.Fields{"context": "listing available slots"})

	slots, err := db.ListAvailableSlots(ctx.Request().Context(), s.GORMDB)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	log.Debug("listed the available slots from the database")

	return model.Success(ctx, slots, http.StatusOK)
}

// GetSlotOccupancy is the handler for the GET /v1/slots/used endpoint.
//
// swagger:route GET /v1/slots/used slots listSlotOccupancy
//
// # List Slot Occupancy
//
// Lists (slot id, in use) pairs for the occupancy dashboard.
//
// responses:
//
//	200: slotOccupancyListing
//	500: internalServerErrorResponse
func (s Server) GetSlotOccupancy(ctx echo.Context) error {
	log := log.WithFields(logrus.Fields{"context": "listing slot occupancy"})

	occupancy, err := db.ListSlotOccupancy(ctx.Request().Context(), s.GORMDB)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	log.Debug("listed slot occupancy from the database")

	return model.Success(ctx, occupancy, http.StatusOK)
}
