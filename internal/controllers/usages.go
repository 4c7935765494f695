package controllers

import (
	"net/http"

	"github.com/hostpool/sls/internal/db"
	"github.com/hostpool/sls/internal/model"
	"github.com/hostpool/sls/utils"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// GetUsage is the handler for the GET /v1/usages/:username endpoint.
//
// swagger:route GET /v1/usages/{username} usages getUsage
//
// # Get Usage
//
// Returns the denormalized freemium usage projection for the user: the
// slot currently leased, if any, plus the rolling usage counter and quota
// state. The projection is rebuilt from scratch on every fetch.
//
// responses:
//
//	200: usageResponse
//	400: badRequestResponse
//	500: internalServerErrorResponse
func (s Server) GetUsage(ctx echo.Context) error {
	log := log.WithFields(logrus.Fields{"context": "getting usage"})

	context := ctx.Request().Context()

	username := utils.RemoveUsernameSuffix(ctx.Param("username"))
	if username == "" {
		return model.Error(ctx, "invalid username", http.StatusBadRequest)
	}

	log = log.WithFields(logrus.Fields{"user": username})

	usageLog, err := db.GetUsageLog(context, s.GORMDB, username)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	slot, err := db.GetActiveSlotForUser(context, s.GORMDB, username)
	if err != nil {
		return model.Error(ctx, err.Error(), http.StatusInternalServerError)
	}

	log.Debug("built the freemium usage projection")

	return model.Success(ctx, model.FreemiumUsageDataFromLog(usageLog, slot), http.StatusOK)
}
