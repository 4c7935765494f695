package controllers

import (
	"net/http"

	"github.com/hostpool/sls/internal/httpmodel"
	"github.com/hostpool/sls/internal/model"
	"github.com/hostpool/sls/utils"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// RequestSession is the handler for the POST /v1/sessions endpoint.
//
// swagger:route POST /v1/sessions sessions requestSession
//
// # Request Session
//
// Leases an available runner slot to the requesting user for the
// platform-wide lease duration.
//
// responses:
//
//	200: sessionResponse
//	400: badRequestResponse
//	409: conflictResponse
//	429: quotaExceededResponse
//	500: internalServerErrorResponse
func (s Server) RequestSession(ctx echo.Context) error {
	log := log.WithFields(logrus.Fields{"context": "requesting a session"})

	context := ctx.Request().Context()

	// Parse and validate the request body.
	var body httpmodel.NewSession
	if err := ctx.Bind(&body); err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}
	if err := body.Validate(); err != nil {
		return model.Error(ctx, err.Error(), http.StatusBadRequest)
	}

	request := body.ToLeaseRequest()
	request.Username = utils.RemoveUsernameSuffix(request.Username)

	log = log.WithFields(logrus.Fields{"user": request.Username, "project": request.ProjectID})

	session, err := s.Allocator.RequestSession(context, s.GORMDB, request)
	if err != nil {
		log.Debugf("session request failed: %s", err.Error())
		return model.Error(ctx, err.Error(), httpStatusCode(err))
	}

	log.Debugf("allocated slot %d", session.SlotID)

	return model.Success(ctx, session, http.StatusOK)
}
