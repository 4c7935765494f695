package controllers

import (
	"database/sql"
	"net/http"

	"github.com/hostpool/sls/internal/lease"
	"github.com/hostpool/sls/internal/model"
	"github.com/hostpool/sls/logging"
	"github.com/labstack/echo/v4"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "controllers"})

// Server carries the shared dependencies for all the API handlers.
type Server struct {
	Router         *echo.Echo
	DB             *sql.DB
	GORMDB         *gorm.DB
	NATSConn       *nats.EncodedConn
	Allocator      *lease.Allocator
	Reclaimer      *lease.Reclaimer
	Service        string
	Title          string
	Version        string
	UsernameSuffix string
}

// RootHandler handles GET requests sent to the root of the service API.
// The base URL acts as a health check endpoint.
func (s Server) RootHandler(ctx echo.Context) error {
	resp := model.RootResponse{
		Service: s.Service,
		Title:   s.Title,
		Version: s.Version,
	}
	return model.Success(ctx, resp, http.StatusOK)
}

// V1RootHandler describes version 1 of the service API.
func (s Server) V1RootHandler(ctx echo.Context) error {
	resp := model.RootResponse{
		Service:    s.Service,
		Title:      s.Title,
		Version:    s.Version,
		APIVersion: "1.0.0",
	}
	return model.Success(ctx, resp, http.StatusOK)
}
