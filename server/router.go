package server

import (
	"github.com/hostpool/sls/internal/controllers"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	echolog "github.com/spirosoik/echo-logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

func InitRouter() *echo.Echo {
	log := log.WithFields(logrus.Fields{"context": "router"})

	// Create the web server.
	e := echo.New()

	// Set a custom logger.
	echoLogger := echolog.NewLoggerMiddleware(log)
	e.Logger = echoLogger

	// Add middleware.
	e.Use(otelecho.Middleware("SLS"))
	e.Use(echoLogger.Hook())
	e.Use(middleware.Recover())

	return e
}

func registerSlotEndpoints(slots *echo.Group, s *controllers.Server) {
	// Lists every slot in the pool with its current status.
	slots.GET("", s.GetAllSlots)

	// Lists the slots that currently hold no lease.
	slots.GET("/available", s.GetAvailableSlots)

	// Lists (slot id, in use) pairs for the occupancy dashboard.
	slots.GET("/used", s.GetSlotOccupancy)
}

func registerAdminEndpoints(admin *echo.Group, s *controllers.Server) {
	// Changes the lease duration applied to future allocations.
	admin.PUT("/settings/duration", s.SetGlobalDuration)

	// Unconditionally releases every slot. Irreversible.
	admin.POST("/slots/reset", s.ResetSlots)

	// Overwrites arbitrary fields of a slot. Escape hatch only.
	admin.PATCH("/slots/:slot_id", s.UpdateSlot)

	// Releases every occupied slot whose lease window has elapsed.
	admin.POST("/sessions/purge", s.PurgeExpiredSessions)

	// Wipes every usage log. Irreversible.
	admin.DELETE("/usage-logs", s.DeleteUsageLogs)

	// Force-resets a user's rolling usage count.
	admin.POST("/usage-logs/:username/reset", s.ResetUsageWindow)
}

func RegisterHandlers(s controllers.Server) {

	// The base URL acts as a health check endpoint.
	s.Router.GET("/", s.RootHandler)

	// API version 1 endpoints.
	v1 := s.Router.Group("/v1")
	v1.GET("", s.V1RootHandler)

	// Leases an available slot to the requesting user.
	sessions := v1.Group("/sessions")
	sessions.POST("", s.RequestSession)

	usages := v1.Group("/usages")
	usages.GET("/:username", s.GetUsage)

	slots := v1.Group("/slots")
	registerSlotEndpoints(slots, &s)

	admin := v1.Group("/admin")
	registerAdminEndpoints(admin, &s)
}
