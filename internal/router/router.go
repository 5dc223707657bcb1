// Package router defines how HTTP routes are registered for the API.
package router

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hall-occupancy/internal/handler"
    "github.com/iliyamo/hall-occupancy/internal/middleware"
    "github.com/iliyamo/hall-occupancy/internal/model"
)

// RegisterRoutes registers routes that need no authentication or
// dependencies. Currently only the health check.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the staff authentication endpoints under
// /v1/auth. Register is open like login; the first staff account is
// created this way on a fresh deployment.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    g.POST("/refresh", a.Refresh)
    g.POST("/logout", a.Logout)
}

// RegisterKiosk registers the barcode check-in/check-out endpoints.
// Kiosks are anonymous clients, so the token-bucket limiter is the
// only gate; a stuck scanner gets throttled, not authenticated away.
func RegisterKiosk(e *echo.Echo, s *handler.SessionHandler, limit echo.MiddlewareFunc) {
    g := e.Group("/v1", limit)
    g.POST("/checkin", s.CheckIn)
    g.POST("/checkout", s.CheckOut)
}

// RegisterVision registers the detection client's ingest endpoints.
// Frame and per-seat verdicts arrive from inside the hall network;
// calibration rewrites the registry and therefore requires staff.
func RegisterVision(e *echo.Echo, v *handler.VisionHandler, jwtSecret string) {
    g := e.Group("/v1/vision")
    g.POST("/frame", v.Frame)
    g.POST("/detection", v.Detection)

    staff := e.Group("/v1/vision")
    staff.Use(middleware.JWTAuth(jwtSecret))
    staff.Use(middleware.RequireRole(model.RoleStaff))
    staff.POST("/calibrate", v.Calibrate)
    staff.GET("/detections/:label", v.RecentDetections)
}

// RegisterRead registers the polled read endpoints. The seat map and
// the feed go through the Redis response cache; displays poll them
// continuously. Session and analytics reads are open too, they serve
// the lobby dashboards which carry no credentials.
func RegisterRead(e *echo.Echo, o *handler.OccupancyHandler, cache echo.MiddlewareFunc) {
    g := e.Group("/v1", cache)
    g.GET("/seats", o.Seats)
    g.GET("/occupancy", o.Feed)

    e.GET("/v1/sessions/active", o.ActiveSessions)
    e.GET("/v1/analytics/overview", o.Overview)
    e.GET("/v1/analytics/usage", o.Usage)
}

// RegisterHalls registers hall browsing (open) and hall management
// (staff only).
func RegisterHalls(e *echo.Echo, h *handler.HallHandler, jwtSecret string) {
    e.GET("/v1/halls", h.List)
    e.GET("/v1/halls/:id", h.Get)
    e.GET("/v1/halls/:id/seats", h.HallSeats)

    staff := e.Group("/v1/halls")
    staff.Use(middleware.JWTAuth(jwtSecret))
    staff.Use(middleware.RequireRole(model.RoleStaff))
    staff.POST("", h.Create)
    staff.PUT("/:id/layout", h.UpdateLayout)
    staff.PUT("/:id/seats/:label/active", h.SetSeatActive)
}

// RegisterAdmin registers staff-only management endpoints: patron
// enrollment and the persisted settings table.
func RegisterAdmin(e *echo.Echo, u *handler.UserHandler, cfg *handler.ConfigHandler, jwtSecret string) {
    g := e.Group("/v1")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole(model.RoleStaff))

    g.POST("/users", u.RegisterPatron)
    g.GET("/users/:id", u.GetUser)

    g.GET("/config", cfg.GetAll)
    g.PUT("/config", cfg.Put)
}
