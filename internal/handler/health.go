package handler // declare the package name; contains HTTP handlers

import (
	"context"  // bounded dependency checks
	"net/http" // net/http provides status codes and response helpers
	"time"     // response timestamp and check timeout

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Pinger is a dependency whose reachability is reported by /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports process and database health.
type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

type healthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

// Check answers 200 when the database responds and 503 otherwise, so
// load balancers can take an instance without a database out of rotation.
func (h *HealthHandler) Check(c echo.Context) error {
	resp := healthResponse{Status: "ok", Database: "ok", Timestamp: time.Now().UTC().Format(time.RFC3339)}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			resp.Status, resp.Database = "degraded", "unreachable"
			return c.JSON(http.StatusServiceUnavailable, resp)
		}
	}
	return c.JSON(http.StatusOK, resp)
}
