package handler // declare the package name; contains HTTP handlers

import (
	"net/http" // net/http provides status codes and response helpers

	"github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is the liveness endpoint used by load balancers and monitoring
// systems. It returns plain "ok" with a 200 status and deliberately
// touches no dependency, so it stays green while the database or broker
// recover.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
