package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/haider-deku/3d-marketplace/internal/webserver"
)

func registerHealthRoutes() {
	webserver.RootGET("/", getWelcome)
	webserver.RootGET("/health", getHealth)
}

func getWelcome(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "Welcome to 3D Marketplace API"})
}

func getHealth(c echo.Context) error {
	sqlDB, err := GetAppContext(c).DB().DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request().Context())
	}
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "ERROR",
			"message": "Database unavailable",
			"error":   err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "OK", "message": "Server is running"})
}
