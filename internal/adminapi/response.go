package adminapi

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/haider-deku/3d-marketplace/internal/app"
	"github.com/haider-deku/3d-marketplace/internal/commerce"
	"github.com/haider-deku/3d-marketplace/internal/webserver"
	"github.com/haider-deku/3d-marketplace/pkg/common"
)

// GetAppContext returns the application context stored by the web server
func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(webserver.AppContextKey).(app.AppContext)
}

// GetDB returns the database bound to the request context
func GetDB(c echo.Context) *gorm.DB {
	return GetAppContext(c).DB().WithContext(c.Request().Context())
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, webserver.Response{Success: true, Data: data})
}

func okMsg(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, webserver.Response{Success: true, Message: message, Data: data})
}

func created(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusCreated, webserver.Response{Success: true, Message: message, Data: data})
}

func okList(c echo.Context, data interface{}, count int) error {
	return c.JSON(http.StatusOK, webserver.Response{Success: true, Data: data, Count: &count})
}

func fail(c echo.Context, status int, code, message string, details interface{}) error {
	return c.JSON(status, webserver.Response{Success: false, Code: code, Message: message, Error: details})
}

// failErr renders business errors with their own status and anything else as a 500.
func failErr(c echo.Context, err error, message string) error {
	if e, found := commerce.AsError(err); found {
		status := http.StatusInternalServerError
		switch e.Kind {
		case commerce.KindNotFound:
			status = http.StatusNotFound
		case commerce.KindValidation:
			status = http.StatusBadRequest
		case commerce.KindConflict:
			status = http.StatusConflict
		}
		return fail(c, status, e.Code, e.Message, nil)
	}
	return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", message, err.Error())
}

func handleValidationError(c echo.Context, err error) error {
	verrs, isValidation := err.(validator.ValidationErrors)
	if !isValidation {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request parameters", err.Error())
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := lowerFirst(fe.Field())
		if fe.Param() != "" {
			details[field] = fe.Tag() + "=" + fe.Param()
		} else {
			details[field] = fe.Tag()
		}
	}
	return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Request validation failed", details)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return common.ParseID(c.Param(name))
}

// bindAndValidate binds the request body into payload and runs its validate tags.
// It writes the failure response itself and reports whether the handler may go on.
func bindAndValidate(c echo.Context, payload interface{}, what string) (bool, error) {
	if err := c.Bind(payload); err != nil {
		return false, fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse "+what+" parameters", err.Error())
	}
	if err := c.Validate(payload); err != nil {
		return false, handleValidationError(c, err)
	}
	return true, nil
}

// isDuplicateKey reports a unique constraint violation from postgres or sqlite.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique failed")
}
