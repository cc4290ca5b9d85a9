package webserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Response is the JSON envelope of every API reply.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
	Count   *int        `json:"count,omitempty"`
}

// httpErrorHandler renders router level failures (unknown route, wrong method,
// panics turned into errors) with the same envelope as handlers.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"
	message := "Internal server error"
	var detail interface{}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(status)
		}
		switch status {
		case http.StatusNotFound:
			code = "NOT_FOUND"
		case http.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		case http.StatusBadRequest:
			code = "INVALID_REQUEST"
		}
	} else {
		detail = err.Error()
		zap.L().Error("unhandled request error",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	resp := Response{Success: false, Message: message, Code: code, Error: detail}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, resp)
	}
	if err != nil {
		zap.L().Warn("write error response failed", zap.Error(err))
	}
}
