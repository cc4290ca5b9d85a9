package webserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/haider-deku/3d-marketplace/internal/app"
)

// AppContextKey is the echo context key holding the app.AppContext
const AppContextKey = "appctx"

// withAppContext exposes appCtx to handlers
func withAppContext(appCtx app.AppContext) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(AppContextKey, appCtx)
			return next(c)
		}
	}
}

// requestID keeps an incoming X-Request-Id or assigns a uuid
func requestID() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	})
}

// requestLogger logs one line per request through zap
func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency:   true,
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			status := v.Status
			if v.Error != nil && status < http.StatusBadRequest {
				// plain handler errors become 500 in the error handler
				status = http.StatusInternalServerError
			}
			fields := []zap.Field{
				zap.String("request_id", v.RequestID),
				zap.String("method", v.Method),
				zap.String("path", v.URIPath),
				zap.Int("status", status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case status >= 500:
				zap.L().Error("http request", fields...)
			case status >= 400:
				zap.L().Warn("http request", fields...)
			default:
				zap.L().Info("http request", fields...)
			}
			return nil
		},
	})
}
