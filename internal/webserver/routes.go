package webserver

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
)

type route struct {
	method     string
	path       string
	handler    echo.HandlerFunc
	middleware []echo.MiddlewareFunc
	root       bool
}

var (
	routesMu sync.Mutex
	routes   []route
)

func register(r route) {
	routesMu.Lock()
	defer routesMu.Unlock()
	routes = append(routes, r)
}

func registered() []route {
	routesMu.Lock()
	defer routesMu.Unlock()
	out := make([]route, len(routes))
	copy(out, routes)
	return out
}

// ApiGET registers a GET handler under the /api prefix
func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	register(route{method: http.MethodGet, path: path, handler: h, middleware: m})
}

// ApiPOST registers a POST handler under the /api prefix
func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	register(route{method: http.MethodPost, path: path, handler: h, middleware: m})
}

// ApiPUT registers a PUT handler under the /api prefix
func ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	register(route{method: http.MethodPut, path: path, handler: h, middleware: m})
}

// ApiDELETE registers a DELETE handler under the /api prefix
func ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	register(route{method: http.MethodDelete, path: path, handler: h, middleware: m})
}

// RootGET registers a GET handler outside the /api prefix
func RootGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	register(route{method: http.MethodGet, path: path, handler: h, middleware: m, root: true})
}
