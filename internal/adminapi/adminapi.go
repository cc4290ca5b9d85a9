package adminapi

import "sync"

var initOnce sync.Once

// Init registers every API route with the web server. Call before webserver.NewAdminServer.
func Init() {
	initOnce.Do(func() {
		registerHealthRoutes()
		registerCategoryRoutes()
		registerProductRoutes()
		registerClientRoutes()
		registerAdminRoutes()
		registerCartRoutes()
		registerOrderRoutes()
	})
}
