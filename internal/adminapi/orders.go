package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/haider-deku/3d-marketplace/internal/webserver"
	"github.com/haider-deku/3d-marketplace/pkg/common"
)

type checkoutPayload struct {
	ClientID string `json:"clientId" validate:"required"`
}

type orderStatusPayload struct {
	Status string `json:"status"`
}

// registerOrderRoutes registers checkout and order lifecycle routes
func registerOrderRoutes() {
	webserver.ApiGET("/orders", listOrders)
	webserver.ApiGET("/orders/:id", getOrder)
	webserver.ApiGET("/orders/client/:clientId", listClientOrders)
	webserver.ApiPOST("/orders/checkout", checkout)
	webserver.ApiPUT("/orders/:id/status", updateOrderStatus)
	webserver.ApiDELETE("/orders/:id", deleteOrder)
}

// checkout
// @Summary convert the client's cart into a pending order
// @Tags Order
// @Router /api/orders/checkout [post]
func checkout(c echo.Context) error {
	var payload checkoutPayload
	if next, err := bindAndValidate(c, &payload, "checkout"); !next {
		return err
	}
	clientID, err := common.ParseID(payload.ClientID)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid client ID", nil)
	}
	order, err := GetAppContext(c).Commerce().Checkout(c.Request().Context(), clientID)
	if err != nil {
		return failErr(c, err, "Error creating order")
	}
	return created(c, "Order created successfully. Cart has been cleared.", order)
}

func listOrders(c echo.Context) error {
	rows, err := GetAppContext(c).Commerce().ListOrders(c.Request().Context())
	if err != nil {
		return failErr(c, err, "Error fetching orders")
	}
	return okList(c, rows, len(rows))
}

func getOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	order, err := GetAppContext(c).Commerce().GetOrder(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err, "Error fetching order")
	}
	return ok(c, order)
}

func listClientOrders(c echo.Context) error {
	clientID, err := parseIDParam(c, "clientId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid client ID", nil)
	}
	rows, err := GetAppContext(c).Commerce().ListClientOrders(c.Request().Context(), clientID)
	if err != nil {
		return failErr(c, err, "Error fetching orders")
	}
	return okList(c, rows, len(rows))
}

// updateOrderStatus
// @Summary set an order status; any legal value is accepted
// @Tags Order
// @Router /api/orders/{id}/status [put]
func updateOrderStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var payload orderStatusPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse order status", err.Error())
	}
	order, err := GetAppContext(c).Commerce().UpdateOrderStatus(c.Request().Context(), id, strings.TrimSpace(payload.Status))
	if err != nil {
		return failErr(c, err, "Error updating order status")
	}
	return okMsg(c, "Order status updated successfully", order)
}

func deleteOrder(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	if err := GetAppContext(c).Commerce().DeleteOrder(c.Request().Context(), id); err != nil {
		return failErr(c, err, "Error deleting order")
	}
	return okMsg(c, "Order deleted successfully", nil)
}
