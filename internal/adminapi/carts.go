package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/haider-deku/3d-marketplace/internal/webserver"
	"github.com/haider-deku/3d-marketplace/pkg/common"
)

type cartItemPayload struct {
	ClientID  string `json:"clientId" validate:"required"`
	ProductID string `json:"productId" validate:"required"`
	Size      string `json:"size" validate:"required"`
	Quantity  *int   `json:"quantity"`
}

type cartQuantityPayload struct {
	ClientID  string `json:"clientId" validate:"required"`
	ProductID string `json:"productId" validate:"required"`
	Size      string `json:"size" validate:"required"`
	Quantity  *int   `json:"quantity" validate:"required"`
}

// registerCartRoutes registers the cart engine routes
func registerCartRoutes() {
	webserver.ApiGET("/carts/:clientId", getCart)
	webserver.ApiPOST("/carts/add", addToCart)
	webserver.ApiPUT("/carts/update", updateCartItem)
	webserver.ApiDELETE("/carts/remove", removeFromCart)
	webserver.ApiDELETE("/carts/clear/:clientId", clearCart)
}

// parseLineIDs parses the client and product ids of a cart line request.
func parseLineIDs(c echo.Context, clientRaw, productRaw string) (clientID, productID int64, okIDs bool, err error) {
	if clientID, err = common.ParseID(clientRaw); err != nil {
		return 0, 0, false, fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid client ID", nil)
	}
	if productID, err = common.ParseID(productRaw); err != nil {
		return 0, 0, false, fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	return clientID, productID, true, nil
}

// getCart
// @Summary get the priced cart of a client
// @Tags Cart
// @Param clientId path string true "Client ID"
// @Success 200 {object} commerce.CartView
// @Router /api/carts/{clientId} [get]
func getCart(c echo.Context) error {
	clientID, err := parseIDParam(c, "clientId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid client ID", nil)
	}
	view, err := GetAppContext(c).Commerce().GetCart(c.Request().Context(), clientID)
	if err != nil {
		return failErr(c, err, "Error fetching cart")
	}
	return ok(c, view)
}

// addToCart
// @Summary add a product size to the cart, merging with an existing line
// @Tags Cart
// @Router /api/carts/add [post]
func addToCart(c echo.Context) error {
	var payload cartItemPayload
	if next, err := bindAndValidate(c, &payload, "cart"); !next {
		return err
	}
	clientID, productID, okIDs, err := parseLineIDs(c, payload.ClientID, payload.ProductID)
	if !okIDs {
		return err
	}
	quantity := 0 // omitted means one unit
	if payload.Quantity != nil {
		quantity = *payload.Quantity
	}
	cart, err := GetAppContext(c).Commerce().AddItem(c.Request().Context(), clientID, productID, strings.TrimSpace(payload.Size), quantity)
	if err != nil {
		return failErr(c, err, "Error adding to cart")
	}
	return okMsg(c, "Item added to cart", cart)
}

func updateCartItem(c echo.Context) error {
	var payload cartQuantityPayload
	if next, err := bindAndValidate(c, &payload, "cart"); !next {
		return err
	}
	clientID, productID, okIDs, err := parseLineIDs(c, payload.ClientID, payload.ProductID)
	if !okIDs {
		return err
	}
	cart, err := GetAppContext(c).Commerce().UpdateItemQuantity(c.Request().Context(), clientID, productID, strings.TrimSpace(payload.Size), *payload.Quantity)
	if err != nil {
		return failErr(c, err, "Error updating cart item")
	}
	return okMsg(c, "Cart item updated", cart)
}

func removeFromCart(c echo.Context) error {
	var payload cartItemPayload
	if next, err := bindAndValidate(c, &payload, "cart"); !next {
		return err
	}
	clientID, productID, okIDs, err := parseLineIDs(c, payload.ClientID, payload.ProductID)
	if !okIDs {
		return err
	}
	cart, err := GetAppContext(c).Commerce().RemoveItem(c.Request().Context(), clientID, productID, strings.TrimSpace(payload.Size))
	if err != nil {
		return failErr(c, err, "Error removing item from cart")
	}
	return okMsg(c, "Item removed from cart", cart)
}

func clearCart(c echo.Context) error {
	clientID, err := parseIDParam(c, "clientId")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid client ID", nil)
	}
	cart, err := GetAppContext(c).Commerce().ClearCart(c.Request().Context(), clientID)
	if err != nil {
		return failErr(c, err, "Error clearing cart")
	}
	return okMsg(c, "Cart cleared", cart)
}
