package commerce

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a business failure for the transport layer.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindValidation
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	}
	return "unknown"
}

// Error is a business rule failure with a stable machine code and a user facing message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NotFound(code, format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Invalid(code, format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Conflict(code, format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// ErrCartConflict is returned by a cart write whose revision no longer matches.
var ErrCartConflict = errors.New("cart revision conflict")

var (
	errClientNotFound = NotFound("CLIENT_NOT_FOUND", "Client not found")
	errCartNotFound   = NotFound("CART_NOT_FOUND", "Cart not found")
	errItemNotFound   = NotFound("ITEM_NOT_FOUND", "Item not found in cart")
	errOrderNotFound  = NotFound("ORDER_NOT_FOUND", "Order not found")
	errProductMissing = NotFound("PRODUCT_NOT_FOUND", "Product not found")
	errBadQuantity    = Invalid("INVALID_QUANTITY", "Quantity must be at least 1")
	errEmptyCart      = Invalid("EMPTY_CART", "Cart is empty. Cannot create order.")
	errCartBusy       = Conflict("CART_CONFLICT", "Cart was modified concurrently, please retry")
)
