package order

import "errors"

var (
	ErrMissingRequiredFields = errors.New("missing required fields")
	ErrInvalidOrderID        = errors.New("invalid order id")
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrInvalidFilter         = errors.New("invalid filter")

	ErrOrderNotFound      = errors.New("order not found")
	ErrCartNotFound       = errors.New("cart not found")
	ErrAddressNotFound    = errors.New("address not found")
	ErrShopNotFound       = errors.New("shop not found")
	ErrItemNotFound       = errors.New("item not found")
	ErrItemNotInShop      = errors.New("item does not belong to shop")
	ErrOutOfStock         = errors.New("item out of stock")
	ErrAddressNotGeocoded = errors.New("address has no coordinates")
	ErrCartAlreadyOrdered = errors.New("cart already linked to an order")

	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrAlreadyClaimed    = errors.New("order already claimed")
	ErrNotDispatchable   = errors.New("order is not dispatchable")
)
