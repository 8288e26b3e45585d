package receipt

import "errors"

var (
	ErrInvalidTaxRate = errors.New("invalid tax rate")
	ErrEmptyCart      = errors.New("cart has no items")
)
