package order_events

import "errors"

var (
	ErrStatusMismatch  = errors.New("order status mismatch between event and storage")
	ErrUndefinedStatus = errors.New("undefined order status")
	ErrMissingFields   = errors.New("order id and status are required")
)
