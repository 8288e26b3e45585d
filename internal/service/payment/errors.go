package payment

import "errors"

var (
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrMissingReference   = errors.New("payment event has no session or intent reference")
	ErrNotOnlinePayment   = errors.New("order is not paid online")
	ErrAlreadyPaid        = errors.New("order is already paid")
	ErrRefundNotAllowed   = errors.New("refund is allowed only for paid orders")
	ErrRefundUnavailable  = errors.New("order has no payment intent to refund")
	ErrRefundInProgress   = errors.New("refund is already in progress")
	ErrInvalidAmount      = errors.New("invalid refund amount")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)
