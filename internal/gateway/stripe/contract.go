//go:generate mockgen -source=contract.go -destination=./contract_mocks_test.go -package=stripe_test
package stripe

import (
	stripeapi "github.com/stripe/stripe-go/v76"
)

type sessionClient interface {
	New(params *stripeapi.CheckoutSessionParams) (*stripeapi.CheckoutSession, error)
	Get(id string, params *stripeapi.CheckoutSessionParams) (*stripeapi.CheckoutSession, error)
}

type refundClient interface {
	New(params *stripeapi.RefundParams) (*stripeapi.Refund, error)
}
