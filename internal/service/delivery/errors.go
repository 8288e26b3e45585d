package delivery

import "errors"

var (
	ErrNotOnTheWay    = errors.New("order is not on the way")
	ErrMissingOtpCode = errors.New("otp code is required")
	ErrNoContact      = errors.New("customer has no contact for otp")
	ErrNotGeocoded    = errors.New("delivery address has no coordinates")
)
