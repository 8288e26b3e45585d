package otp

import "errors"

var (
	ErrEmptyKey          = errors.New("otp key is empty")
	ErrNotFound          = errors.New("otp challenge not found")
	ErrExpired           = errors.New("otp challenge expired")
	ErrMismatch          = errors.New("otp code mismatch")
	ErrNotifyUnavailable = errors.New("otp notification channel unavailable")
)
