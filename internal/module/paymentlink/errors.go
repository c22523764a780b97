package paymentlink

import "errors"

// Module errors.
var (
	ErrLinkNotFound     = errors.New("payment link not found")
	ErrLinkInactive     = errors.New("payment link is inactive")
	ErrLinkExpired      = errors.New("payment link has expired")
	ErrMethodNotAllowed = errors.New("payment method not allowed by link")
	ErrNoMethods        = errors.New("at least one payment method is required")
)
