package auth

import "errors"

// Module errors.
var (
	ErrMerchantNotFound   = errors.New("merchant not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAPIKey      = errors.New("invalid api key")
	ErrMerchantInactive   = errors.New("merchant is inactive")
	ErrInvalidToken       = errors.New("invalid token")
)
