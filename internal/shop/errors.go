package shop

import "errors"

var (
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidCredentials = errors.New("incorrect password")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
	ErrInvalidProduct     = errors.New("invalid product")
	ErrInvalidSize        = errors.New("size not offered for this product")
)
