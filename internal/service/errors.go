package service

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrInvalidEmail    = errors.New("invalid email")
	ErrNotFound        = errors.New("not found")
	ErrUnknownResource = errors.New("unknown resource")
)
