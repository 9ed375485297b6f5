package services

import "errors"

// Sentinel errors returned by services. Handlers map these onto HTTP status
// codes with errors.Is; everything else is treated as an internal error.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")
)
