package service

import "errors"

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrNoEntries          = errors.New("no entries for this date")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUpstream           = errors.New("estimator request failed")
	ErrParse              = errors.New("estimator returned malformed output")
	ErrStore              = errors.New("store operation failed")
	ErrUnavailable        = errors.New("service unavailable")
)
