package handler

import "errors"

var (
	ErrFailedToDecodeRequestBody = errors.New("failed to decode request body")
	ErrFailedToReadRequestBody   = errors.New("failed to read request body")
	ErrMissingTemplate           = errors.New("template query parameter is required")
	ErrUpstream                  = errors.New("failed to fetch resource from upstream")
	ErrResourceTooLarge          = errors.New("resource body exceeds 16 MiB")
)
