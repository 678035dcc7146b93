package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrGroupNotFound = errors.New("group not found")
	ErrServe         = errors.New("http serve failed")
)

// Error codes carried in error responses.
const (
	codeNoData   = "no_data"
	codeNotFound = "not_found"
	codeInternal = "internal"
)
