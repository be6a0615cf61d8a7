package service

import "errors"

// Error taxonomy surfaced to handlers. Handlers map these to HTTP statuses
// with errors.Is; everything unmatched is a 500.
var (
	ErrInvalidCredential       = errors.New("platform rejected the supplied credential")
	ErrMissingParameter        = errors.New("required parameter is missing")
	ErrBusinessAccountRequired = errors.New("instagram publishing requires a business account")
	ErrPublishFailed           = errors.New("publish failed")
	ErrAccountNotConnected     = errors.New("account is not connected")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrNotFound                = errors.New("not found")
	ErrPostNotPending          = errors.New("post is no longer pending")
)
