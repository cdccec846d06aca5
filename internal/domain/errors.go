package domain

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrMailboxNotFound = errors.New("mailbox not found")
	ErrUpstreamTimeout = errors.New("upstream request timed out")
)
