package events

import "errors"

var (
	ErrNotFound       = errors.New("event not found")
	ErrForbidden      = errors.New("event owned by another host")
	ErrInvalidEventID = errors.New("invalid event id")
)
