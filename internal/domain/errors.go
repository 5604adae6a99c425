package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrItemProcessing = errors.New("item is processing")
	ErrItemNotPending = errors.New("item is not pending")
	ErrItemNotErrored = errors.New("item is not in error state")
	ErrRunActive      = errors.New("batch run already active")
	ErrNoPendingItems = errors.New("no pending items")
	ErrNoGenerator    = errors.New("no metadata generator configured")
	ErrInvalidConfig  = errors.New("invalid batch configuration")
)
