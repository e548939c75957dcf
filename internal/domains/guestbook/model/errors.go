package model

import "errors"

const (
	CodeEntryNotFound   = "GUESTBOOK_ENTRY_NOT_FOUND"
	CodeValidationError = "VALIDATION_ERROR"
)

var (
	ErrEntryNotFound  = errors.New("guestbook entry not found")
	ErrInvalidEntryID = errors.New("invalid guestbook entry id")
)
