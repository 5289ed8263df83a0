package domain

import "errors"

// Common validation errors
var (
	ErrEmptyAPILabel = errors.New("api label cannot be empty")
	ErrEmptyQuestion = errors.New("question cannot be empty")
	ErrEmptyPrompt   = errors.New("prompt cannot be empty")
	ErrNegativeID    = errors.New("task id cannot be negative")
	ErrEmptyToken    = errors.New("session token cannot be empty")
	ErrNoResults     = errors.New("artifact needs at least one completion result")
)
