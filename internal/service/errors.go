package service

import "errors"

var (
	// ErrInvalidMessage indicates the user message is missing or empty.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrSynthesisFailed indicates the model could not produce document text.
	ErrSynthesisFailed = errors.New("document synthesis failed")
)
