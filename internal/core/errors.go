package core

import (
	"errors"
	"fmt"

	"wodo.ai/wodo-connect/internal/store"
)

var (
	ErrUsernameTaken = errors.New("username is already taken")
	ErrRequestClosed = errors.New("request is no longer pending")
	ErrNotRecipient  = errors.New("only the receiver can respond to a request")
)

// ValidationError rejects caller input before anything is persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// ParseError is raised by the store for values that no longer decode.
type ParseError = store.ParseError

// FormatError means the model answered but the payload was unusable.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("the AI returned an invalid response format: %s: %v", e.Reason, e.Err)
	}
	return "the AI returned an invalid response format: " + e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }

// ServiceError wraps a failed call to the text model.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }
