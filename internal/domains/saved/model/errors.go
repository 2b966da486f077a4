package model

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeSaveNotFound  = "SAV001"
	ErrCodeAlreadySaved  = "SAV002"
	ErrCodeInvalidStatus = "SAV003"
)

// Errors
var (
	ErrSaveNotFound  = errors.New("saved book not found")
	ErrAlreadySaved  = errors.New("book already saved")
	ErrInvalidStatus = errors.New("invalid save status")
)

// SaveError custom error type
type SaveError struct {
	Code    string
	Message string
	Err     error
}

func (e *SaveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// Error constructors
func NewAlreadySavedError() *SaveError {
	return &SaveError{
		Code:    ErrCodeAlreadySaved,
		Message: "Book is already in your saved list",
		Err:     ErrAlreadySaved,
	}
}

func NewInvalidStatusError(status string) *SaveError {
	return &SaveError{
		Code:    ErrCodeInvalidStatus,
		Message: fmt.Sprintf("Invalid save status %q", status),
		Err:     ErrInvalidStatus,
	}
}
