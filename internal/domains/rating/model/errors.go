package model

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeRatingNotFound = "RAT001"
	ErrCodeOutOfRange     = "RAT002"
	ErrCodeAlreadyRated   = "RAT003"
	ErrCodeReviewTooLong  = "RAT004"
)

// Errors
var (
	ErrRatingNotFound = errors.New("rating not found")
	ErrOutOfRange     = errors.New("stars out of range")
	ErrAlreadyRated   = errors.New("already rated this book")
	ErrReviewTooLong  = errors.New("review text too long")
)

// RatingError custom error type
type RatingError struct {
	Code    string
	Message string
	Err     error
}

func (e *RatingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RatingError) Unwrap() error {
	return e.Err
}

// Error constructors
func NewOutOfRangeError() *RatingError {
	return &RatingError{
		Code:    ErrCodeOutOfRange,
		Message: fmt.Sprintf("Stars must be between %d and %d", MinStars, MaxStars),
		Err:     ErrOutOfRange,
	}
}

func NewAlreadyRatedError() *RatingError {
	return &RatingError{
		Code:    ErrCodeAlreadyRated,
		Message: "You have already rated this book",
		Err:     ErrAlreadyRated,
	}
}

func NewReviewTooLongError() *RatingError {
	return &RatingError{
		Code:    ErrCodeReviewTooLong,
		Message: fmt.Sprintf("Review text must not exceed %d characters", MaxReviewLength),
		Err:     ErrReviewTooLong,
	}
}
