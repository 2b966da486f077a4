package model

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeCommentNotFound = "CMT001"
	ErrCodeTextTooLong     = "CMT002"
	ErrCodeNestingTooDeep  = "CMT003"
	ErrCodeInvalidStatus   = "CMT004"
	ErrCodeNotOwner        = "CMT005"
	ErrCodeTextRequired    = "CMT006"
)

// Errors
var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrTextTooLong     = errors.New("comment text too long")
	ErrNestingTooDeep  = errors.New("comment nesting too deep")
	ErrInvalidStatus   = errors.New("invalid comment status")
	ErrNotOwner        = errors.New("not the comment owner")
	ErrTextRequired    = errors.New("comment text required")
)

// CommentError custom error type
type CommentError struct {
	Code    string
	Message string
	Err     error
}

func (e *CommentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CommentError) Unwrap() error {
	return e.Err
}

// Error constructors
func NewTextTooLongError() *CommentError {
	return &CommentError{
		Code:    ErrCodeTextTooLong,
		Message: fmt.Sprintf("Comment text must not exceed %d characters", MaxTextLength),
		Err:     ErrTextTooLong,
	}
}

func NewTextRequiredError() *CommentError {
	return &CommentError{
		Code:    ErrCodeTextRequired,
		Message: "Comment text is required",
		Err:     ErrTextRequired,
	}
}

func NewNestingTooDeepError() *CommentError {
	return &CommentError{
		Code:    ErrCodeNestingTooDeep,
		Message: fmt.Sprintf("Comments can be nested at most %d levels deep", MaxDepth),
		Err:     ErrNestingTooDeep,
	}
}

func NewInvalidStatusError(status string) *CommentError {
	return &CommentError{
		Code:    ErrCodeInvalidStatus,
		Message: fmt.Sprintf("Invalid comment status %q", status),
		Err:     ErrInvalidStatus,
	}
}

func NewNotOwnerError() *CommentError {
	return &CommentError{
		Code:    ErrCodeNotOwner,
		Message: "You can only modify your own comments",
		Err:     ErrNotOwner,
	}
}
