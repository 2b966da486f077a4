package model

import "errors"

// Error codes
const (
	ErrCodeBookNotFound = "BOOK001"
)

var (
	ErrBookNotFound = errors.New("book not found")
)
