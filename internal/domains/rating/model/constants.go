package model

const (
	// Stars range
	MinStars = 1
	MaxStars = 5

	// Content limits
	MaxReviewLength = 2000
)
