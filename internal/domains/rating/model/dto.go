package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// RateRequest is the rate/re-rate (upsert) payload.
type RateRequest struct {
	Stars      int     `json:"stars"`
	ReviewText *string `json:"review_text"`
}

// Validate rejects the request before any write happens.
func (r *RateRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Stars, validation.Required, validation.Min(MinStars), validation.Max(MaxStars)),
		validation.Field(&r.ReviewText, validation.Length(0, MaxReviewLength)),
	)
	if err == nil {
		return nil
	}

	if errs, ok := err.(validation.Errors); ok {
		if errs["stars"] != nil {
			return NewOutOfRangeError()
		}
		if errs["review_text"] != nil {
			return NewReviewTooLongError()
		}
	}
	return err
}

// RateResponse wraps the persisted rating plus whether it was newly
// created, so the handler can pick 201 vs 200.
type RateResponse struct {
	Rating  *Rating `json:"rating"`
	Created bool    `json:"created"`
}
