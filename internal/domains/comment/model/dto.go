package model

import (
	"github.com/google/uuid"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CreateCommentRequest is the payload for commenting on a book.
type CreateCommentRequest struct {
	Text     string     `json:"text"`
	ParentID *uuid.UUID `json:"parent_id"`
}

func (r *CreateCommentRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Text, validation.Required, validation.Length(1, MaxTextLength)),
	)
	if err == nil {
		return nil
	}

	if errs, ok := err.(validation.Errors); ok && errs["text"] != nil {
		if len(r.Text) > MaxTextLength {
			return NewTextTooLongError()
		}
		return NewTextRequiredError()
	}
	return err
}

// EditCommentRequest is the payload for editing one's own comment.
type EditCommentRequest struct {
	Text string `json:"text"`
}

func (r *EditCommentRequest) Validate() error {
	req := CreateCommentRequest{Text: r.Text}
	return req.Validate()
}

// ModerateCommentRequest is the admin payload for a status transition.
type ModerateCommentRequest struct {
	Status Status `json:"status"`
}

func (r *ModerateCommentRequest) Validate() error {
	if !r.Status.IsValid() {
		return NewInvalidStatusError(string(r.Status))
	}
	return nil
}

// ToggleLikeRequest carries the requested like/dislike value.
type ToggleLikeRequest struct {
	IsLike *bool `json:"is_like"`
}

func (r *ToggleLikeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.IsLike, validation.NotNil),
	)
}
