package service

import (
	"context"

	"github.com/google/uuid"

	"booklib-backend/internal/domains/comment/model"
)

type CommentService interface {
	CreateComment(ctx context.Context, userID, bookID uuid.UUID, req *model.CreateCommentRequest) (*model.Comment, error)
	EditComment(ctx context.Context, userID, commentID uuid.UUID, req *model.EditCommentRequest) (*model.Comment, error)
	DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error
	ModerateComment(ctx context.Context, commentID uuid.UUID, req *model.ModerateCommentRequest) (*model.Comment, error)
	ToggleLike(ctx context.Context, userID, commentID uuid.UUID, req *model.ToggleLikeRequest) (*model.CommentLike, int64, error)
	ListBookComments(ctx context.Context, bookID uuid.UUID, page, limit int) ([]*model.Comment, int, error)
}
