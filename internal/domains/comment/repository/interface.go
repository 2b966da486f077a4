package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"booklib-backend/internal/domains/comment/model"
	"booklib-backend/pkg/database"
)

// CommentRepository persists comments and comment likes. Mutations take a
// database.Querier so the service can run them inside a coordinator
// transaction or against the pool directly. Each write method touches only
// the columns its operation owns; concurrent moderation and soft deletes
// must never be overwritten by an author edit.
type CommentRepository interface {
	GetByID(ctx context.Context, q database.Querier, id uuid.UUID) (*model.Comment, error)
	Create(ctx context.Context, q database.Querier, comment *model.Comment) error
	UpdateText(ctx context.Context, q database.Querier, id uuid.UUID, text string, editedAt time.Time) error
	UpdateStatus(ctx context.Context, q database.Querier, id uuid.UUID, status model.Status) error
	SetActive(ctx context.Context, q database.Querier, id uuid.UUID, active bool) error
	ListByBook(ctx context.Context, bookID uuid.UUID, page, limit int) ([]*model.Comment, int, error)

	UpsertLike(ctx context.Context, q database.Querier, like *model.CommentLike) error
}
