package service

import (
	"context"

	"github.com/google/uuid"

	"booklib-backend/internal/domains/saved/model"
)

type SavedService interface {
	Save(ctx context.Context, userID, bookID uuid.UUID, req *model.SaveRequest) (*model.SavedBook, error)
	UpdateSaveStatus(ctx context.Context, userID, bookID uuid.UUID, req *model.UpdateSaveStatusRequest) (*model.SavedBook, error)
	Unsave(ctx context.Context, userID, bookID uuid.UUID) error
	ListSaved(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.SavedBook, int, error)
}
