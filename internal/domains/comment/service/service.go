package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	bookmodel "booklib-backend/internal/domains/book/model"
	bookrepo "booklib-backend/internal/domains/book/repository"
	"booklib-backend/internal/domains/comment/model"
	"booklib-backend/internal/domains/comment/repository"
	"booklib-backend/internal/stats"
	"booklib-backend/pkg/cache"
	"booklib-backend/pkg/logger"
)

// StatsCoordinator runs a child mutation and the aggregate recompute in a
// single transaction.
type StatsCoordinator interface {
	Execute(ctx context.Context, target stats.Target, mutate stats.MutateFunc) error
}

type commentService struct {
	repo        repository.CommentRepository
	bookRepo    bookrepo.BookRepository
	coordinator StatsCoordinator
	cache       cache.Cache
	denylist    []string
}

func NewCommentService(
	repo repository.CommentRepository,
	bookRepo bookrepo.BookRepository,
	coordinator StatsCoordinator,
	cacheClient cache.Cache,
	denylist []string,
) CommentService {
	return &commentService{
		repo:        repo,
		bookRepo:    bookRepo,
		coordinator: coordinator,
		cache:       cacheClient,
		denylist:    denylist,
	}
}

func (s *commentService) CreateComment(ctx context.Context, userID, bookID uuid.UUID, req *model.CreateCommentRequest) (*model.Comment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.bookRepo.Exists(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, bookmodel.ErrBookNotFound
	}

	now := time.Now()
	comment := &model.Comment{
		ID:        uuid.New(),
		UserID:    userID,
		BookID:    bookID,
		ParentID:  req.ParentID,
		Depth:     1,
		Text:      req.Text,
		Status:    s.classify(req.Text),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.coordinator.Execute(ctx, stats.CommentTarget(bookID), func(tx pgx.Tx) error {
		if req.ParentID != nil {
			parent, err := s.repo.GetByID(ctx, tx, *req.ParentID)
			if err != nil {
				return err
			}
			if parent.BookID != bookID || !parent.IsActive {
				return model.ErrCommentNotFound
			}
			if parent.Depth >= model.MaxDepth {
				return model.NewNestingTooDeepError()
			}
			comment.Depth = parent.Depth + 1
		}
		return s.repo.Create(ctx, tx, comment)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, bookID)

	logger.Info("Comment created", map[string]interface{}{
		"comment_id": comment.ID.String(),
		"book_id":    bookID.String(),
		"status":     string(comment.Status),
		"depth":      comment.Depth,
	})

	return comment, nil
}

func (s *commentService) EditComment(ctx context.Context, userID, commentID uuid.UUID, req *model.EditCommentRequest) (*model.Comment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Pool read resolves the book id (immutable) and fails fast; the
	// authoritative ownership and liveness checks rerun on the
	// transaction-visible row below, so a moderation or soft delete
	// committed in between is never overwritten.
	comment, err := s.repo.GetByID(ctx, nil, commentID)
	if err != nil {
		return nil, err
	}
	if !comment.IsActive {
		return nil, model.ErrCommentNotFound
	}
	if comment.UserID != userID {
		return nil, model.NewNotOwnerError()
	}

	var edited *model.Comment
	err = s.coordinator.Execute(ctx, stats.CommentTarget(comment.BookID), func(tx pgx.Tx) error {
		current, err := s.repo.GetByID(ctx, tx, commentID)
		if err != nil {
			return err
		}
		if !current.IsActive {
			return model.ErrCommentNotFound
		}
		if current.UserID != userID {
			return model.NewNotOwnerError()
		}

		now := time.Now()
		if err := s.repo.UpdateText(ctx, tx, commentID, req.Text, now); err != nil {
			return err
		}
		current.Text = req.Text
		current.IsEdited = true
		current.EditedAt = &now

		// Edited text goes back through the spam filter. The downgrade is
		// the only status transition an edit may make: a clean edit never
		// resurrects a comment a moderator already rejected.
		if s.classify(req.Text) == model.StatusSpam && current.Status != model.StatusSpam {
			if err := s.repo.UpdateStatus(ctx, tx, commentID, model.StatusSpam); err != nil {
				return err
			}
			current.Status = model.StatusSpam
		}

		edited = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx, edited.BookID)

	return edited, nil
}

func (s *commentService) DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error {
	comment, err := s.repo.GetByID(ctx, nil, commentID)
	if err != nil {
		return err
	}
	if !comment.IsActive {
		return model.ErrCommentNotFound
	}
	if comment.UserID != userID {
		return model.NewNotOwnerError()
	}

	err = s.coordinator.Execute(ctx, stats.CommentTarget(comment.BookID), func(tx pgx.Tx) error {
		current, err := s.repo.GetByID(ctx, tx, commentID)
		if err != nil {
			return err
		}
		if !current.IsActive {
			return model.ErrCommentNotFound
		}
		if current.UserID != userID {
			return model.NewNotOwnerError()
		}
		return s.repo.SetActive(ctx, tx, commentID, false)
	})
	if err != nil {
		return err
	}

	s.invalidateStats(ctx, comment.BookID)

	logger.Info("Comment deleted", map[string]interface{}{
		"comment_id": commentID.String(),
		"book_id":    comment.BookID.String(),
	})

	return nil
}

func (s *commentService) ModerateComment(ctx context.Context, commentID uuid.UUID, req *model.ModerateCommentRequest) (*model.Comment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	comment, err := s.repo.GetByID(ctx, nil, commentID)
	if err != nil {
		return nil, err
	}

	err = s.coordinator.Execute(ctx, stats.CommentTarget(comment.BookID), func(tx pgx.Tx) error {
		return s.repo.UpdateStatus(ctx, tx, commentID, req.Status)
	})
	if err != nil {
		return nil, err
	}

	comment.Status = req.Status
	s.invalidateStats(ctx, comment.BookID)

	logger.Info("Comment moderated", map[string]interface{}{
		"comment_id": commentID.String(),
		"status":     string(req.Status),
	})

	return comment, nil
}

func (s *commentService) ToggleLike(ctx context.Context, userID, commentID uuid.UUID, req *model.ToggleLikeRequest) (*model.CommentLike, int64, error) {
	if err := req.Validate(); err != nil {
		return nil, 0, err
	}

	comment, err := s.repo.GetByID(ctx, nil, commentID)
	if err != nil {
		return nil, 0, err
	}
	if !comment.IsActive {
		return nil, 0, model.ErrCommentNotFound
	}

	// The upsert resolves both the first reaction and a flip with one
	// statement; concurrent first-time reactions converge on the same row
	// instead of racing the unique pair constraint.
	now := time.Now()
	like := &model.CommentLike{
		ID:        uuid.New(),
		UserID:    userID,
		CommentID: commentID,
		IsLike:    *req.IsLike,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.coordinator.Execute(ctx, stats.LikeTarget(commentID), func(tx pgx.Tx) error {
		return s.repo.UpsertLike(ctx, tx, like)
	})
	if err != nil {
		return nil, 0, err
	}

	updated, err := s.repo.GetByID(ctx, nil, commentID)
	if err != nil {
		return nil, 0, err
	}

	return like, updated.LikesCount, nil
}

func (s *commentService) ListBookComments(ctx context.Context, bookID uuid.UUID, page, limit int) ([]*model.Comment, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	exists, err := s.bookRepo.Exists(ctx, bookID)
	if err != nil {
		return nil, 0, err
	}
	if !exists {
		return nil, 0, bookmodel.ErrBookNotFound
	}

	return s.repo.ListByBook(ctx, bookID, page, limit)
}

// classify runs the denylist filter: a hit lands the comment in spam
// without surfacing an error to the author. Clean comments go live as
// approved; moderators can still reject them afterwards.
func (s *commentService) classify(text string) model.Status {
	lowered := strings.ToLower(text)
	for _, term := range s.denylist {
		if term != "" && strings.Contains(lowered, term) {
			return model.StatusSpam
		}
	}
	return model.StatusApproved
}

func (s *commentService) invalidateStats(ctx context.Context, bookID uuid.UUID) {
	if err := s.cache.Delete(ctx, bookmodel.StatsCacheKey(bookID)); err != nil {
		logger.Warn("Failed to invalidate stats cache", map[string]interface{}{
			"book_id": bookID.String(),
			"error":   err.Error(),
		})
	}
}
