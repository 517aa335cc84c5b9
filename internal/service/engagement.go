package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"promptmarket/internal/model"
	"promptmarket/internal/repository"
	"promptmarket/internal/suppress"
)

type EngagementService interface {
	// RecordView counts one view per call, except when the same viewer hit
	// the same product within the suppression window. View counts are
	// best-effort, unlike sales and ledger numbers.
	RecordView(ctx context.Context, viewerID, productID string) error
	// RecordReview inserts a verified-purchase review and recomputes the
	// product's rating and review count from the full current review set.
	RecordReview(ctx context.Context, buyerID, purchaseID string, rating int, title, content string) (*model.Review, error)
	// ListReviews returns a product's reviews, newest first.
	ListReviews(ctx context.Context, productID string) ([]*model.Review, error)
}

type engagementServiceImpl struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	purchaseRepo repository.PurchaseRepository
	reviewRepo   repository.ReviewRepository
	suppressor   suppress.Suppressor
	logger       *zap.Logger
}

func NewEngagementService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	purchaseRepo repository.PurchaseRepository,
	reviewRepo repository.ReviewRepository,
	suppressor suppress.Suppressor,
	logger *zap.Logger,
) EngagementService {
	return &engagementServiceImpl{
		db:           db,
		productRepo:  productRepo,
		purchaseRepo: purchaseRepo,
		reviewRepo:   reviewRepo,
		suppressor:   suppressor,
		logger:       logger,
	}
}

func (s *engagementServiceImpl) RecordView(ctx context.Context, viewerID, productID string) error {
	first, err := s.suppressor.FirstInWindow(ctx, viewerID+":"+productID)
	if err != nil {
		// A broken suppression backend must not block content serving;
		// count the view and move on.
		s.logger.Warn("view suppression check failed", zap.Error(err))
		first = true
	}
	if !first {
		return nil
	}

	if err := s.productRepo.IncrementViewCount(ctx, productID); err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}

	return nil
}

func (s *engagementServiceImpl) RecordReview(ctx context.Context, buyerID, purchaseID string, rating int, title, content string) (*model.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	purchase, err := s.purchaseRepo.FindByID(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("find purchase: %w", err)
	}
	if purchase.BuyerID != buyerID {
		return nil, ErrReviewNotAllowed
	}

	reviewed, err := s.reviewRepo.ExistsForPurchase(ctx, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if reviewed {
		return nil, ErrDuplicateReview
	}

	review := &model.Review{
		ID:         uuid.NewString(),
		PurchaseID: purchaseID,
		Rating:     rating,
		Title:      title,
		Content:    content,
		CreatedAt:  time.Now(),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the product row before inserting and aggregating. Under
		// snapshot isolation the transaction alone is not enough: two
		// concurrent reviews would each aggregate their own snapshot and
		// the loser would overwrite the winner's count. The lock makes
		// the second recompute wait and then read the committed set.
		if _, err := s.productRepo.FindByIDForUpdate(ctx, tx, purchase.ProductID); err != nil {
			return fmt.Errorf("lock product: %w", err)
		}

		if err := s.reviewRepo.Create(ctx, tx, review); err != nil {
			return fmt.Errorf("store review: %w", err)
		}

		count, mean, err := s.reviewRepo.AggregateForProduct(ctx, tx, purchase.ProductID)
		if err != nil {
			return fmt.Errorf("aggregate reviews: %w", err)
		}

		if err := s.productRepo.UpdateRating(ctx, tx, purchase.ProductID, mean, count); err != nil {
			return fmt.Errorf("update product rating: %w", err)
		}

		return nil
	})

	if err != nil {
		// The unique index stays authoritative when two first reviews of
		// the same purchase race past the existence check.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateReview
		}
		return nil, err
	}

	return review, nil
}

func (s *engagementServiceImpl) ListReviews(ctx context.Context, productID string) ([]*model.Review, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}

	reviews, err := s.reviewRepo.ListForProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	return reviews, nil
}
