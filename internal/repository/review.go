package repository

import (
	"context"

	"gorm.io/gorm"

	"promptmarket/internal/model"
)

type ReviewRepository interface {
	Create(ctx context.Context, tx *gorm.DB, review *model.Review) error
	// AggregateForProduct recomputes count and mean rating from the full
	// current review set of a product, joining through purchases.
	AggregateForProduct(ctx context.Context, tx *gorm.DB, productID string) (count int64, mean float64, err error)
	ExistsForPurchase(ctx context.Context, purchaseID string) (bool, error)
	ListForProduct(ctx context.Context, productID string) ([]*model.Review, error)
}

type reviewRepoImpl struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepoImpl{
		db: db,
	}
}

func (r *reviewRepoImpl) Create(ctx context.Context, tx *gorm.DB, review *model.Review) error {
	return tx.WithContext(ctx).Create(review).Error
}

func (r *reviewRepoImpl) AggregateForProduct(ctx context.Context, tx *gorm.DB, productID string) (int64, float64, error) {
	var agg struct {
		Count int64
		Mean  float64
	}
	err := tx.WithContext(ctx).Model(&model.Review{}).
		Joins("JOIN purchases ON purchases.id = reviews.purchase_id").
		Where("purchases.product_id = ?", productID).
		Select("COUNT(*) AS count, COALESCE(AVG(reviews.rating), 0) AS mean").
		Scan(&agg).Error

	if err != nil {
		return 0, 0, err
	}

	return agg.Count, agg.Mean, nil
}

func (r *reviewRepoImpl) ExistsForPurchase(ctx context.Context, purchaseID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("purchase_id = ?", purchaseID).
		Count(&count).Error

	return count > 0, err
}

func (r *reviewRepoImpl) ListForProduct(ctx context.Context, productID string) ([]*model.Review, error) {
	var reviews []*model.Review
	err := r.db.WithContext(ctx).
		Joins("JOIN purchases ON purchases.id = reviews.purchase_id").
		Where("purchases.product_id = ?", productID).
		Order("reviews.created_at DESC").
		Find(&reviews).Error

	if err != nil {
		return nil, err
	}

	return reviews, nil
}
