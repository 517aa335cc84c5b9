package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"promptmarket/internal/model"
)

type ProductRepository interface {
	FindByID(ctx context.Context, productID string) (*model.Product, error)
	// FindByIDForUpdate locks the product row for the rest of the
	// transaction. Callers that recompute product aggregates take this
	// lock first so concurrent recomputes fully serialize.
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, productID string) (*model.Product, error)
	FindBySellerID(ctx context.Context, sellerID string) ([]*model.Product, error)
	IncrementSalesCount(ctx context.Context, tx *gorm.DB, productID string) error
	IncrementViewCount(ctx context.Context, productID string) error
	UpdateRating(ctx context.Context, tx *gorm.DB, productID string, rating float64, reviewCount int64) error
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, productID string) (*model.Product, error) {
	query := tx.WithContext(ctx)
	// sqlite has no FOR UPDATE; its single-writer lock already serializes
	// the transaction.
	if tx.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var product model.Product
	err := query.
		Where("id = ?", productID).
		First(&product).Error

	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindBySellerID(ctx context.Context, sellerID string) ([]*model.Product, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&products).Error

	if err != nil {
		return nil, err
	}

	return products, nil
}

// IncrementSalesCount bumps the counter with a SQL expression so two
// concurrent captures for the same product cannot lose an update.
func (r *productRepoImpl) IncrementSalesCount(ctx context.Context, tx *gorm.DB, productID string) error {
	return tx.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		UpdateColumn("sales_count", gorm.Expr("sales_count + 1")).Error
}

func (r *productRepoImpl) IncrementViewCount(ctx context.Context, productID string) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *productRepoImpl) UpdateRating(ctx context.Context, tx *gorm.DB, productID string, rating float64, reviewCount int64) error {
	return tx.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"rating":       rating,
			"review_count": reviewCount,
		}).Error
}
