package repository

import (
	"context"

	"gorm.io/gorm"

	"promptmarket/internal/model"
)

type PurchaseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, purchase *model.Purchase) error
	FindByID(ctx context.Context, purchaseID string) (*model.Purchase, error)
	FindByOrderID(ctx context.Context, orderID string) (*model.Purchase, error)
	// ExistsForBuyerProduct is the entitlement check: a buyer holds full
	// access to a product iff a purchase row exists for the pair.
	ExistsForBuyerProduct(ctx context.Context, buyerID, productID string) (bool, error)
}

type purchaseRepoImpl struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepoImpl{
		db: db,
	}
}

func (r *purchaseRepoImpl) Create(ctx context.Context, tx *gorm.DB, purchase *model.Purchase) error {
	return tx.WithContext(ctx).Create(purchase).Error
}

func (r *purchaseRepoImpl) FindByID(ctx context.Context, purchaseID string) (*model.Purchase, error) {
	var purchase model.Purchase
	err := r.db.WithContext(ctx).
		Where("id = ?", purchaseID).
		First(&purchase).Error

	if err != nil {
		return nil, err
	}

	return &purchase, nil
}

func (r *purchaseRepoImpl) FindByOrderID(ctx context.Context, orderID string) (*model.Purchase, error) {
	var purchase model.Purchase
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&purchase).Error

	if err != nil {
		return nil, err
	}

	return &purchase, nil
}

func (r *purchaseRepoImpl) ExistsForBuyerProduct(ctx context.Context, buyerID, productID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("buyer_id = ?", buyerID).
		Where("product_id = ?", productID).
		Count(&count).Error

	return count > 0, err
}
