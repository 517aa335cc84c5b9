package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"promptmarket/internal/dto"
	"promptmarket/internal/repository"
)

type EntitlementService interface {
	// Resolve answers whether a buyer sees full or only preview content.
	// The purchase check hits the store on every call so a capture that
	// just committed is visible immediately.
	Resolve(ctx context.Context, buyerID, productID string) (*dto.ContentResponse, error)
}

type entitlementServiceImpl struct {
	productRepo  repository.ProductRepository
	purchaseRepo repository.PurchaseRepository
}

func NewEntitlementService(
	productRepo repository.ProductRepository,
	purchaseRepo repository.PurchaseRepository,
) EntitlementService {
	return &entitlementServiceImpl{
		productRepo:  productRepo,
		purchaseRepo: purchaseRepo,
	}
}

func (s *entitlementServiceImpl) Resolve(ctx context.Context, buyerID, productID string) (*dto.ContentResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}

	resp := &dto.ContentResponse{
		ProductID:      product.ID,
		Title:          product.Title,
		Price:          product.Price,
		Currency:       product.Currency,
		Rating:         product.Rating,
		ReviewCount:    product.ReviewCount,
		PreviewContent: product.PreviewContent,
	}

	if buyerID == "" {
		return resp, nil
	}

	owned, err := s.purchaseRepo.ExistsForBuyerProduct(ctx, buyerID, productID)
	if err != nil {
		return nil, fmt.Errorf("check entitlement: %w", err)
	}
	if owned {
		resp.FullContent = &product.Content
	}

	return resp, nil
}
