package service

import (
	"context"
	"fmt"
	"time"

	"promptmarket/internal/dto"
	"promptmarket/internal/repository"
)

type SellerService interface {
	GetSellerTotals(ctx context.Context, sellerID string) (*dto.SellerTotalsResponse, error)
	GetMonthlyTotals(ctx context.Context, sellerID string, windowStart, windowEnd time.Time) (*dto.SellerTotalsResponse, error)
	ListProducts(ctx context.Context, sellerID string) ([]*dto.SellerProduct, error)
}

type sellerServiceImpl struct {
	ledgerRepo  repository.LedgerRepository
	productRepo repository.ProductRepository
}

func NewSellerService(
	ledgerRepo repository.LedgerRepository,
	productRepo repository.ProductRepository,
) SellerService {
	return &sellerServiceImpl{
		ledgerRepo:  ledgerRepo,
		productRepo: productRepo,
	}
}

func (s *sellerServiceImpl) GetSellerTotals(ctx context.Context, sellerID string) (*dto.SellerTotalsResponse, error) {
	totals, err := s.ledgerRepo.TotalsForSeller(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("aggregate seller ledger: %w", err)
	}

	return totalsResponse(sellerID, totals), nil
}

func (s *sellerServiceImpl) GetMonthlyTotals(ctx context.Context, sellerID string, windowStart, windowEnd time.Time) (*dto.SellerTotalsResponse, error) {
	totals, err := s.ledgerRepo.TotalsForSellerWindow(ctx, sellerID, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("aggregate seller ledger window: %w", err)
	}

	return totalsResponse(sellerID, totals), nil
}

func (s *sellerServiceImpl) ListProducts(ctx context.Context, sellerID string) ([]*dto.SellerProduct, error) {
	products, err := s.productRepo.FindBySellerID(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list seller products: %w", err)
	}

	out := make([]*dto.SellerProduct, len(products))
	for i, p := range products {
		out[i] = &dto.SellerProduct{
			ProductID:   p.ID,
			Title:       p.Title,
			Price:       p.Price,
			Currency:    p.Currency,
			IsActive:    p.IsActive,
			SalesCount:  p.SalesCount,
			ViewCount:   p.ViewCount,
			Rating:      p.Rating,
			ReviewCount: p.ReviewCount,
		}
	}

	return out, nil
}

func totalsResponse(sellerID string, totals *repository.LedgerTotals) *dto.SellerTotalsResponse {
	return &dto.SellerTotalsResponse{
		SellerID:      sellerID,
		GrossAmount:   totals.GrossAmount,
		FeeAmount:     totals.FeeAmount,
		NetAmount:     totals.NetAmount,
		PendingPayout: totals.PendingPayout,
		SalesCount:    totals.EntryCount,
	}
}
