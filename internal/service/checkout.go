package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"promptmarket/internal/client"
	"promptmarket/internal/dto"
	"promptmarket/internal/model"
	"promptmarket/internal/repository"
)

// platformFeePercent is the marketplace cut of every sale.
const platformFeePercent = 20

type CheckoutService interface {
	// CreateOrder mints a provider order at the product's current price and
	// persists it as INITIATED. The price is always read from the product
	// row, never taken from the client.
	CreateOrder(ctx context.Context, buyerID, productID string) (*dto.CreateOrderResponse, error)
	// CaptureOrder finalizes payment for an order and commits entitlement,
	// ledger entry and sales counter as one transaction. Safe to re-invoke
	// with the same order id any number of times.
	CaptureOrder(ctx context.Context, orderID string) (*model.Purchase, error)
	// HandleCaptureEvent consumes a processor capture-completed callback.
	// Delivery is at-least-once; duplicates are dropped by event id.
	HandleCaptureEvent(ctx context.Context, eventID, eventType, orderID string) error
}

type checkoutServiceImpl struct {
	db               *gorm.DB
	provider         client.ProviderClient
	serviceBaseURL   string
	productRepo      repository.ProductRepository
	orderRepo        repository.OrderRepository
	purchaseRepo     repository.PurchaseRepository
	ledgerRepo       repository.LedgerRepository
	webhookEventRepo repository.WebhookEventRepository
	logger           *zap.Logger
}

func NewCheckoutService(
	db *gorm.DB,
	provider client.ProviderClient,
	serviceBaseURL string,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	purchaseRepo repository.PurchaseRepository,
	ledgerRepo repository.LedgerRepository,
	webhookEventRepo repository.WebhookEventRepository,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutServiceImpl{
		db:               db,
		provider:         provider,
		serviceBaseURL:   serviceBaseURL,
		productRepo:      productRepo,
		orderRepo:        orderRepo,
		purchaseRepo:     purchaseRepo,
		ledgerRepo:       ledgerRepo,
		webhookEventRepo: webhookEventRepo,
		logger:           logger,
	}
}

func (s *checkoutServiceImpl) CreateOrder(ctx context.Context, buyerID, productID string) (*dto.CreateOrderResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	if !product.IsActive {
		return nil, ErrProductInactive
	}

	result, err := s.provider.CreateProviderOrder(ctx, product.Price, product.Currency, s.serviceBaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: create order: %v", ErrPaymentProvider, err)
	}

	err = s.orderRepo.Create(ctx, &model.Order{
		ID:        result.OrderID,
		ProductID: product.ID,
		BuyerID:   buyerID,
		Amount:    product.Price,
		Currency:  product.Currency,
		Status:    model.OrderInitiated,
	})
	if err != nil {
		return nil, fmt.Errorf("store order: %w", err)
	}

	s.logger.Info("order created",
		zap.String("order_id", result.OrderID),
		zap.String("product_id", product.ID),
		zap.Int64("amount", product.Price),
	)

	return &dto.CreateOrderResponse{
		OrderID:          result.OrderID,
		OrderApprovalURL: result.ApproveURL,
	}, nil
}

func (s *checkoutServiceImpl) CaptureOrder(ctx context.Context, orderID string) (*model.Purchase, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}

	// Idempotency guard: a captured order already has its purchase.
	if order.Status == model.OrderCaptured {
		return s.purchaseRepo.FindByOrderID(ctx, orderID)
	}
	if order.Status.Terminal() {
		return nil, ErrOrderTerminal
	}

	result, err := s.provider.CaptureProviderOrder(ctx, orderID)
	if err != nil {
		// Unknown outcome (timeout, transport failure). The order stays
		// INITIATED; re-invoking CaptureOrder later is the recovery path.
		return nil, fmt.Errorf("%w: capture: %v", ErrPaymentProvider, err)
	}

	if result.Status != client.CaptureSuccess {
		if err := s.orderRepo.MarkFailed(ctx, orderID); err != nil {
			return nil, fmt.Errorf("mark order failed: %w", err)
		}
		s.logger.Warn("capture declined",
			zap.String("order_id", orderID),
			zap.String("reason", result.Reason),
		)
		return nil, &CaptureFailedError{OrderID: orderID, Reason: result.Reason}
	}

	purchase, err := s.commitCapture(ctx, order)
	if err != nil {
		return nil, err
	}

	s.logger.Info("order captured",
		zap.String("order_id", orderID),
		zap.String("purchase_id", purchase.ID),
	)

	return purchase, nil
}

// commitCapture performs the one mandatory multi-row atomic commit: order
// transition, purchase, ledger entry and sales counter succeed or fail
// together. A duplicate-key violation on the purchase means a concurrent
// capture won; that path discards its transaction and returns the winner.
func (s *checkoutServiceImpl) commitCapture(ctx context.Context, order *model.Order) (*model.Purchase, error) {
	purchase := &model.Purchase{
		ID:          uuid.NewString(),
		OrderID:     order.ID,
		BuyerID:     order.BuyerID,
		ProductID:   order.ProductID,
		Amount:      order.Amount,
		Currency:    order.Currency,
		PurchasedAt: time.Now(),
	}

	product, err := s.productRepo.FindByID(ctx, order.ProductID)
	if err != nil {
		return nil, fmt.Errorf("find product for ledger: %w", err)
	}

	fee, net := SplitRevenue(order.Amount)
	entry := &model.SellerLedgerEntry{
		ID:                uuid.NewString(),
		SellerID:          product.SellerID,
		PurchaseID:        purchase.ID,
		GrossAmount:       order.Amount,
		PlatformFeeAmount: fee,
		NetAmount:         net,
		Currency:          order.Currency,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := s.orderRepo.MarkCaptured(ctx, tx, order.ID)
		if err != nil {
			return fmt.Errorf("mark order captured: %w", err)
		}
		if rows == 0 {
			return gorm.ErrDuplicatedKey
		}

		if err := s.purchaseRepo.Create(ctx, tx, purchase); err != nil {
			return fmt.Errorf("store purchase: %w", err)
		}

		if err := s.ledgerRepo.Create(ctx, tx, entry); err != nil {
			return fmt.Errorf("store ledger entry: %w", err)
		}

		if err := s.productRepo.IncrementSalesCount(ctx, tx, order.ProductID); err != nil {
			return fmt.Errorf("increment sales count: %w", err)
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Concurrent duplicate capture; return the winner's purchase.
			return s.purchaseRepo.FindByOrderID(ctx, order.ID)
		}
		return nil, err
	}

	return purchase, nil
}

func (s *checkoutServiceImpl) HandleCaptureEvent(ctx context.Context, eventID, eventType, orderID string) error {
	// CaptureOrder is idempotent on its own; the event table only exists
	// so that delivered events are recorded once and transient capture
	// errors stay retryable (the event is marked only after a settled
	// outcome, so the processor redelivers on failure).
	if _, err := s.CaptureOrder(ctx, orderID); err != nil {
		var captureFailed *CaptureFailedError
		settled := errors.Is(err, ErrOrderTerminal) || errors.As(err, &captureFailed)
		if !settled {
			return fmt.Errorf("capture from webhook: %w", err)
		}
		// A terminal or declined order can never be captured; acknowledge
		// the delivery instead of having it redelivered forever.
		s.logger.Warn("capture event for settled order acknowledged",
			zap.String("event_id", eventID),
			zap.String("order_id", orderID),
			zap.Error(err),
		)
	}

	firstSeen, err := s.webhookEventRepo.MarkProcessed(ctx, eventID, eventType)
	if err != nil {
		return fmt.Errorf("record webhook event: %w", err)
	}
	if !firstSeen {
		s.logger.Debug("duplicate webhook delivery", zap.String("event_id", eventID))
	}

	return nil
}

// SplitRevenue divides a gross amount in cents into the platform fee,
// rounded half-up, and the seller's net remainder. net + fee == gross
// always holds exactly.
func SplitRevenue(gross int64) (fee, net int64) {
	fee = (gross*platformFeePercent + 50) / 100
	net = gross - fee
	return fee, net
}
