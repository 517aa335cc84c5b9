package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"promptmarket/internal/client"
	"promptmarket/internal/model"
	"promptmarket/internal/repository"
	"promptmarket/internal/suppress"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Serialize access; in-memory sqlite does not tolerate concurrent writers.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Product{},
		&model.Order{},
		&model.Purchase{},
		&model.SellerLedgerEntry{},
		&model.Review{},
		&model.WebhookEvent{},
	))

	return db
}

// fakeProvider is a scriptable stand-in for the payment processor.
type fakeProvider struct {
	createdOrders  atomic.Int64
	captureCalls   atomic.Int64
	lastAmount     atomic.Int64
	createErr      error
	captureErr     error
	captureStatus  client.CaptureStatus
	captureReason  string
	capturedAmount int64
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		captureStatus: client.CaptureSuccess,
	}
}

func (f *fakeProvider) CreateProviderOrder(_ context.Context, amount int64, _ string, _ string) (*client.CreateOrderResult, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.lastAmount.Store(amount)
	n := f.createdOrders.Add(1)
	return &client.CreateOrderResult{
		OrderID:    fmt.Sprintf("provider-order-%d", n),
		ApproveURL: "https://provider.example/approve",
	}, nil
}

func (f *fakeProvider) CaptureProviderOrder(_ context.Context, _ string) (*client.CaptureResult, error) {
	f.captureCalls.Add(1)
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	if f.captureStatus == client.CaptureFailure {
		return &client.CaptureResult{
			Status: client.CaptureFailure,
			Reason: f.captureReason,
		}, nil
	}
	return &client.CaptureResult{
		Status:  client.CaptureSuccess,
		Amount:  f.capturedAmount,
		PayerID: "payer-1",
	}, nil
}

type fixture struct {
	db         *gorm.DB
	provider   *fakeProvider
	checkout   CheckoutService
	entitle    EntitlementService
	engagement EngagementService
	seller     SellerService
	products   repository.ProductRepository
	purchases  repository.PurchaseRepository
	orders     repository.OrderRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	provider := newFakeProvider()
	logger := zap.NewNop()

	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	return &fixture{
		db:       db,
		provider: provider,
		checkout: NewCheckoutService(
			db, provider, "https://market.example",
			productRepo, orderRepo, purchaseRepo, ledgerRepo, webhookEventRepo,
			logger,
		),
		entitle: NewEntitlementService(productRepo, purchaseRepo),
		engagement: NewEngagementService(
			db, productRepo, purchaseRepo, reviewRepo,
			suppress.NewMemorySuppressor(100*time.Millisecond),
			logger,
		),
		seller:    NewSellerService(ledgerRepo, productRepo),
		products:  productRepo,
		purchases: purchaseRepo,
		orders:    orderRepo,
	}
}

func (f *fixture) seedProduct(t *testing.T, id string, price int64) *model.Product {
	t.Helper()

	product := &model.Product{
		ID:             id,
		SellerID:       "seller-1",
		Title:          "Cold outreach prompt pack",
		Price:          price,
		Currency:       "USD",
		IsActive:       true,
		Content:        "full prompt text",
		PreviewContent: "preview text",
	}
	require.NoError(t, f.db.Create(product).Error)
	return product
}

func (f *fixture) reloadProduct(t *testing.T, id string) *model.Product {
	t.Helper()

	var product model.Product
	require.NoError(t, f.db.First(&product, "id = ?", id).Error)
	return &product
}
