package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptmarket/internal/model"
)

func (f *fixture) seedLedgerEntry(t *testing.T, sellerID string, gross int64, createdAt time.Time, paidOut bool) {
	t.Helper()

	fee, net := SplitRevenue(gross)
	require.NoError(t, f.db.Create(&model.SellerLedgerEntry{
		ID:                fmt.Sprintf("entry-%s-%d-%d", sellerID, gross, createdAt.UnixNano()),
		SellerID:          sellerID,
		PurchaseID:        fmt.Sprintf("purchase-%s-%d-%d", sellerID, gross, createdAt.UnixNano()),
		GrossAmount:       gross,
		PlatformFeeAmount: fee,
		NetAmount:         net,
		Currency:          "USD",
		PaidOut:           paidOut,
		CreatedAt:         createdAt,
	}).Error)
}

func TestGetSellerTotals(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()

	f.seedLedgerEntry(t, "seller-1", 499, now, false)
	f.seedLedgerEntry(t, "seller-1", 999, now, true)
	f.seedLedgerEntry(t, "seller-1", 1250, now, false)
	f.seedLedgerEntry(t, "seller-2", 5000, now, false)

	totals, err := f.seller.GetSellerTotals(context.Background(), "seller-1")
	require.NoError(t, err)

	assert.Equal(t, int64(499+999+1250), totals.GrossAmount)
	assert.Equal(t, int64(100+200+250), totals.FeeAmount)
	assert.Equal(t, int64(399+799+1000), totals.NetAmount)
	// Pending payout excludes entries already paid out.
	assert.Equal(t, int64(399+1000), totals.PendingPayout)
	assert.Equal(t, int64(3), totals.SalesCount)

	// The split identity holds in aggregate, not only per entry.
	assert.Equal(t, totals.GrossAmount, totals.FeeAmount+totals.NetAmount)
}

func TestGetSellerTotalsEmpty(t *testing.T) {
	f := newFixture(t)

	totals, err := f.seller.GetSellerTotals(context.Background(), "seller-without-sales")
	require.NoError(t, err)
	assert.Zero(t, totals.GrossAmount)
	assert.Zero(t, totals.PendingPayout)
	assert.Zero(t, totals.SalesCount)
}

func TestGetMonthlyTotalsWindow(t *testing.T) {
	f := newFixture(t)

	windowStart := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	windowEnd := windowStart.AddDate(0, 1, 0)

	f.seedLedgerEntry(t, "seller-1", 499, windowStart.Add(24*time.Hour), false)
	f.seedLedgerEntry(t, "seller-1", 999, windowEnd.Add(-time.Second), false)
	// Outside the window, both sides.
	f.seedLedgerEntry(t, "seller-1", 1250, windowStart.Add(-time.Second), false)
	f.seedLedgerEntry(t, "seller-1", 1250, windowEnd, false)

	totals, err := f.seller.GetMonthlyTotals(context.Background(), "seller-1", windowStart, windowEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(499+999), totals.GrossAmount)
	assert.Equal(t, int64(2), totals.SalesCount)
}

func TestLedgerIdentityHoldsForEveryCapturedOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i, price := range []int64{1, 99, 499, 1999, 12345} {
		productID := fmt.Sprintf("prompt-%d", i)
		f.seedProduct(t, productID, price)
		f.provider.capturedAmount = price

		resp, err := f.checkout.CreateOrder(ctx, "buyer-1", productID)
		require.NoError(t, err)
		_, err = f.checkout.CaptureOrder(ctx, resp.OrderID)
		require.NoError(t, err)
	}

	var entries []model.SellerLedgerEntry
	require.NoError(t, f.db.Find(&entries).Error)
	require.Len(t, entries, 5)
	for _, entry := range entries {
		assert.Equal(t, entry.GrossAmount, entry.PlatformFeeAmount+entry.NetAmount)
		expectedFee, _ := SplitRevenue(entry.GrossAmount)
		assert.Equal(t, expectedFee, entry.PlatformFeeAmount)
	}
}

func TestListProducts(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "prompt-1", 499)
	f.seedProduct(t, "prompt-2", 999)

	require.NoError(t, f.db.Model(&model.Product{ID: "prompt-1"}).
		Updates(map[string]interface{}{"sales_count": 7, "rating": 4.5, "review_count": 2}).Error)

	products, err := f.seller.ListProducts(context.Background(), "seller-1")
	require.NoError(t, err)
	require.Len(t, products, 2)

	byID := map[string]bool{}
	for _, p := range products {
		byID[p.ProductID] = true
		if p.ProductID == "prompt-1" {
			assert.Equal(t, int64(7), p.SalesCount)
			assert.Equal(t, 4.5, p.Rating)
			assert.Equal(t, int64(2), p.ReviewCount)
		}
	}
	assert.True(t, byID["prompt-1"])
	assert.True(t, byID["prompt-2"])
}
