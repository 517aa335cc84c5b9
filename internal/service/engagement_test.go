package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptmarket/internal/model"
)

func (f *fixture) seedPurchase(t *testing.T, id, buyerID, productID string) *model.Purchase {
	t.Helper()

	purchase := &model.Purchase{
		ID:          id,
		OrderID:     "order-" + id,
		BuyerID:     buyerID,
		ProductID:   productID,
		Amount:      499,
		Currency:    "USD",
		PurchasedAt: time.Now(),
	}
	require.NoError(t, f.db.Create(purchase).Error)
	return purchase
}

func TestRecordViewSuppressesQuickRepeats(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "prompt-1", 499)
	ctx := context.Background()

	// Double-fired page render: only the first call counts.
	require.NoError(t, f.engagement.RecordView(ctx, "viewer-1", "prompt-1"))
	require.NoError(t, f.engagement.RecordView(ctx, "viewer-1", "prompt-1"))
	assert.Equal(t, int64(1), f.reloadProduct(t, "prompt-1").ViewCount)

	// A different viewer counts independently.
	require.NoError(t, f.engagement.RecordView(ctx, "viewer-2", "prompt-1"))
	assert.Equal(t, int64(2), f.reloadProduct(t, "prompt-1").ViewCount)

	// After the window passes the same viewer counts again.
	time.Sleep(120 * time.Millisecond)
	require.NoError(t, f.engagement.RecordView(ctx, "viewer-1", "prompt-1"))
	assert.Equal(t, int64(3), f.reloadProduct(t, "prompt-1").ViewCount)
}

func TestRecordReviewUpdatesRatingAggregate(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "prompt-1", 499)
	ctx := context.Background()

	ratings := []int{5, 3, 4, 1}
	for i, rating := range ratings {
		buyerID := fmt.Sprintf("buyer-%d", i)
		purchase := f.seedPurchase(t, fmt.Sprintf("purchase-%d", i), buyerID, "prompt-1")

		_, err := f.engagement.RecordReview(ctx, buyerID, purchase.ID, rating, "title", "content")
		require.NoError(t, err)
	}

	product := f.reloadProduct(t, "prompt-1")
	assert.Equal(t, int64(len(ratings)), product.ReviewCount)
	assert.InDelta(t, 3.25, product.Rating, 1e-9) // mean of 5,3,4,1
}

func TestConcurrentReviewsKeepAggregateConsistent(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "prompt-1", 499)
	ctx := context.Background()

	// Two buyers reviewing the same product at the same time: a recompute
	// running against a snapshot that misses the other insert would leave
	// ReviewCount at 1. The product-row lock forces the second recompute
	// to read the full committed set.
	ratings := []int{5, 1, 4, 2}
	for i := range ratings {
		f.seedPurchase(t, fmt.Sprintf("purchase-%d", i), fmt.Sprintf("buyer-%d", i), "prompt-1")
	}

	var wg sync.WaitGroup
	errs := make([]error, len(ratings))
	for i, rating := range ratings {
		wg.Add(1)
		go func(i, rating int) {
			defer wg.Done()
			_, errs[i] = f.engagement.RecordReview(ctx,
				fmt.Sprintf("buyer-%d", i), fmt.Sprintf("purchase-%d", i), rating, "t", "c")
		}(i, rating)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	product := f.reloadProduct(t, "prompt-1")
	assert.Equal(t, int64(len(ratings)), product.ReviewCount)
	assert.InDelta(t, 3.0, product.Rating, 1e-9) // mean of 5,1,4,2
}

func TestListReviews(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "prompt-1", 499)
	f.seedProduct(t, "prompt-2", 999)
	ctx := context.Background()

	for i, rating := range []int{5, 3} {
		buyerID := fmt.Sprintf("buyer-%d", i)
		purchase := f.seedPurchase(t, fmt.Sprintf("purchase-%d", i), buyerID, "prompt-1")
		_, err := f.engagement.RecordReview(ctx, buyerID, purchase.ID, rating, "title", "content")
		require.NoError(t, err)
	}

	reviews, err := f.engagement.ListReviews(ctx, "prompt-1")
	require.NoError(t, err)
	require.Len(t, reviews, 2)

	// Reviews of other products stay out.
	reviews, err = f.engagement.ListReviews(ctx, "prompt-2")
	require.NoError(t, err)
	assert.Empty(t, reviews)

	_, err = f.engagement.ListReviews(ctx, "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestRecordReviewRequiresPurchase(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "prompt-1", 499)

	_, err := f.engagement.RecordReview(context.Background(), "buyer-1", "no-such-purchase", 5, "t", "c")
	assert.ErrorIs(t, err, ErrPurchaseNotFound)
}

func TestRecordReviewRejectsOtherBuyers(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "prompt-1", 499)
	purchase := f.seedPurchase(t, "purchase-1", "buyer-1", "prompt-1")

	_, err := f.engagement.RecordReview(context.Background(), "buyer-2", purchase.ID, 5, "t", "c")
	assert.ErrorIs(t, err, ErrReviewNotAllowed)
}

func TestRecordReviewOncePerPurchase(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "prompt-1", 499)
	purchase := f.seedPurchase(t, "purchase-1", "buyer-1", "prompt-1")
	ctx := context.Background()

	_, err := f.engagement.RecordReview(ctx, "buyer-1", purchase.ID, 5, "t", "c")
	require.NoError(t, err)

	_, err = f.engagement.RecordReview(ctx, "buyer-1", purchase.ID, 4, "t", "c")
	assert.ErrorIs(t, err, ErrDuplicateReview)

	// The failed duplicate must not disturb the aggregate.
	product := f.reloadProduct(t, "prompt-1")
	assert.Equal(t, int64(1), product.ReviewCount)
	assert.InDelta(t, 5.0, product.Rating, 1e-9)
}

func TestRecordReviewInvalidRating(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "prompt-1", 499)
	purchase := f.seedPurchase(t, "purchase-1", "buyer-1", "prompt-1")

	for _, rating := range []int{0, -1, 6} {
		_, err := f.engagement.RecordReview(context.Background(), "buyer-1", purchase.ID, rating, "t", "c")
		assert.ErrorIs(t, err, ErrInvalidRating)
	}
}
