package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"promptmarket/internal/model"
)

// LedgerTotals is an aggregation over a seller's ledger entries. All
// amounts are cents.
type LedgerTotals struct {
	GrossAmount   int64
	FeeAmount     int64
	NetAmount     int64
	PendingPayout int64
	EntryCount    int64
}

type LedgerRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *model.SellerLedgerEntry) error
	TotalsForSeller(ctx context.Context, sellerID string) (*LedgerTotals, error)
	TotalsForSellerWindow(ctx context.Context, sellerID string, windowStart, windowEnd time.Time) (*LedgerTotals, error)
}

type ledgerRepoImpl struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepoImpl{
		db: db,
	}
}

func (r *ledgerRepoImpl) Create(ctx context.Context, tx *gorm.DB, entry *model.SellerLedgerEntry) error {
	return tx.WithContext(ctx).Create(entry).Error
}

func (r *ledgerRepoImpl) TotalsForSeller(ctx context.Context, sellerID string) (*LedgerTotals, error) {
	return r.totals(r.db.WithContext(ctx).Model(&model.SellerLedgerEntry{}).
		Where("seller_id = ?", sellerID))
}

func (r *ledgerRepoImpl) TotalsForSellerWindow(ctx context.Context, sellerID string, windowStart, windowEnd time.Time) (*LedgerTotals, error) {
	return r.totals(r.db.WithContext(ctx).Model(&model.SellerLedgerEntry{}).
		Where("seller_id = ?", sellerID).
		Where("created_at >= ? AND created_at < ?", windowStart, windowEnd))
}

func (r *ledgerRepoImpl) totals(query *gorm.DB) (*LedgerTotals, error) {
	var totals LedgerTotals
	err := query.
		Select(`
			COALESCE(SUM(gross_amount), 0) AS gross_amount,
			COALESCE(SUM(platform_fee_amount), 0) AS fee_amount,
			COALESCE(SUM(net_amount), 0) AS net_amount,
			COALESCE(SUM(CASE WHEN paid_out THEN 0 ELSE net_amount END), 0) AS pending_payout,
			COUNT(*) AS entry_count
		`).
		Scan(&totals).Error

	if err != nil {
		return nil, err
	}

	return &totals, nil
}
