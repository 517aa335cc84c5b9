package model

import "time"

// All monetary amounts are integer minor units (cents).

type Product struct {
	ID             string  `gorm:"primaryKey;size:64;not null"`
	SellerID       string  `gorm:"size:64;index;not null"`
	Title          string  `gorm:"size:256;not null"`
	Price          int64   `gorm:"not null"`
	Currency       string  `gorm:"size:8;not null"`
	IsActive       bool    `gorm:"not null;default:true"`
	SalesCount     int64   `gorm:"not null;default:0"`
	ViewCount      int64   `gorm:"not null;default:0"`
	Rating         float64 `gorm:"not null;default:0"`
	ReviewCount    int64   `gorm:"not null;default:0"`
	Content        string  `gorm:"type:text"`
	PreviewContent string  `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type OrderStatus string

const (
	OrderInitiated OrderStatus = "INITIATED"
	OrderApproved  OrderStatus = "APPROVED"
	OrderCaptured  OrderStatus = "CAPTURED"
	OrderFailed    OrderStatus = "FAILED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Terminal reports whether the status admits no further transition.
func (s OrderStatus) Terminal() bool {
	return s == OrderCaptured || s == OrderFailed || s == OrderCancelled
}

type Order struct {
	ID        string      `gorm:"primaryKey;size:64;not null"` // provider order id
	ProductID string      `gorm:"size:64;index;not null"`
	BuyerID   string      `gorm:"size:64;index;not null"`
	Amount    int64       `gorm:"not null"`
	Currency  string      `gorm:"size:8;not null"`
	Status    OrderStatus `gorm:"size:32;index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Purchase is the authoritative proof of entitlement. The unique index on
// OrderID is what makes captureOrder idempotent under concurrent retries.
type Purchase struct {
	ID          string `gorm:"primaryKey;size:64;not null"`
	OrderID     string `gorm:"size:64;uniqueIndex;not null"`
	BuyerID     string `gorm:"size:64;index:idx_purchases_buyer_product;not null"`
	ProductID   string `gorm:"size:64;index:idx_purchases_buyer_product;not null"`
	Amount      int64  `gorm:"not null"`
	Currency    string `gorm:"size:8;not null"`
	PurchasedAt time.Time
}

// SellerLedgerEntry records the revenue split for exactly one purchase.
// NetAmount is always GrossAmount - PlatformFeeAmount, never gross*0.8,
// so the split identity holds at the cent.
type SellerLedgerEntry struct {
	ID                string `gorm:"primaryKey;size:64;not null"`
	SellerID          string `gorm:"size:64;index;not null"`
	PurchaseID        string `gorm:"size:64;uniqueIndex;not null"`
	GrossAmount       int64  `gorm:"not null"`
	PlatformFeeAmount int64  `gorm:"not null"`
	NetAmount         int64  `gorm:"not null"`
	Currency          string `gorm:"size:8;not null"`
	PaidOut           bool   `gorm:"not null;default:false"`
	CreatedAt         time.Time
}

type Review struct {
	ID         string `gorm:"primaryKey;size:64;not null"`
	PurchaseID string `gorm:"size:64;uniqueIndex;not null"` // one review per purchase
	Rating     int    `gorm:"not null"`
	Title      string `gorm:"size:256"`
	Content    string `gorm:"type:text"`
	CreatedAt  time.Time
}

// WebhookEvent dedups processor callbacks under at-least-once delivery.
type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
