package dto

type CreateOrderRequest struct {
	ProductID string `json:"product_id"`
}

type CreateOrderResponse struct {
	OrderID          string `json:"order_id"`
	OrderApprovalURL string `json:"order_approval_url"`
}

type CaptureOrderResponse struct {
	OrderID     string `json:"order_id"`
	PurchaseID  string `json:"purchase_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	PurchasedAt string `json:"purchased_at"`
}

// ContentResponse always carries the preview; FullContent is set only for
// buyers holding a purchase of the product.
type ContentResponse struct {
	ProductID      string  `json:"product_id"`
	Title          string  `json:"title"`
	Price          int64   `json:"price"`
	Currency       string  `json:"currency"`
	Rating         float64 `json:"rating"`
	ReviewCount    int64   `json:"review_count"`
	PreviewContent string  `json:"preview_content"`
	FullContent    *string `json:"full_content"`
}

type SellerTotalsResponse struct {
	SellerID      string `json:"seller_id"`
	GrossAmount   int64  `json:"gross_amount"`
	FeeAmount     int64  `json:"fee_amount"`
	NetAmount     int64  `json:"net_amount"`
	PendingPayout int64  `json:"pending_payout"`
	SalesCount    int64  `json:"sales_count"`
}

type SellerProduct struct {
	ProductID   string  `json:"product_id"`
	Title       string  `json:"title"`
	Price       int64   `json:"price"`
	Currency    string  `json:"currency"`
	IsActive    bool    `json:"is_active"`
	SalesCount  int64   `json:"sales_count"`
	ViewCount   int64   `json:"view_count"`
	Rating      float64 `json:"rating"`
	ReviewCount int64   `json:"review_count"`
}

type ReviewRequest struct {
	PurchaseID string `json:"purchase_id"`
	Rating     int    `json:"rating"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

type ReviewResponse struct {
	ReviewID   string `json:"review_id"`
	PurchaseID string `json:"purchase_id"`
	Rating     int    `json:"rating"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// WebhookEvent mirrors the processor's callback payload; only the fields
// the capture path needs are decoded.
type WebhookEvent struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		SupplementaryData struct {
			RelatedIDs struct {
				OrderID string `json:"order_id"`
			} `json:"related_ids"`
		} `json:"supplementary_data"`
	} `json:"resource"`
}
