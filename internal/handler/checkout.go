package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"promptmarket/internal/dto"
	"promptmarket/internal/middleware"
	"promptmarket/internal/service"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
}

func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

func (h *CheckoutHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	buyerID := middleware.BuyerID(c)
	if buyerID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing buyer identity")
	}

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.ProductID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing product_id")
	}

	result, err := h.checkoutService.CreateOrder(ctx, buyerID, req.ProductID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *CheckoutHandler) CaptureOrder(c echo.Context) error {
	ctx := c.Request().Context()

	orderID := c.Param("orderID")
	if orderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing order id")
	}

	purchase, err := h.checkoutService.CaptureOrder(ctx, orderID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, &dto.CaptureOrderResponse{
		OrderID:     purchase.OrderID,
		PurchaseID:  purchase.ID,
		Amount:      purchase.Amount,
		Currency:    purchase.Currency,
		PurchasedAt: purchase.PurchasedAt.UTC().Format(time.RFC3339),
	})
}

// HandleSuccess is the processor's return URL after buyer approval: the
// query token is the provider order id.
func (h *CheckoutHandler) HandleSuccess(c echo.Context) error {
	ctx := c.Request().Context()

	orderID := c.QueryParam("token")
	if orderID == "" {
		return c.String(http.StatusBadRequest, "missing order token")
	}

	purchase, err := h.checkoutService.CaptureOrder(ctx, orderID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, &dto.CaptureOrderResponse{
		OrderID:    purchase.OrderID,
		PurchaseID: purchase.ID,
		Amount:     purchase.Amount,
		Currency:   purchase.Currency,
	})
}

func (h *CheckoutHandler) PaymentWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	var event dto.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	if event.EventType != "PAYMENT.CAPTURE.COMPLETED" {
		return c.NoContent(http.StatusOK)
	}

	orderID := event.Resource.SupplementaryData.RelatedIDs.OrderID
	if orderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing order_id in webhook payload")
	}

	if err := h.checkoutService.HandleCaptureEvent(ctx, event.ID, event.EventType, orderID); err != nil {
		// Non-2xx makes the processor redeliver; capture stays idempotent.
		return httpError(err)
	}

	return c.NoContent(http.StatusOK)
}
