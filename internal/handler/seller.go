package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"promptmarket/internal/middleware"
	"promptmarket/internal/service"
)

type SellerHandler struct {
	sellerService service.SellerService
}

func NewSellerHandler(sellerService service.SellerService) *SellerHandler {
	return &SellerHandler{
		sellerService: sellerService,
	}
}

func sellerIDFromContext(c echo.Context) (string, error) {
	sellerID := middleware.SellerID(c)
	if sellerID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing seller identity")
	}
	return sellerID, nil
}

func (h *SellerHandler) GetTotals(c echo.Context) error {
	ctx := c.Request().Context()

	sellerID, err := sellerIDFromContext(c)
	if err != nil {
		return err
	}

	totals, err := h.sellerService.GetSellerTotals(ctx, sellerID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, totals)
}

// GetMonthlyTotals aggregates the calendar month given as ?month=YYYY-MM,
// defaulting to the current month.
func (h *SellerHandler) GetMonthlyTotals(c echo.Context) error {
	ctx := c.Request().Context()

	sellerID, err := sellerIDFromContext(c)
	if err != nil {
		return err
	}

	windowStart := time.Now().UTC()
	if month := c.QueryParam("month"); month != "" {
		windowStart, err = time.Parse("2006-01", month)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "month must be YYYY-MM")
		}
	}
	windowStart = time.Date(windowStart.Year(), windowStart.Month(), 1, 0, 0, 0, 0, time.UTC)
	windowEnd := windowStart.AddDate(0, 1, 0)

	totals, err := h.sellerService.GetMonthlyTotals(ctx, sellerID, windowStart, windowEnd)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, totals)
}

func (h *SellerHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	sellerID, err := sellerIDFromContext(c)
	if err != nil {
		return err
	}

	products, err := h.sellerService.ListProducts(ctx, sellerID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, products)
}
