package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"promptmarket/internal/dto"
	"promptmarket/internal/middleware"
	"promptmarket/internal/service"
)

type ContentHandler struct {
	entitlementService service.EntitlementService
	engagementService  service.EngagementService
}

func NewContentHandler(entitlementService service.EntitlementService, engagementService service.EngagementService) *ContentHandler {
	return &ContentHandler{
		entitlementService: entitlementService,
		engagementService:  engagementService,
	}
}

// GetProduct serves a product page: preview for everyone, full content for
// buyers who hold a purchase. Each hit counts a (suppressed) view.
func (h *ContentHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	productID := c.Param("productID")
	if productID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing product id")
	}

	buyerID := middleware.BuyerID(c)

	content, err := h.entitlementService.Resolve(ctx, buyerID, productID)
	if err != nil {
		return httpError(err)
	}

	viewerID := buyerID
	if viewerID == "" {
		viewerID = c.RealIP()
	}
	if err := h.engagementService.RecordView(ctx, viewerID, productID); err != nil {
		// View counting never blocks content serving.
		c.Logger().Warnf("record view: %v", err)
	}

	return c.JSON(http.StatusOK, content)
}

func (h *ContentHandler) ListReviews(c echo.Context) error {
	ctx := c.Request().Context()

	productID := c.Param("productID")
	if productID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing product id")
	}

	reviews, err := h.engagementService.ListReviews(ctx, productID)
	if err != nil {
		return httpError(err)
	}

	out := make([]*dto.ReviewResponse, len(reviews))
	for i, review := range reviews {
		out[i] = &dto.ReviewResponse{
			ReviewID:   review.ID,
			PurchaseID: review.PurchaseID,
			Rating:     review.Rating,
			Title:      review.Title,
			Content:    review.Content,
			CreatedAt:  review.CreatedAt.UTC().Format(time.RFC3339),
		}
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ContentHandler) PostReview(c echo.Context) error {
	ctx := c.Request().Context()

	buyerID := middleware.BuyerID(c)
	if buyerID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing buyer identity")
	}

	var req dto.ReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.PurchaseID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing purchase_id")
	}

	review, err := h.engagementService.RecordReview(ctx, buyerID, req.PurchaseID, req.Rating, req.Title, req.Content)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, &dto.ReviewResponse{
		ReviewID:   review.ID,
		PurchaseID: review.PurchaseID,
		Rating:     review.Rating,
		Title:      review.Title,
		Content:    review.Content,
	})
}
