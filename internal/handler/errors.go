package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"promptmarket/internal/service"
)

// httpError translates the service error taxonomy at the HTTP edge. Raw
// processor or store errors never reach the client.
func httpError(err error) error {
	var captureFailed *service.CaptureFailedError
	switch {
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrPurchaseNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrProductInactive),
		errors.Is(err, service.ErrOrderTerminal),
		errors.Is(err, service.ErrReviewNotAllowed):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidRating):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrDuplicateReview):
		return echo.NewHTTPError(http.StatusConflict, "purchase already reviewed")
	case errors.As(err, &captureFailed):
		return echo.NewHTTPError(http.StatusPaymentRequired, "payment failed: "+captureFailed.Reason)
	case errors.Is(err, service.ErrPaymentProvider):
		// Unknown outcome; the client may safely retry the same call.
		return echo.NewHTTPError(http.StatusServiceUnavailable, "payment provider unavailable, please retry")
	default:
		return err
	}
}
