package middleware

import "github.com/labstack/echo/v4"

const (
	BuyerIDKey  = "buyer_id"
	SellerIDKey = "seller_id"
)

// Identity copies the resolved identities supplied by the upstream auth
// layer into the request context. The engine never verifies tokens; it
// trusts the gateway-resolved ids.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(BuyerIDKey, c.Request().Header.Get("X-Buyer-Id"))
			c.Set(SellerIDKey, c.Request().Header.Get("X-Seller-Id"))
			return next(c)
		}
	}
}

func BuyerID(c echo.Context) string {
	id, _ := c.Get(BuyerIDKey).(string)
	return id
}

func SellerID(c echo.Context) string {
	id, _ := c.Get(SellerIDKey).(string)
	return id
}
