package server

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"promptmarket/internal/handler"
	"promptmarket/internal/middleware"
	"promptmarket/internal/service"
)

type Server struct {
	echo            *echo.Echo
	checkoutHandler *handler.CheckoutHandler
	contentHandler  *handler.ContentHandler
	sellerHandler   *handler.SellerHandler
}

func NewServer(
	checkoutService service.CheckoutService,
	entitlementService service.EntitlementService,
	engagementService service.EngagementService,
	sellerService service.SellerService,
) *Server {
	e := echo.New()

	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.Identity())

	s := &Server{
		echo:            e,
		checkoutHandler: handler.NewCheckoutHandler(checkoutService),
		contentHandler:  handler.NewContentHandler(entitlementService, engagementService),
		sellerHandler:   handler.NewSellerHandler(sellerService),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- content --------
	api.GET("/products/:productID", s.contentHandler.GetProduct)
	api.GET("/products/:productID/reviews", s.contentHandler.ListReviews)
	api.POST("/reviews", s.contentHandler.PostReview)

	// -------- checkout --------
	checkout := api.Group("/checkout")
	checkout.POST("/orders", s.checkoutHandler.CreateOrder)
	checkout.POST("/orders/:orderID/capture", s.checkoutHandler.CaptureOrder)
	checkout.GET("/success", s.checkoutHandler.HandleSuccess)
	checkout.POST("/webhook", s.checkoutHandler.PaymentWebhook)

	// -------- seller --------
	seller := api.Group("/seller")
	seller.GET("/totals", s.sellerHandler.GetTotals)
	seller.GET("/totals/monthly", s.sellerHandler.GetMonthlyTotals)
	seller.GET("/products", s.sellerHandler.ListProducts)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
