package handler

import (
	"github.com/gin-gonic/gin"
	tradeapp "github.com/sadsod/storefront/internal/application/trade"
	"github.com/sadsod/storefront/internal/interfaces/http/middleware"
)

// CheckoutHandler turns the session cart into an order and lets customers track it
type CheckoutHandler struct {
	BaseHandler
	checkoutService *tradeapp.CheckoutService
	orderService    *tradeapp.OrderService
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *tradeapp.CheckoutService, orderService *tradeapp.OrderService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		orderService:    orderService,
	}
}

// PlaceOrder submits the cart with the customer's delivery details.
// A repeated Idempotency-Key is answered with 409 instead of a second order.
// @Summary      Place order
// @Description  Turn the session cart into an order
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Rejects repeated submissions"
// @Param        request body tradeapp.CheckoutRequest true "Delivery details"
// @Success      201 {object} dto.Response{data=tradeapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /checkout [post]
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	var req tradeapp.CheckoutRequest
	if err := c.ShouldBind(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	order, err := h.checkoutService.PlaceOrder(
		c.Request.Context(),
		middleware.GetSessionID(c),
		c.GetHeader(middleware.IdempotencyKeyHeader),
		req,
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Track looks an order up by number and phone.
// @Summary      Track order
// @Description  Find an order by its number and phone
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.TrackOrderRequest true "Order number and phone"
// @Success      200 {object} dto.Response{data=tradeapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /track [post]
func (h *CheckoutHandler) Track(c *gin.Context) {
	var req tradeapp.TrackOrderRequest
	if err := c.ShouldBind(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	order, err := h.orderService.Track(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
