package handler

import (
	"github.com/gin-gonic/gin"
	cartapp "github.com/sadsod/storefront/internal/application/cart"
	"github.com/sadsod/storefront/internal/interfaces/http/middleware"
)

// CartHandler serves the shopper's session cart
type CartHandler struct {
	BaseHandler
	cartService *cartapp.CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *cartapp.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// View returns the resolved cart lines and subtotal.
// @Summary      View cart
// @Description  Resolve the session cart against current prices
// @Tags         cart
// @Produce      json
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart [get]
func (h *CartHandler) View(c *gin.Context) {
	cart, err := h.cartService.View(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// Count returns the number of units in the cart.
// @Summary      Count cart units
// @Description  Number of units held in the session cart
// @Tags         cart
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/count [get]
func (h *CartHandler) Count(c *gin.Context) {
	count, err := h.cartService.Count(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"count": count})
}

// Add puts a product in the cart, one unit when no quantity is given.
// @Summary      Add to cart
// @Description  Add units of a product, at most 999 per product
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body cartapp.AddToCartRequest true "Product and optional quantity"
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/items [post]
func (h *CartHandler) Add(c *gin.Context) {
	var req cartapp.AddToCartRequest
	if err := c.ShouldBind(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	cart, err := h.cartService.Add(c.Request.Context(), middleware.GetSessionID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// Update sets the quantities of several lines at once.
// A quantity of zero or less removes the line.
// @Summary      Update cart
// @Description  Replace the cart quantities; zero or less removes a line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body cartapp.UpdateCartRequest true "Product id to quantity"
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart [put]
func (h *CartHandler) Update(c *gin.Context) {
	var req cartapp.UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	cart, err := h.cartService.Update(c.Request.Context(), middleware.GetSessionID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// Remove drops a product from the cart.
// @Summary      Remove from cart
// @Description  Drop a product from the session cart
// @Tags         cart
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/items/{id} [delete]
func (h *CartHandler) Remove(c *gin.Context) {
	productID, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	cart, err := h.cartService.Remove(c.Request.Context(), middleware.GetSessionID(c), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}
