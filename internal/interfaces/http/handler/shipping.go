package handler

import (
	"github.com/gin-gonic/gin"
	shippingapp "github.com/sadsod/storefront/internal/application/shipping"
)

// ShippingHandler serves regions, delivery quotes and the admin rate table
type ShippingHandler struct {
	BaseHandler
	shippingService *shippingapp.ShippingService
}

// NewShippingHandler creates a new ShippingHandler
func NewShippingHandler(shippingService *shippingapp.ShippingService) *ShippingHandler {
	return &ShippingHandler{shippingService: shippingService}
}

// Regions lists the wilayas in code order.
// @Summary      List regions
// @Description  The 58 wilayas in code order
// @Tags         shipping
// @Produce      json
// @Success      200 {object} dto.Response{data=[]shippingapp.RegionResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /regions [get]
func (h *ShippingHandler) Regions(c *gin.Context) {
	regions, err := h.shippingService.Regions()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, regions)
}

// SubRegions lists the communes configured for a wilaya.
// @Summary      List sub-regions
// @Description  Communes configured for a wilaya
// @Tags         shipping
// @Produce      json
// @Param        region query string true "Wilaya name"
// @Success      200 {object} dto.Response{data=[]shippingapp.SubRegionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /regions/sub-regions [get]
func (h *ShippingHandler) SubRegions(c *gin.Context) {
	subRegions, err := h.shippingService.SubRegions(c.Request.Context(), c.Query("region"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, subRegions)
}

// Quote prices delivery to a region and optional sub-region.
// @Summary      Quote delivery
// @Description  Delivery price for a region and optional sub-region
// @Tags         shipping
// @Produce      json
// @Param        region query string true "Wilaya name"
// @Param        sub_region query string false "Commune"
// @Success      200 {object} dto.Response{data=shippingapp.QuoteResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/quote [get]
func (h *ShippingHandler) Quote(c *gin.Context) {
	var req shippingapp.QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	quote, err := h.shippingService.Quote(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quote)
}

// ListRates returns every configured delivery rate.
// @Summary      List shipping rates
// @Description  Every configured delivery rate
// @Tags         admin-shipping
// @Produce      json
// @Success      200 {object} dto.Response{data=[]shippingapp.RateResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/shipping-rates [get]
func (h *ShippingHandler) ListRates(c *gin.Context) {
	rates, err := h.shippingService.ListRates(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rates)
}

// AddRate creates or replaces the rate for a region and sub-region pair.
// @Summary      Add shipping rate
// @Description  Create or replace the rate for a region and sub-region
// @Tags         admin-shipping
// @Accept       json
// @Produce      json
// @Param        request body shippingapp.RateForm true "Rate"
// @Success      201 {object} dto.Response{data=shippingapp.RateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/shipping-rates [post]
func (h *ShippingHandler) AddRate(c *gin.Context) {
	var form shippingapp.RateForm
	if err := c.ShouldBind(&form); err != nil {
		h.BindingError(c, err)
		return
	}

	rate, err := h.shippingService.AddRate(c.Request.Context(), form)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rate)
}

// DeleteRate removes a delivery rate.
// @Summary      Delete shipping rate
// @Description  Remove a delivery rate
// @Tags         admin-shipping
// @Produce      json
// @Param        id path string true "Rate ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/shipping-rates/{id} [delete]
func (h *ShippingHandler) DeleteRate(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.shippingService.DeleteRate(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListSubRegions returns every configured sub-region.
// @Summary      List all sub-regions
// @Description  Every configured sub-region
// @Tags         admin-shipping
// @Produce      json
// @Success      200 {object} dto.Response{data=[]shippingapp.SubRegionResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/sub-regions [get]
func (h *ShippingHandler) ListSubRegions(c *gin.Context) {
	subRegions, err := h.shippingService.ListSubRegions(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, subRegions)
}

// AddSubRegion registers a commune under a wilaya.
// @Summary      Add sub-region
// @Description  Register a commune under a wilaya
// @Tags         admin-shipping
// @Accept       json
// @Produce      json
// @Param        request body shippingapp.SubRegionForm true "Sub-region"
// @Success      201 {object} dto.Response{data=shippingapp.SubRegionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/sub-regions [post]
func (h *ShippingHandler) AddSubRegion(c *gin.Context) {
	var form shippingapp.SubRegionForm
	if err := c.ShouldBind(&form); err != nil {
		h.BindingError(c, err)
		return
	}

	subRegion, err := h.shippingService.AddSubRegion(c.Request.Context(), form)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, subRegion)
}

// DeleteSubRegion removes a sub-region.
// @Summary      Delete sub-region
// @Description  Remove a sub-region
// @Tags         admin-shipping
// @Produce      json
// @Param        id path string true "Sub-region ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/sub-regions/{id} [delete]
func (h *ShippingHandler) DeleteSubRegion(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.shippingService.DeleteSubRegion(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
