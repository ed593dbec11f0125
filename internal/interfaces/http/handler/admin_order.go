package handler

import (
	"github.com/gin-gonic/gin"
	tradeapp "github.com/sadsod/storefront/internal/application/trade"
)

// AdminOrderHandler serves the back-office order views
type AdminOrderHandler struct {
	BaseHandler
	orderService *tradeapp.OrderService
}

// NewAdminOrderHandler creates a new AdminOrderHandler
func NewAdminOrderHandler(orderService *tradeapp.OrderService) *AdminOrderHandler {
	return &AdminOrderHandler{orderService: orderService}
}

// Dashboard returns today's figures and the most recent orders.
// @Summary      Dashboard
// @Description  Today's figures and the most recent orders
// @Tags         admin-orders
// @Produce      json
// @Success      200 {object} dto.Response{data=tradeapp.DashboardResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/dashboard [get]
func (h *AdminOrderHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.orderService.Dashboard(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dashboard)
}

// List filters orders by status and region.
// @Summary      List orders
// @Description  Filter orders by status, region and number or phone prefix
// @Tags         admin-orders
// @Produce      json
// @Param        status query string false "Order status"
// @Param        region query string false "Wilaya name"
// @Param        q query string false "Order number or phone prefix"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        sort_by query string false "Sort field"
// @Param        sort_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} dto.Response{data=[]tradeapp.OrderListItemResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders [get]
func (h *AdminOrderHandler) List(c *gin.Context) {
	var query tradeapp.OrderListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.orderService.List(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessPage(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get returns an order with its items.
// @Summary      Get order
// @Description  An order with its items
// @Tags         admin-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=tradeapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders/{id} [get]
func (h *AdminOrderHandler) Get(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateStatus moves an order to any known status.
// @Summary      Update order status
// @Description  Move an order to any known status
// @Tags         admin-orders
// @Accept       json
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Param        request body tradeapp.UpdateStatusRequest true "New status"
// @Success      200 {object} dto.Response{data=tradeapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders/{id}/status [put]
func (h *AdminOrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req tradeapp.UpdateStatusRequest
	if err := c.ShouldBind(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Statuses lists the status vocabulary with display labels.
// @Summary      List order statuses
// @Description  Status vocabulary with display labels
// @Tags         admin-orders
// @Produce      json
// @Success      200 {object} dto.Response{data=[]tradeapp.StatusResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/orders/statuses [get]
func (h *AdminOrderHandler) Statuses(c *gin.Context) {
	h.Success(c, h.orderService.Statuses())
}
