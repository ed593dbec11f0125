package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/sadsod/storefront/internal/application/catalog"
)

// CatalogHandler serves the public product catalog
type CatalogHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(productService *catalogapp.ProductService) *CatalogHandler {
	return &CatalogHandler{productService: productService}
}

// Home returns featured products, the latest arrivals and the category list.
// @Summary      Storefront home
// @Description  Featured products, latest arrivals and categories
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=catalogapp.HomeResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /home [get]
func (h *CatalogHandler) Home(c *gin.Context) {
	home, err := h.productService.Home(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, home)
}

// List searches the catalog by text and category.
// @Summary      List products
// @Description  Search the catalog by text and category
// @Tags         catalog
// @Produce      json
// @Param        q query string false "Search text"
// @Param        cat query string false "Category"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(12)
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products [get]
func (h *CatalogHandler) List(c *gin.Context) {
	var query catalogapp.ProductListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.productService.List(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessPage(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetBySlug returns a single product.
// @Summary      Get product
// @Description  Retrieve a product by its slug
// @Tags         catalog
// @Produce      json
// @Param        slug path string true "Product slug"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /products/{slug} [get]
func (h *CatalogHandler) GetBySlug(c *gin.Context) {
	product, err := h.productService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Categories lists the distinct product categories.
// @Summary      List categories
// @Description  Distinct product categories
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]string}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /categories [get]
func (h *CatalogHandler) Categories(c *gin.Context) {
	categories, err := h.productService.Categories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}
