package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/sadsod/storefront/internal/application/catalog"
)

// AdminProductHandler manages the catalog from the back office
type AdminProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
	imageService   *catalogapp.ImageService
}

// NewAdminProductHandler creates a new AdminProductHandler
func NewAdminProductHandler(productService *catalogapp.ProductService, imageService *catalogapp.ImageService) *AdminProductHandler {
	return &AdminProductHandler{
		productService: productService,
		imageService:   imageService,
	}
}

// List pages through every product, newest first unless sorted otherwise.
// @Summary      List products (admin)
// @Description  Page through every product
// @Tags         admin-products
// @Produce      json
// @Param        q query string false "Search text"
// @Param        cat query string false "Category"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(12)
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products [get]
func (h *AdminProductHandler) List(c *gin.Context) {
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

// Get returns a product by id.
// @Summary      Get product (admin)
// @Description  Retrieve a product by its ID
// @Tags         admin-products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id} [get]
func (h *AdminProductHandler) Get(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create adds a product. Numeric fields arrive as text and are parsed strictly.
// @Summary      Create product
// @Description  Add a product; numeric fields are parsed strictly
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.ProductForm true "Product"
// @Success      201 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products [post]
func (h *AdminProductHandler) Create(c *gin.Context) {
	var form catalogapp.ProductForm
	if err := c.ShouldBind(&form); err != nil {
		h.BindingError(c, err)
		return
	}

	product, err := h.productService.Create(c.Request.Context(), form)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update replaces a product's attributes.
// @Summary      Update product
// @Description  Replace a product's attributes
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body catalogapp.ProductForm true "Product"
// @Success      200 {object} dto.Response{data=catalogapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id} [put]
func (h *AdminProductHandler) Update(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var form catalogapp.ProductForm
	if err := c.ShouldBind(&form); err != nil {
		h.BindingError(c, err)
		return
	}

	product, err := h.productService.Update(c.Request.Context(), id, form)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete removes a product. Existing orders keep their line snapshots.
// @Summary      Delete product
// @Description  Remove a product; orders keep their line snapshots
// @Tags         admin-products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/{id} [delete]
func (h *AdminProductHandler) Delete(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ImageUploadURL issues a presigned URL the browser uploads the product image to.
// @Summary      Image upload URL
// @Description  Presigned URL the browser uploads a product image to
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.ImageUploadRequest true "Image file name and type"
// @Success      201 {object} dto.Response{data=catalogapp.ImageUploadResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /admin/products/image-upload-url [post]
func (h *AdminProductHandler) ImageUploadURL(c *gin.Context) {
	var req catalogapp.ImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	upload, err := h.imageService.RequestUploadURL(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, upload)
}
