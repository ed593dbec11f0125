package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/sadsod/storefront/internal/domain/catalog"
	"github.com/sadsod/storefront/internal/domain/shared"
)

// ProductForm is the admin product form. Numeric fields arrive as strings
// and are parsed strictly so a typo never becomes a zero price.
type ProductForm struct {
	Name        string `json:"name" form:"name" binding:"max=140"`
	Slug        string `json:"slug" form:"slug" binding:"max=160"`
	Category    string `json:"category" form:"category" binding:"max=60"`
	Price       string `json:"price" form:"price"`
	OldPrice    string `json:"old_price" form:"old_price"`
	Stock       string `json:"stock" form:"stock"`
	Description string `json:"description" form:"description" binding:"max=5000"`
	Image       string `json:"image" form:"image" binding:"max=500"`
	Featured    bool   `json:"featured" form:"featured"`
}

// Attributes parses the form into product attributes.
// Price is required; a blank stock means zero and a blank old price means none.
func (f ProductForm) Attributes() (catalog.ProductAttributes, error) {
	price, err := shared.ParseNonNegativeInt("price", f.Price)
	if err != nil {
		return catalog.ProductAttributes{}, err
	}
	oldPrice, err := shared.ParseOptionalInt("old_price", f.OldPrice)
	if err != nil {
		return catalog.ProductAttributes{}, err
	}
	var stock int64
	if !shared.Blank(f.Stock) {
		stock, err = shared.ParseNonNegativeInt("stock", f.Stock)
		if err != nil {
			return catalog.ProductAttributes{}, err
		}
	}

	return catalog.ProductAttributes{
		Name:        f.Name,
		Slug:        f.Slug,
		Category:    f.Category,
		Price:       price,
		OldPrice:    oldPrice,
		Stock:       stock,
		Description: f.Description,
		Image:       f.Image,
		Featured:    f.Featured,
	}, nil
}

// ProductListQuery is a catalog listing request
type ProductListQuery struct {
	Query    string `form:"q" binding:"max=100"`
	Category string `form:"cat" binding:"max=60"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortBy   string `form:"sort_by"`
	SortDir  string `form:"sort_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Category    string    `json:"category"`
	Price       int64     `json:"price"`
	OldPrice    *int64    `json:"old_price,omitempty"`
	OnSale      bool      `json:"on_sale"`
	Stock       int64     `json:"stock"`
	InStock     bool      `json:"in_stock"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	ImageURL    string    `json:"image_url,omitempty"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HomeResponse is the storefront landing page content
type HomeResponse struct {
	Featured   []ProductResponse `json:"featured"`
	Latest     []ProductResponse `json:"latest"`
	Categories []string          `json:"categories"`
}

// ImageUploadRequest asks for a presigned product image upload
type ImageUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,max=200"`
	ContentType string `json:"content_type" binding:"required"`
}

// ImageUploadResponse carries the presigned URL and the key to store on the product
type ImageUploadResponse struct {
	UploadURL string    `json:"upload_url"`
	Key       string    `json:"key"`
	PublicURL string    `json:"public_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ToProductResponse converts a domain Product to ProductResponse.
// imageURL resolves the stored image reference and may be nil.
func ToProductResponse(p *catalog.Product, imageURL func(string) string) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Category:    p.Category,
		Price:       p.Price,
		OldPrice:    p.OldPrice,
		OnSale:      p.OnSale(),
		Stock:       p.Stock,
		InStock:     p.InStock(),
		Description: p.Description,
		Image:       p.Image,
		Featured:    p.Featured,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if imageURL != nil {
		resp.ImageURL = imageURL(p.Image)
	}
	return resp
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product, imageURL func(string) string) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i], imageURL)
	}
	return out
}
