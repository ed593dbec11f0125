package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sadsod/storefront/internal/domain/catalog"
	"github.com/sadsod/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	homeSectionSize = 8
	defaultPageSize = 24
)

// ProductService handles catalog browsing and product administration
type ProductService struct {
	productRepo catalog.ProductRepository
	images      *ImageService
	logger      *zap.Logger
}

// NewProductService creates a new ProductService. images may be nil, in
// which case image references are returned as stored.
func NewProductService(productRepo catalog.ProductRepository, images *ImageService, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo: productRepo,
		images:      images,
		logger:      logger,
	}
}

func (s *ProductService) imageURL(image string) string {
	if s.images == nil {
		return image
	}
	return s.images.URL(image)
}

// Home returns the featured and latest products plus the category list
func (s *ProductService) Home(ctx context.Context) (*HomeResponse, error) {
	featured, err := s.productRepo.Featured(ctx, homeSectionSize)
	if err != nil {
		return nil, err
	}
	latest, err := s.productRepo.Latest(ctx, homeSectionSize)
	if err != nil {
		return nil, err
	}
	categories, err := s.productRepo.Categories(ctx)
	if err != nil {
		return nil, err
	}

	return &HomeResponse{
		Featured:   ToProductResponses(featured, s.imageURL),
		Latest:     ToProductResponses(latest, s.imageURL),
		Categories: categories,
	}, nil
}

// List returns a page of products matching the name search and category,
// most recent first unless another sort is requested
func (s *ProductService) List(ctx context.Context, query ProductListQuery) (*shared.Paginated[ProductResponse], error) {
	page, pageSize := query.Page, query.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	filter := catalog.ProductFilter{
		Query:    strings.TrimSpace(query.Query),
		Category: strings.TrimSpace(query.Category),
		SortBy:   query.SortBy,
		SortDir:  query.SortDir,
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	}

	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(ToProductResponses(products, s.imageURL), total, page, pageSize)
	return &result, nil
}

// Categories returns the distinct product categories
func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	return s.productRepo.Categories(ctx)
}

// GetBySlug retrieves a product by its slug
func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*ProductResponse, error) {
	product, err := s.productRepo.FindBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product, s.imageURL)
	return &resp, nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product, s.imageURL)
	return &resp, nil
}

// Create parses the form and creates a product. A slug already in use is
// reported as ALREADY_EXISTS before anything is written.
func (s *ProductService) Create(ctx context.Context, form ProductForm) (*ProductResponse, error) {
	attrs, err := form.Attributes()
	if err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(attrs)
	if err != nil {
		return nil, err
	}

	exists, err := s.productRepo.ExistsBySlug(ctx, product.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this slug already exists")
	}

	if err := s.verifyImage(ctx, product.Image); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	resp := ToProductResponse(product, s.imageURL)
	return &resp, nil
}

// Update replaces a product's attributes; the slug must stay unique among other products
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, form ProductForm) (*ProductResponse, error) {
	attrs, err := form.Attributes()
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousImage := product.Image

	if err := product.Update(attrs); err != nil {
		return nil, err
	}

	exists, err := s.productRepo.ExistsBySlugExcluding(ctx, product.Slug, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this slug already exists")
	}

	if product.Image != previousImage {
		if err := s.verifyImage(ctx, product.Image); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	if product.Image != previousImage {
		s.deleteImage(ctx, previousImage)
	}

	resp := ToProductResponse(product, s.imageURL)
	return &resp, nil
}

// Delete deletes a product and its stored image.
// Past orders keep their item snapshots.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.deleteImage(ctx, product.Image)
	return nil
}

func (s *ProductService) verifyImage(ctx context.Context, image string) error {
	if s.images == nil || image == "" {
		return nil
	}
	return s.images.Verify(ctx, image)
}

// deleteImage removes an image the catalog no longer references. Failures
// are logged and leave an orphaned object behind.
func (s *ProductService) deleteImage(ctx context.Context, image string) {
	if s.images == nil || image == "" {
		return
	}
	if err := s.images.Delete(ctx, image); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("Failed to delete product image",
			zap.String("image", image),
			zap.Error(err),
		)
	}
}
