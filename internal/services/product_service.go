package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

const productAssignBatch = 100

type CreateProductInput struct {
	Name           string  `json:"name" validate:"required,min=2,max=200"`
	Price          float64 `json:"price" validate:"gte=0"`
	Img            string  `json:"img" validate:"omitempty,url"`
	Category       string  `json:"category" validate:"omitempty,max=100"`
	Rating         float64 `json:"rating" validate:"gte=0,lte=5"`
	InStockValue   int     `json:"inStockValue" validate:"gte=0"`
	SoldStockValue int     `json:"soldStockValue" validate:"gte=0"`
	Visibility     bool    `json:"visibility"`
}

type UpdateStockInput struct {
	InStockValue   int `json:"inStockValue" validate:"gte=0"`
	SoldStockValue int `json:"soldStockValue" validate:"gte=0"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo    repositories.ProductRepository
	ids     *IDAllocator
	timeout time.Duration
	logger  *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, ids *IDAllocator, timeout time.Duration, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		repo:    repo,
		ids:     ids,
		timeout: timeout,
		logger:  logger,
	}
}

// List returns the catalog. Hidden products are included only for admins.
func (s *ProductService) List(ctx context.Context, includeHidden bool) ([]models.Product, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	products, err := s.repo.List(ctx, includeHidden)
	if err != nil {
		return nil, storeError(err, "failed to list products")
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, productID string) (*models.Product, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	product, err := s.repo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, storeError(err, "product %s not found", productID)
	}
	return product, nil
}

// Create stores a new product under a freshly allocated product code.
func (s *ProductService) Create(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	product := &models.Product{
		Name:           in.Name,
		Price:          in.Price,
		Img:            in.Img,
		Category:       in.Category,
		Rating:         in.Rating,
		InStockValue:   in.InStockValue,
		SoldStockValue: in.SoldStockValue,
		Visible:        in.Visibility,
	}
	_, err := s.ids.Allocate(ctx, ProductCodes, func(ctx context.Context, code string) error {
		product.ID = 0
		product.ProductID = &code
		return s.repo.Create(ctx, product)
	})
	if err != nil {
		return nil, storeError(err, "failed to create product")
	}
	return product, nil
}

// AssignProductIDs gives a product code to every product that lacks one and
// returns how many were assigned.
func (s *ProductService) AssignProductIDs(ctx context.Context) (int, error) {
	assigned := 0
	for {
		listCtx, cancel := withTimeout(ctx, s.timeout)
		products, err := s.repo.ListMissingProductID(listCtx, productAssignBatch)
		cancel()
		if err != nil {
			return assigned, storeError(err, "failed to list products without id")
		}
		if len(products) == 0 {
			return assigned, nil
		}
		for _, p := range products {
			ok, err := s.assign(ctx, p.ID)
			if err != nil {
				return assigned, err
			}
			if ok {
				assigned++
			}
		}
	}
}

func (s *ProductService) assign(ctx context.Context, id uint) (bool, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	code, err := s.ids.Allocate(ctx, ProductCodes, func(ctx context.Context, code string) error {
		return s.repo.AssignProductID(ctx, id, code)
	})
	if errors.Is(err, repositories.ErrStaleVersion) {
		// Someone else assigned it first.
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.logger.Debug("assigned product id", zap.Uint("id", id), zap.String("productId", code))
	return true, nil
}

func (s *ProductService) UpdateStock(ctx context.Context, productID string, in UpdateStockInput) (*models.Product, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	product, err := s.repo.UpdateStock(ctx, productID, in.InStockValue, in.SoldStockValue)
	if err != nil {
		return nil, storeError(err, "product %s not found", productID)
	}
	return product, nil
}

func (s *ProductService) UpdateVisibility(ctx context.Context, productID string, visible bool) (*models.Product, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()
	product, err := s.repo.UpdateVisibility(ctx, productID, visible)
	if err != nil {
		return nil, storeError(err, "product %s not found", productID)
	}
	return product, nil
}
