package repositories

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"storefront/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// List retrieves products from the database, hidden ones only on request.
func (r *GORMProductRepository) List(ctx context.Context, includeHidden bool) ([]models.Product, error) {
	var products []models.Product
	q := r.db.WithContext(ctx).Order("id")
	if !includeHidden {
		q = q.Where("visible = ?", true)
	}
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get products: %w", translate(err))
	}
	return products, nil
}

// GetByProductID retrieves a single product by its public code.
func (r *GORMProductRepository) GetByProductID(ctx context.Context, productID string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "product_id = ?", productID).Error; err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", productID, translate(err))
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", translate(err))
	}
	return nil
}

func (r *GORMProductRepository) ListMissingProductID(ctx context.Context, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).Where("product_id IS NULL").Order("id").Limit(limit).Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products without id: %w", translate(err))
	}
	return products, nil
}

func (r *GORMProductRepository) AssignProductID(ctx context.Context, id uint, productID string) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND product_id IS NULL", id).
		Updates(map[string]any{"product_id": productID, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("failed to assign product id %s: %w", productID, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %d already has an id: %w", id, ErrStaleVersion)
	}
	return nil
}

func (r *GORMProductRepository) UpdateStock(ctx context.Context, productID string, inStock, sold int) (*models.Product, error) {
	return r.update(ctx, productID, map[string]any{"in_stock_value": inStock, "sold_stock_value": sold})
}

func (r *GORMProductRepository) UpdateVisibility(ctx context.Context, productID string, visible bool) (*models.Product, error) {
	return r.update(ctx, productID, map[string]any{"visible": visible})
}

func (r *GORMProductRepository) update(ctx context.Context, productID string, fields map[string]any) (*models.Product, error) {
	fields["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("product_id = ?", productID).Updates(fields)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update product: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("product with ID %s not found for update: %w", productID, ErrNotFound)
	}
	return r.GetByProductID(ctx, productID)
}
