package store

import (
	"context"
	"errors"
	"fmt"

	"sanctuary-app/internal/domain/catalog"
	"sanctuary-app/internal/domain/checkout"

	"gorm.io/gorm"
)

type Catalog struct {
	db *gorm.DB
}

func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) ProductsByIDs(ctx context.Context, ids []string) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []catalog.Product
	if err := c.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return out, nil
}

func (c *Catalog) Product(ctx context.Context, id string) (catalog.Product, error) {
	var p catalog.Product
	err := c.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return catalog.Product{}, fmt.Errorf("%w: %s", checkout.ErrUnknownProduct, id)
	}
	if err != nil {
		return catalog.Product{}, fmt.Errorf("load product %s: %w", id, err)
	}
	return p, nil
}

// List returns the shop listing; rooms are not listed.
func (c *Catalog) List(ctx context.Context) ([]catalog.Product, error) {
	var out []catalog.Product
	err := c.db.WithContext(ctx).
		Where("category <> ?", catalog.CategoryRoom).
		Order("sort_index ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}
