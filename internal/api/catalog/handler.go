package catalogapi

import (
	"context"
	"errors"
	"net/http"

	"sanctuary-app/internal/domain/catalog"
	"sanctuary-app/internal/domain/checkout"

	"github.com/gin-gonic/gin"
)

type Store interface {
	List(ctx context.Context) ([]catalog.Product, error)
	Product(ctx context.Context, id string) (catalog.Product, error)
}

type Handler struct {
	store Store
}

func NewHandler(s Store) *Handler {
	return &Handler{store: s}
}

type productDTO struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Category       catalog.Category `json:"category"`
	UnitAmount     int64            `json:"unit_amount"`
	Currency       string           `json:"currency"`
	Price          float64          `json:"price"`
	PriceDisplay   string           `json:"price_display"`
	PreviewContent string           `json:"preview_content,omitempty"`
	FeaturedImage  string           `json:"featured_image,omitempty"`
}

func toProductDTO(p catalog.Product) productDTO {
	return productDTO{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Category:       p.Category,
		UnitAmount:     p.UnitAmount,
		Currency:       p.Currency,
		Price:          catalog.MajorAmount(p.UnitAmount, p.Currency),
		PriceDisplay:   catalog.FormatAmount(p.UnitAmount, p.Currency),
		PreviewContent: p.PreviewContent,
		FeaturedImage:  p.FeaturedImage,
	}
}

// GET /api/products?category=journal
func (h *Handler) ListProducts(c *gin.Context) {
	var filter catalog.Category
	if raw := c.Query("category"); raw != "" {
		cat, ok := catalog.ParseCategory(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category"})
			return
		}
		filter = cat
	}

	products, err := h.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
		return
	}

	out := make([]productDTO, 0, len(products))
	for _, p := range products {
		if filter != "" && p.Category != filter {
			continue
		}
		out = append(out, toProductDTO(p))
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	p, err := h.store.Product(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, checkout.ErrUnknownProduct) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product"})
		return
	}
	if !p.Listed() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, toProductDTO(p))
}
