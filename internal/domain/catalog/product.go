package catalog

import (
	"strings"
	"time"
)

// Category is the kind of gated content a product unlocks.
type Category string

const (
	CategoryJournal    Category = "journal"
	CategoryEbook      Category = "ebook"
	CategoryCardDeck   Category = "card_deck"
	CategoryMeditation Category = "meditation"
	CategoryBundle     Category = "bundle"
	// CategoryRoom marks a synthetic, non-catalog resource such as the premium
	// journaling room. Rooms are purchasable but not listed in the shop.
	CategoryRoom Category = "room"
)

func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryJournal, CategoryEbook, CategoryCardDeck, CategoryMeditation, CategoryBundle, CategoryRoom:
		return c, true
	}
	return "", false
}

type Product struct {
	ID             string   `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name           string   `gorm:"not null" json:"name"`
	Description    string   `json:"description"`
	UnitAmount     int64    `gorm:"not null" json:"unit_amount"`
	Currency       string   `gorm:"type:varchar(3);not null;default:'usd'" json:"currency"`
	Category       Category `gorm:"type:varchar(20);not null;index" json:"category"`
	PreviewContent string   `json:"preview_content,omitempty"`
	FeaturedImage  string   `json:"featured_image,omitempty"`
	SortIndex      int      `gorm:"not null;default:0" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Listed reports whether the product belongs in the public shop listing.
func (p Product) Listed() bool {
	return p.Category != CategoryRoom
}
