// Package seed loads the read-only content store (catalog, blog,
// testimonials, room prompts, demo accounts) from YAML.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"sanctuary-app/internal/domain/catalog"
	"sanctuary-app/internal/domain/content"
	"sanctuary-app/internal/domain/users"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed default.yaml
var defaultSeed []byte

type File struct {
	Products     []Product     `yaml:"products"`
	BlogPosts    []BlogPost    `yaml:"blog_posts"`
	Testimonials []Testimonial `yaml:"testimonials"`
	Rooms        []Room        `yaml:"rooms"`
	Users        []User        `yaml:"users"`
}

type Product struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	Description    string `yaml:"description"`
	UnitAmount     int64  `yaml:"unit_amount"`
	Currency       string `yaml:"currency"`
	Category       string `yaml:"category"`
	PreviewContent string `yaml:"preview_content"`
	FeaturedImage  string `yaml:"featured_image"`
}

type BlogPost struct {
	ID            string    `yaml:"id"`
	Title         string    `yaml:"title"`
	Excerpt       string    `yaml:"excerpt"`
	Content       string    `yaml:"content"`
	Author        string    `yaml:"author"`
	FeaturedImage string    `yaml:"featured_image"`
	Tags          []string  `yaml:"tags"`
	PublishedAt   time.Time `yaml:"published_at"`
}

type Testimonial struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Role      string `yaml:"role"`
	Content   string `yaml:"content"`
	Featured  bool   `yaml:"featured"`
	AvatarURL string `yaml:"avatar_url"`
}

type Room struct {
	ID      string   `yaml:"id"`
	Prompts []string `yaml:"prompts"`
}

type User struct {
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Premium   bool   `yaml:"premium"`
	Role      string `yaml:"role"`
}

// Default returns the embedded seed content.
func Default() (*File, error) {
	return Parse(defaultSeed)
}

// Load reads a seed file, or the embedded default when path is empty.
func Load(path string) (*File, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates seed YAML. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}
	return &f, nil
}

func (f *File) Validate() error {
	var errs []error
	rooms := map[string]bool{}
	seen := map[string]bool{}

	for i, p := range f.Products {
		if p.ID == "" || p.Name == "" {
			errs = append(errs, fmt.Errorf("products[%d]: id and name are required", i))
		}
		if seen[p.ID] {
			errs = append(errs, fmt.Errorf("products[%d]: duplicate id %q", i, p.ID))
		}
		seen[p.ID] = true
		if p.UnitAmount <= 0 {
			errs = append(errs, fmt.Errorf("products[%d]: unit_amount must be positive", i))
		}
		if _, err := catalog.ISOCode(currencyOrDefault(p.Currency)); err != nil {
			errs = append(errs, fmt.Errorf("products[%d]: %w", i, err))
		}
		cat, ok := catalog.ParseCategory(p.Category)
		if !ok {
			errs = append(errs, fmt.Errorf("products[%d]: unknown category %q", i, p.Category))
		}
		if cat == catalog.CategoryRoom {
			rooms[p.ID] = true
		}
	}

	for i, r := range f.Rooms {
		if !rooms[r.ID] {
			errs = append(errs, fmt.Errorf("rooms[%d]: %q is not a room product", i, r.ID))
		}
	}

	for i, p := range f.BlogPosts {
		if p.ID == "" || p.Title == "" {
			errs = append(errs, fmt.Errorf("blog_posts[%d]: id and title are required", i))
		}
	}

	for i, u := range f.Users {
		if u.Email == "" || u.Password == "" {
			errs = append(errs, fmt.Errorf("users[%d]: email and password are required", i))
		}
	}

	return errors.Join(errs...)
}

// Apply upserts the seed into db. Running it twice leaves the same content;
// existing user accounts are never overwritten.
func Apply(ctx context.Context, db *gorm.DB, f *File) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(f.Products) > 0 {
			rows := make([]catalog.Product, 0, len(f.Products))
			for i, p := range f.Products {
				cat, _ := catalog.ParseCategory(p.Category)
				rows = append(rows, catalog.Product{
					ID:             p.ID,
					Name:           p.Name,
					Description:    p.Description,
					UnitAmount:     p.UnitAmount,
					Currency:       strings.ToLower(currencyOrDefault(p.Currency)),
					Category:       cat,
					PreviewContent: p.PreviewContent,
					FeaturedImage:  p.FeaturedImage,
					SortIndex:      i,
				})
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error; err != nil {
				return fmt.Errorf("seed products: %w", err)
			}
		}

		if len(f.BlogPosts) > 0 {
			rows := make([]content.BlogPost, 0, len(f.BlogPosts))
			for _, p := range f.BlogPosts {
				created := p.PublishedAt
				if created.IsZero() {
					created = time.Now().UTC()
				}
				rows = append(rows, content.BlogPost{
					ID:            p.ID,
					Title:         p.Title,
					Excerpt:       p.Excerpt,
					Content:       p.Content,
					Author:        p.Author,
					FeaturedImage: p.FeaturedImage,
					Tags:          strings.Join(p.Tags, ","),
					CreatedAt:     created,
				})
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error; err != nil {
				return fmt.Errorf("seed blog posts: %w", err)
			}
		}

		if len(f.Testimonials) > 0 {
			rows := make([]content.Testimonial, 0, len(f.Testimonials))
			for i, t := range f.Testimonials {
				row := content.Testimonial{
					ID:         t.ID,
					Name:       t.Name,
					Role:       t.Role,
					Content:    t.Content,
					IsFeatured: t.Featured,
					SortIndex:  i,
				}
				if t.AvatarURL != "" {
					avatar := t.AvatarURL
					row.AvatarURL = &avatar
				}
				rows = append(rows, row)
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&rows).Error; err != nil {
				return fmt.Errorf("seed testimonials: %w", err)
			}
		}

		for _, r := range f.Rooms {
			if err := tx.Where("room_id = ?", r.ID).Delete(&content.RoomPrompt{}).Error; err != nil {
				return fmt.Errorf("clear prompts for %s: %w", r.ID, err)
			}
			if len(r.Prompts) == 0 {
				continue
			}
			rows := make([]content.RoomPrompt, 0, len(r.Prompts))
			for i, text := range r.Prompts {
				rows = append(rows, content.RoomPrompt{RoomID: r.ID, SortIndex: i + 1, Content: text})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("seed prompts for %s: %w", r.ID, err)
			}
		}

		for _, u := range f.Users {
			if err := seedUser(tx, u); err != nil {
				return err
			}
		}

		slog.Info("seed applied",
			slog.Int("products", len(f.Products)),
			slog.Int("blog_posts", len(f.BlogPosts)),
			slog.Int("testimonials", len(f.Testimonials)),
			slog.Int("rooms", len(f.Rooms)),
			slog.Int("users", len(f.Users)),
		)
		return nil
	})
}

func seedUser(tx *gorm.DB, u User) error {
	email := strings.ToLower(strings.TrimSpace(u.Email))

	var count int64
	if err := tx.Model(&users.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("lookup seed user: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}
	hashed := string(hash)

	role := u.Role
	if role == "" {
		role = users.RoleUser
	}
	row := users.User{
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        email,
		Password:     &hashed,
		AuthProvider: users.ProviderLocal,
		Role:         role,
		IsPremium:    u.Premium,
	}
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("create seed user %s: %w", email, err)
	}
	return nil
}

func currencyOrDefault(c string) string {
	if strings.TrimSpace(c) == "" {
		return "usd"
	}
	return c
}
