package shop

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	CategoryAll     = "ALL"
	defaultCategory = "Uncategorized"
)

type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Sizes       []string        `json:"sizes"`
	Stock       int             `json:"stock"`
	Image       string          `json:"image"`
}

func (p Product) clone() Product {
	p.Sizes = append([]string(nil), p.Sizes...)
	if p.Sizes == nil {
		p.Sizes = []string{}
	}
	return p
}

// ProductInput is the full payload of the admin "new product" form.
type ProductInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Sizes       []string        `json:"sizes"`
	Stock       int             `json:"stock"`
	Image       string          `json:"image"`
}

func (in ProductInput) Validate() error {
	if in.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	if in.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}
	return nil
}

func (in ProductInput) product(id string) Product {
	return Product{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Category:    normalizeCategory(in.Category),
		Sizes:       normalizeSizes(in.Sizes),
		Stock:       in.Stock,
		Image:       in.Image,
	}
}

// ProductPatch lists the fields an admin edit may replace. Nil fields are
// left untouched; the id is never patchable.
type ProductPatch struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Sizes       *[]string        `json:"sizes,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	Image       *string          `json:"image,omitempty"`
}

func (p ProductPatch) Validate() error {
	if p.Price != nil && p.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	if p.Stock != nil && *p.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}
	return nil
}

func (p ProductPatch) apply(dst *Product) {
	if p.Title != nil {
		dst.Title = *p.Title
	}
	if p.Description != nil {
		dst.Description = *p.Description
	}
	if p.Price != nil {
		dst.Price = *p.Price
	}
	if p.Category != nil {
		dst.Category = normalizeCategory(*p.Category)
	}
	if p.Sizes != nil {
		dst.Sizes = normalizeSizes(*p.Sizes)
	}
	if p.Stock != nil {
		dst.Stock = *p.Stock
	}
	if p.Image != nil {
		dst.Image = *p.Image
	}
}

func normalizeCategory(c string) string {
	if c = strings.TrimSpace(c); c == "" {
		return defaultCategory
	}
	return c
}

func normalizeSizes(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func seedProducts(newID func(prefix string) string) []Product {
	return []Product{
		{
			ID:          newID(productIDPrefix),
			Title:       "T-shirt básica unissex",
			Description: "Malha leve, disponível em várias cores. Corte regular.",
			Price:       decimal.RequireFromString("19.99"),
			Category:    "Adulto - Unissex",
			Sizes:       []string{"S", "M", "L", "XL"},
			Stock:       20,
		},
		{
			ID:          newID(productIDPrefix),
			Title:       "Vestido floral (feminino)",
			Description: "Vestido midi com estampado floral. 100% algodão.",
			Price:       decimal.RequireFromString("49.90"),
			Category:    "Feminino",
			Sizes:       []string{"S", "M", "L"},
			Stock:       10,
		},
		{
			ID:          newID(productIDPrefix),
			Title:       "Casaco infantil",
			Description: "Casaco quentinho para crianças. Forro macio.",
			Price:       decimal.RequireFromString("34.50"),
			Category:    "Infantil",
			Sizes:       []string{"2", "3", "4", "5"},
			Stock:       15,
		},
	}
}
