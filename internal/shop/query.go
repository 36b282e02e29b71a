package shop

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FilterProducts keeps products in category (CategoryAll matches any) whose
// title or description contains query, ignoring case.
func FilterProducts(products []Product, query, category string) []Product {
	q := strings.ToLower(query)

	out := make([]Product, 0, len(products))
	for _, p := range products {
		if category != CategoryAll && p.Category != category {
			continue
		}
		if !strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *Store) FilteredProducts(query, category string) []Product {
	return FilterProducts(s.Products(), query, category)
}

// Categories returns CategoryAll followed by each distinct category in
// catalog order.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{}, len(s.products))
	out := []string{CategoryAll}
	for _, p := range s.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// CartTotal skips lines whose product no longer exists.
func (s *Store) CartTotal() decimal.Decimal {
	return s.CartSummary().Total
}

// CartCount includes dangling lines.
func (s *Store) CartCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, l := range s.cart {
		n += l.Qty
	}
	return n
}

func (s *Store) CartSummary() CartSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byID := make(map[string]Product, len(s.products))
	for _, p := range s.products {
		byID[p.ID] = p
	}

	sum := CartSummary{Lines: make([]CartSummaryLine, 0, len(s.cart)), Total: decimal.Zero}
	for _, l := range s.cart {
		sum.Count += l.Qty

		p, ok := byID[l.ProductID]
		if !ok {
			continue
		}
		sub := p.Price.Mul(decimal.NewFromInt(int64(l.Qty)))
		sum.Total = sum.Total.Add(sub)
		sum.Lines = append(sum.Lines, CartSummaryLine{
			ID:        l.ID,
			ProductID: l.ProductID,
			Title:     p.Title,
			Size:      l.Size,
			Qty:       l.Qty,
			UnitPrice: p.Price,
			Subtotal:  sub,
		})
	}
	return sum
}
