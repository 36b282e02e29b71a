package shop

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"Storefront/internal/snapshot"
)

const (
	productIDPrefix = "p"
	lineIDPrefix    = "l"
)

// Store owns the catalog, the cart and the admin session. Every mutation
// rewrites the full snapshot of the aggregate it touched.
type Store struct {
	mu  sync.RWMutex
	kv  snapshot.KV
	log *zap.Logger

	products []Product
	cart     []CartLine
	admin    AdminSession
	session  string

	strictStock bool
	newID       func(prefix string) string
}

type Option func(*Store)

// WithStrictStock makes AddToCart count quantity already in the cart for the
// same product, across all sizes, against its stock.
func WithStrictStock(on bool) Option {
	return func(s *Store) { s.strictStock = on }
}

func WithIDGenerator(fn func(prefix string) string) Option {
	return func(s *Store) { s.newID = fn }
}

func newID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

func Open(ctx context.Context, kv snapshot.KV, log *zap.Logger, opts ...Option) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{kv: kv, log: log, newID: newID}
	for _, opt := range opts {
		opt(s)
	}

	products, write, err := loadSnapshot(ctx, s, snapshot.ProductsKey, func() []Product {
		return seedProducts(s.newID)
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	s.products = products
	if s.products == nil {
		s.products = []Product{}
	}
	if write {
		s.saveProducts(ctx)
	}

	cart, write, err := loadSnapshot(ctx, s, snapshot.CartKey, func() []CartLine {
		return []CartLine{}
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	s.cart = cart
	if s.cart == nil {
		s.cart = []CartLine{}
	}
	if write {
		s.saveCart(ctx)
	}

	admin, write, err := loadSnapshot(ctx, s, snapshot.AdminKey, defaultAdmin, AdminSession.validate)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	s.admin = admin
	if write {
		s.saveAdmin(ctx)
	}

	return s, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}

func (s *Store) Products() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p.clone())
	}
	return out
}

func (s *Store) Product(id string) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.productIndex(id)
	if i < 0 {
		return Product{}, false
	}
	return s.products[i].clone(), true
}

func (s *Store) Cart() []CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append(make([]CartLine, 0, len(s.cart)), s.cart...)
}

// AddToCart merges into the existing line for (product, size) when there is
// one. Stock is checked against the product as passed in. An empty size
// picks the product's first size.
func (s *Store) AddToCart(ctx context.Context, p Product, size string, qty int) (CartLine, error) {
	if qty <= 0 {
		return CartLine{}, ErrInvalidQuantity
	}
	size, err := resolveSize(p, size)
	if err != nil {
		return CartLine{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reserved := 0
	if s.strictStock {
		for _, l := range s.cart {
			if l.ProductID == p.ID {
				reserved += l.Qty
			}
		}
	}
	if qty > p.Stock-reserved {
		return CartLine{}, ErrInsufficientStock
	}

	for i := range s.cart {
		if s.cart[i].ProductID == p.ID && s.cart[i].Size == size {
			if s.cart[i].Qty > math.MaxInt-qty {
				return CartLine{}, ErrInsufficientStock
			}
			s.cart[i].Qty += qty
			s.saveCart(ctx)
			return s.cart[i], nil
		}
	}

	line := CartLine{
		ID:        s.newID(lineIDPrefix),
		ProductID: p.ID,
		Size:      size,
		Qty:       qty,
	}
	s.cart = append(s.cart, line)
	s.saveCart(ctx)
	return line, nil
}

func resolveSize(p Product, size string) (string, error) {
	size = strings.TrimSpace(size)
	switch {
	case size == "" && len(p.Sizes) > 0:
		return p.Sizes[0], nil
	case size == "" || slices.Contains(p.Sizes, size):
		return size, nil
	default:
		return "", ErrInvalidSize
	}
}

func (s *Store) UpdateCartItem(ctx context.Context, lineID string, qty int) (CartLine, bool, error) {
	if qty <= 0 {
		return CartLine{}, false, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart {
		if s.cart[i].ID == lineID {
			s.cart[i].Qty = qty
			s.saveCart(ctx)
			return s.cart[i], true, nil
		}
	}
	return CartLine{}, false, nil
}

func (s *Store) RemoveCartItem(ctx context.Context, lineID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart {
		if s.cart[i].ID == lineID {
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
			s.saveCart(ctx)
			return true
		}
	}
	return false
}

func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart = []CartLine{}
	s.saveCart(ctx)
}

// AddProduct assigns a fresh id and puts the product first in the catalog.
func (s *Store) AddProduct(ctx context.Context, in ProductInput) Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := in.product(s.newID(productIDPrefix))
	s.products = append([]Product{p}, s.products...)
	s.saveProducts(ctx)
	return p.clone()
}

func (s *Store) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		return Product{}, false
	}
	patch.apply(&s.products[i])
	s.saveProducts(ctx)
	return s.products[i].clone(), true
}

// DeleteProduct leaves cart lines that reference the product in place.
func (s *Store) DeleteProduct(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		return false
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	s.saveProducts(ctx)
	return true
}

func (s *Store) productIndex(id string) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}
