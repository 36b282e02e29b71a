package shop

import "github.com/shopspring/decimal"

// CartLine pairs a product and size with a quantity. ProductID may dangle
// after the product is deleted.
type CartLine struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Qty       int    `json:"qty"`
}

type CartSummaryLine struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	Size      string          `json:"size"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CartSummary struct {
	Lines []CartSummaryLine `json:"lines"`
	Total decimal.Decimal   `json:"total"`
	Count int               `json:"count"`
}
