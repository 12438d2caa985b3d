package models

import "github.com/shopspring/decimal"

// Product is a catalog entry from the static product file.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Specification string          `json:"specification,omitempty"`
	Category      string          `json:"category,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Rating        float64         `json:"rating,omitempty"`
	Images        []string        `json:"images,omitempty"`
}
