package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Billing is the contact block collected at checkout.
type Billing struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// OrderItem is one priced cart line.
type OrderItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Order is a completed, simulated checkout. The card number is never kept;
// only its last four digits and a bcrypt hash.
type Order struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId,omitempty"`
	Items     []OrderItem     `json:"items"`
	Total     decimal.Decimal `json:"total"`
	Billing   Billing         `json:"billing"`
	CardLast4 string          `json:"cardLast4"`
	CardHash  string          `json:"-"`
	CreatedAt time.Time       `json:"createdAt"`
}
