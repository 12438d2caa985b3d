package dto

import "github.com/hongminglow/refer-web/internal/models"

type CartLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type CheckoutRequest struct {
	Billing    models.Billing `json:"billing"`
	Items      []CartLine     `json:"items"`
	CardNumber string         `json:"cardNumber"`
}

type CheckoutResponse struct {
	OrderID    string             `json:"orderId"`
	Items      []models.OrderItem `json:"items"`
	Subtotal   string             `json:"subtotal"`
	OrderTotal string             `json:"orderTotal"`
	CardLast4  string             `json:"cardLast4"`
}

// ReceiptRequest proves ownership of an order by the card it was paid with.
type ReceiptRequest struct {
	CardNumber string `json:"cardNumber"`
}
