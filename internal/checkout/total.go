package checkout

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/refer-web/internal/models"
	"github.com/hongminglow/refer-web/internal/models/dto"
)

// ErrUnknownProduct reports a cart line whose product is not in the catalog.
var ErrUnknownProduct = errors.New("unknown product")

// ProductLookup resolves catalog entries.
type ProductLookup interface {
	ByID(id string) (models.Product, error)
}

// LineTotal is price times quantity for one line.
func LineTotal(item models.OrderItem) decimal.Decimal {
	return item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// OrderTotal sums every line. There is no tax or shipping.
func OrderTotal(items []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(LineTotal(item))
	}
	return total
}

// FormatAmount renders an amount with two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// PriceCart turns cart lines into priced order items using catalog prices,
// never prices supplied by the client.
func PriceCart(products ProductLookup, lines []dto.CartLine) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		p, err := products.ByID(line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, line.ProductID)
		}
		items = append(items, models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  line.Quantity,
		})
	}
	return items, nil
}
