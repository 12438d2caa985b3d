package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hongminglow/refer-web/internal/models"
)

// ErrNotFound indicates an unknown product id.
var ErrNotFound = errors.New("product not found")

// Catalog is the read-only product list loaded from the static product file.
type Catalog struct {
	products []models.Product
	byID     map[string]int
}

// Load reads the product file at path.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a JSON array of products. Duplicate or empty ids are rejected.
func Read(r io.Reader) (*Catalog, error) {
	var products []models.Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	byID := make(map[string]int, len(products))
	for i, p := range products {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return nil, fmt.Errorf("catalog entry %d has no id", i)
		}
		if _, dup := byID[id]; dup {
			return nil, fmt.Errorf("duplicate product id %q", id)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("product %q has a negative price", id)
		}
		byID[id] = i
	}
	return &Catalog{products: products, byID: byID}, nil
}

// All returns every product in file order.
func (c *Catalog) All() []models.Product {
	return append([]models.Product(nil), c.products...)
}

// ByID returns a single product.
func (c *Catalog) ByID(id string) (models.Product, error) {
	i, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	return c.products[i], nil
}

// Recommended returns up to n other products in file order.
func (c *Catalog) Recommended(id string, n int) []models.Product {
	out := make([]models.Product, 0, n)
	for _, p := range c.products {
		if len(out) >= n {
			break
		}
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}
