package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/refer-web/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// OrderStore captures persistence operations for completed checkouts.
type OrderStore interface {
	CreateOrder(ctx context.Context, order models.Order) (models.Order, error)
	FindOrder(ctx context.Context, id string) (models.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error)
}
