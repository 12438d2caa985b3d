package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/hongminglow/refer-web/internal/models"
	"github.com/hongminglow/refer-web/internal/storage"
)

var _ storage.OrderStore = (*Store)(nil)

// Store keeps orders in process memory. Used when no database is configured.
type Store struct {
	mu     sync.RWMutex
	orders map[string]models.Order
}

func NewOrderStore() *Store {
	return &Store{orders: make(map[string]models.Order)}
}

// CreateOrder stores order. Like a database write, it fails once ctx is done.
func (s *Store) CreateOrder(ctx context.Context, order models.Order) (models.Order, error) {
	if err := ctx.Err(); err != nil {
		return models.Order{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[order.ID]; ok {
		return models.Order{}, storage.ErrAlreadyExists
	}
	order.Items = append([]models.OrderItem(nil), order.Items...)
	s.orders[order.ID] = order
	return order, nil
}

func (s *Store) FindOrder(_ context.Context, id string) (models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	order, ok := s.orders[id]
	if !ok {
		return models.Order{}, storage.ErrNotFound
	}
	return order, nil
}

// ListOrdersByUser returns the user's orders, newest first.
func (s *Store) ListOrdersByUser(_ context.Context, userID string) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Order, 0)
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
