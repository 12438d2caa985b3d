package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/refer-web/internal/models"
	"github.com/hongminglow/refer-web/internal/storage"
)

// DefaultDelay is the simulated processing time of an order.
const DefaultDelay = 2 * time.Second

// Submission is a validated, priced checkout.
type Submission struct {
	UserID     string
	Items      []models.OrderItem
	Billing    models.Billing
	CardNumber string
}

// Processor simulates order processing and records the result. No payment
// gateway is involved.
type Processor struct {
	store    storage.OrderStore
	delay    time.Duration
	log      *zap.Logger
	now      func() time.Time
	observer OrderObserver
}

// OrderObserver is told about every recorded order.
type OrderObserver interface {
	ObserveOrder(total decimal.Decimal)
}

// NewProcessor builds a processor that waits delay before recording an order.
func NewProcessor(store storage.OrderStore, delay time.Duration, log *zap.Logger) *Processor {
	if delay < 0 {
		delay = DefaultDelay
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{store: store, delay: delay, log: log, now: time.Now}
}

// Observe reports every recorded order to obs.
func (p *Processor) Observe(obs OrderObserver) *Processor {
	p.observer = obs
	return p
}

// Submit runs Process and then Record with the same ctx.
func (p *Processor) Submit(ctx context.Context, sub Submission) (models.Order, error) {
	if err := p.Process(ctx); err != nil {
		return models.Order{}, err
	}
	return p.Record(ctx, sub)
}

// Process waits out the simulated processing delay. A done ctx ends the wait
// with ctx.Err() and nothing is recorded.
func (p *Processor) Process(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Record hashes the card number and stores the order.
func (p *Processor) Record(ctx context.Context, sub Submission) (models.Order, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(sub.CardNumber), bcrypt.DefaultCost)
	if err != nil {
		return models.Order{}, fmt.Errorf("hash card number: %w", err)
	}

	order := models.Order{
		ID:        uuid.NewString(),
		UserID:    sub.UserID,
		Items:     sub.Items,
		Total:     OrderTotal(sub.Items),
		Billing:   sub.Billing,
		CardLast4: last4(sub.CardNumber),
		CardHash:  string(hash),
		CreatedAt: p.now().UTC(),
	}
	created, err := p.store.CreateOrder(ctx, order)
	if err != nil {
		return models.Order{}, fmt.Errorf("record order: %w", err)
	}
	if p.observer != nil {
		p.observer.ObserveOrder(created.Total)
	}
	p.log.Info("order recorded",
		zap.String("order_id", created.ID),
		zap.String("user_id", created.UserID),
		zap.String("total", FormatAmount(created.Total)),
	)
	return created, nil
}

// CardMatches reports whether number is the card an order was paid with.
func CardMatches(order models.Order, number string) bool {
	return bcrypt.CompareHashAndPassword([]byte(order.CardHash), []byte(number)) == nil
}

func last4(number string) string {
	if len(number) <= 4 {
		return number
	}
	return number[len(number)-4:]
}
