package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hongminglow/refer-web/internal/catalog"
	"github.com/hongminglow/refer-web/internal/checkout"
	"github.com/hongminglow/refer-web/internal/http/respond"
	"github.com/hongminglow/refer-web/internal/models"
	"github.com/hongminglow/refer-web/internal/models/dto"
	"github.com/hongminglow/refer-web/internal/session"
	"github.com/hongminglow/refer-web/internal/storage"
	"github.com/hongminglow/refer-web/internal/validate"
)

const recommendedCount = 4

// Products is the catalog surface the storefront reads.
type Products interface {
	All() []models.Product
	ByID(id string) (models.Product, error)
	Recommended(id string, n int) []models.Product
}

// OrderProcessor runs the simulated order processing and records the order.
type OrderProcessor interface {
	Process(ctx context.Context) error
	Record(ctx context.Context, sub checkout.Submission) (models.Order, error)
}

// StoreHandler serves the product catalog, checkout and order history.
type StoreHandler struct {
	products  Products
	orders    storage.OrderStore
	processor OrderProcessor
	api       Backend
	gate      *session.Gate
	log       *zap.Logger
}

// NewStoreHandler constructs the handler.
func NewStoreHandler(products Products, orders storage.OrderStore, processor OrderProcessor, api Backend, gate *session.Gate, log *zap.Logger) *StoreHandler {
	return &StoreHandler{products: products, orders: orders, processor: processor, api: api, gate: gate, log: log}
}

// Register attaches catalog, checkout and order routes to the mux.
func (h *StoreHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /products", h.handleList)
	mux.HandleFunc("GET /products/{id}", h.handleProduct)
	mux.HandleFunc("POST /checkout", h.handleCheckout)
	mux.Handle("GET /orders", h.gate.Require(unauthorized(), http.HandlerFunc(h.handleOrders)))
	mux.Handle("GET /orders/{id}", h.gate.Require(unauthorized(), http.HandlerFunc(h.handleOrder)))
	mux.HandleFunc("POST /orders/{id}/receipt", h.handleReceipt)
}

func (h *StoreHandler) handleList(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, "products", h.products.All())
}

func (h *StoreHandler) handleProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, err := h.products.ByID(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "product not found")
			return
		}
		respond.Error(w, http.StatusInternalServerError, "failed to load product")
		return
	}
	respond.JSON(w, http.StatusOK, "product", map[string]any{
		"product":     p,
		"recommended": h.products.Recommended(p.ID, recommendedCount),
	})
}

// handleCheckout validates and prices the cart from the catalog, waits out the
// simulated processing, reports the purchase for a signed-in buyer, then
// records the order. Once the purchase is reported the order is recorded even
// if the client has gone away.
func (h *StoreHandler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if rejectInvalid(w, validate.Checkout(req)) {
		return
	}
	items, err := checkout.PriceCart(h.products, req.Items)
	if err != nil {
		respond.Invalid(w, map[string]string{"items": err.Error()})
		return
	}

	if err := h.processor.Process(r.Context()); err != nil {
		h.log.Info("checkout abandoned during processing", zap.Error(err))
		respond.Error(w, http.StatusServiceUnavailable, "checkout abandoned")
		return
	}

	var userID string
	if claims, ok := h.gate.Current(r); ok {
		userID = claims.ID
		token, _ := session.BearerToken(r)
		purchase := dto.PurchaseRequest{ReferredBy: claims.ReferredBy, PurchasedReferID: claims.ID}
		if err := h.api.PurchaseBook(r.Context(), token, purchase); err != nil {
			backendFailure(w, h.gate, h.log, "Error Placing Order", err)
			return
		}
	}

	order, err := h.processor.Record(context.WithoutCancel(r.Context()), checkout.Submission{
		UserID:     userID,
		Items:      items,
		Billing:    req.Billing,
		CardNumber: req.CardNumber,
	})
	if err != nil {
		h.log.Error("checkout failed", zap.String("user_id", userID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to place order")
		return
	}

	total := checkout.FormatAmount(order.Total)
	respond.JSON(w, http.StatusCreated, "Order Complete!", dto.CheckoutResponse{
		OrderID:    order.ID,
		Items:      order.Items,
		Subtotal:   total,
		OrderTotal: total,
		CardLast4:  order.CardLast4,
	})
}

func (h *StoreHandler) handleOrders(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestClaims(r)
	orders, err := h.orders.ListOrdersByUser(r.Context(), userID)
	if err != nil {
		h.log.Error("list orders failed", zap.String("user_id", userID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to load orders")
		return
	}
	respond.JSON(w, http.StatusOK, "orders", orders)
}

// handleOrder returns one of the session user's orders. Other users' orders
// are reported as missing.
func (h *StoreHandler) handleOrder(w http.ResponseWriter, r *http.Request) {
	userID, _ := requestClaims(r)
	order, ok := h.findOrder(w, r)
	if !ok {
		return
	}
	if order.UserID != userID {
		respond.Error(w, http.StatusNotFound, "order not found")
		return
	}
	respond.JSON(w, http.StatusOK, "order", order)
}

// handleReceipt returns an order to whoever proves the card it was paid with,
// which is how anonymous buyers get their receipt back.
func (h *StoreHandler) handleReceipt(w http.ResponseWriter, r *http.Request) {
	var req dto.ReceiptRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validate.CardNumber(req.CardNumber) {
		respond.Invalid(w, map[string]string{"cardNumber": "Card number must be 16 digits"})
		return
	}
	order, ok := h.findOrder(w, r)
	if !ok {
		return
	}
	if !checkout.CardMatches(order, req.CardNumber) {
		respond.Error(w, http.StatusNotFound, "order not found")
		return
	}
	respond.JSON(w, http.StatusOK, "receipt", order)
}

func (h *StoreHandler) findOrder(w http.ResponseWriter, r *http.Request) (models.Order, bool) {
	id := r.PathValue("id")
	order, err := h.orders.FindOrder(r.Context(), id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "order not found")
		return models.Order{}, false
	case err != nil:
		h.log.Error("find order failed", zap.String("order_id", id), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to load order")
		return models.Order{}, false
	}
	return order, true
}
