package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/developerabhi04/order-service/internal/order/application"
	"github.com/developerabhi04/order-service/internal/order/domain"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("order-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Get("/my", h.myOrders)
		r.Get("/all", h.allOrders)
		r.Post("/new", h.newOrder)
		r.Get("/{id}", h.getOrder)
		r.Put("/{id}", h.processOrder)
		r.Delete("/{id}", h.deleteOrder)
	})
	return r
}

type newOrderReq struct {
	ShippingInfo  *domain.ShippingInfo `json:"shipping_info"`
	Items         []domain.OrderItem   `json:"order_items"`
	UserID        string               `json:"user"`
	SubtotalCents *int64               `json:"subtotal_cents"`
	TaxCents      *int64               `json:"tax_cents"`
	ShippingCents int64                `json:"shipping_cents"`
	DiscountCents int64                `json:"discount_cents"`
	TotalCents    *int64               `json:"total_cents"`
}

func (h *Handler) myOrders(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "MyOrders")
	defer span.End()

	userID := r.URL.Query().Get("id")
	orders, err := h.service.ListForUser(ctx, userID)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "orders": orders})
}

func (h *Handler) allOrders(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AllOrders")
	defer span.End()

	orders, err := h.service.ListAll(ctx)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "orders": orders})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetOrder")
	defer span.End()

	order, err := h.service.GetOne(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "order": order})
}

func (h *Handler) newOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "NewOrder")
	defer span.End()

	var req newOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "invalid request body"})
		return
	}

	err := h.service.Place(ctx, application.PlaceInput{
		UserID:        req.UserID,
		ShippingInfo:  req.ShippingInfo,
		Items:         req.Items,
		SubtotalCents: req.SubtotalCents,
		TaxCents:      req.TaxCents,
		ShippingCents: req.ShippingCents,
		DiscountCents: req.DiscountCents,
		TotalCents:    req.TotalCents,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Order Placed Successfully"})
}

func (h *Handler) processOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ProcessOrder")
	defer span.End()

	if _, err := h.service.Advance(ctx, chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Order Processed Successfully"})
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DeleteOrder")
	defer span.End()

	if err := h.service.Remove(ctx, chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Order Deleted Successfully"})
}

// fail maps domain errors to client statuses. Infrastructure failures get a
// generic message; internals never reach the response body.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Order Not Found"})
	case errors.Is(err, domain.ErrInvalidOrder):
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "insufficient stock for one or more items"})
	default:
		h.log.Error("request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
