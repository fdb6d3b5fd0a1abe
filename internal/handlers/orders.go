package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ostkru/trading/db"
)

// CreateOrderHandler обрабатывает POST /orders. Роли сторон и тип заказа
// выводятся из типа оффера, лоты резервируются атомарно.
func (h *Handler) CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req db.CreateOrderRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	order, err := h.Store.CreateOrder(r.Context(), &req, user.ID)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, order)
}

// GetOrderHandler отдает заказ только его сторонам
func (h *Handler) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.Store.GetOrder(r.Context(), id, user.ID)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

// ListOrdersHandler обрабатывает GET /orders?role=initiator|counterparty&status=...
func (h *Handler) ListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	params := parsePaginationParams(r)

	role := r.URL.Query().Get("role")
	status := r.URL.Query().Get("status")

	orders, err := h.Store.ListOrders(r.Context(), user.ID, role, status, params.Limit, params.Offset)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

// UpdateOrderStatusHandler обрабатывает PUT /orders/{id}/status.
// Переходы по цепочке статусов разрешены только стороне с нужной ролью.
func (h *Handler) UpdateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Status == "" {
		h.writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	order, err := h.Store.UpdateOrderStatus(r.Context(), id, req.Status, user.ID)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}
