package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ostkru/trading/db"
)

// CreateProductHandler обрабатывает POST /products
func (h *Handler) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req db.CreateProductRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	product, err := h.Store.CreateProduct(r.Context(), &req, user.ID)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, product)
}

// BatchCreateProductsHandler обрабатывает POST /products/batch.
// Пакет создается транзакцией: либо все позиции, либо ни одной.
func (h *Handler) BatchCreateProductsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Products []db.CreateProductRequest `json:"products"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	products, err := h.Store.CreateProducts(r.Context(), req.Products, user.ID)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{"products": products})
}

// GetProductHandler отдает товар любому авторизованному пользователю
func (h *Handler) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.Store.GetProduct(r.Context(), id)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, product)
}

// ListProductsHandler возвращает товары вызывающего
func (h *Handler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	params := parsePaginationParams(r)

	products, err := h.Store.ListProducts(r.Context(), user.ID, params.Limit, params.Offset)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

// UpdateProductHandler обрабатывает PUT /products/{id}, только для владельца
func (h *Handler) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req db.UpdateProductRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	product, err := h.Store.UpdateProduct(r.Context(), id, &req, user.ID)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, product)
}

// DeleteProductHandler обрабатывает DELETE /products/{id}, только для владельца
func (h *Handler) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.Store.DeleteProduct(r.Context(), id, user.ID); err != nil {
		h.writeStorageError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}
