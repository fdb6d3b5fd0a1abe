package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ostkru/trading/db"
)

func (h *Handler) CreateWarehouseHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req db.CreateWarehouseRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	warehouse, err := h.Store.CreateWarehouse(r.Context(), &req, user.ID)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, warehouse)
}

func (h *Handler) GetWarehouseHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid warehouse id")
		return
	}

	warehouse, err := h.Store.GetWarehouse(r.Context(), id)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, warehouse)
}

func (h *Handler) ListWarehousesHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	params := parsePaginationParams(r)

	warehouses, err := h.Store.ListWarehouses(r.Context(), user.ID, params.Limit, params.Offset)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"warehouses": warehouses})
}

func (h *Handler) UpdateWarehouseHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid warehouse id")
		return
	}

	var req db.UpdateWarehouseRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	warehouse, err := h.Store.UpdateWarehouse(r.Context(), id, &req, user.ID)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, warehouse)
}

func (h *Handler) DeleteWarehouseHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid warehouse id")
		return
	}

	if err := h.Store.DeleteWarehouse(r.Context(), id, user.ID); err != nil {
		h.writeStorageError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "warehouse deleted"})
}
