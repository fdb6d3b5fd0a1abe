package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ostkru/trading/db"
)

// CreateOfferHandler обрабатывает POST /offers. Координаты оффера берутся
// со склада; latitude/longitude из тела игнорируются схемой запроса.
func (h *Handler) CreateOfferHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req db.CreateOfferRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	offer, err := h.Store.CreateOffer(r.Context(), &req, user.ID)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, offer)
}

func (h *Handler) GetOfferHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid offer id")
		return
	}

	offer, err := h.Store.GetOffer(r.Context(), id)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, offer)
}

// ListOffersHandler обрабатывает GET /offers?filter=my|others|all&offer_type=...
// Неизвестное значение filter молча приводится к my.
func (h *Handler) ListOffersHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	params := parsePaginationParams(r)

	filter := db.OfferFilter{
		Scope:     db.NormalizeScope(r.URL.Query().Get("filter")),
		OfferType: r.URL.Query().Get("offer_type"),
	}

	offers, err := h.Store.ListOffers(r.Context(), &filter, user.ID, params.Limit, params.Offset)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"offers": offers})
}

// FilterOffersHandler обрабатывает POST /offers/filter с составным фильтром в теле
func (h *Handler) FilterOffersHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	params := parsePaginationParams(r)

	var filter db.OfferFilter
	if err := decodeBody(w, r, &filter); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	offers, err := h.Store.ListOffers(r.Context(), &filter, user.ID, params.Limit, params.Offset)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"offers": offers})
}

// parseOfferFilterQuery собирает фильтр из query-параметров публичной выборки
func parseOfferFilterQuery(r *http.Request) *db.OfferFilter {
	q := r.URL.Query()
	filter := &db.OfferFilter{OfferType: q.Get("offer_type")}

	if v, err := strconv.ParseFloat(q.Get("price_min"), 64); err == nil {
		filter.PriceMin = &v
	}
	if v, err := strconv.ParseFloat(q.Get("price_max"), 64); err == nil {
		filter.PriceMax = &v
	}
	if v, err := strconv.Atoi(q.Get("available_lots")); err == nil {
		filter.AvailableLots = &v
	}
	if v, err := strconv.Atoi(q.Get("tax_nds")); err == nil {
		filter.TaxNDS = &v
	}
	if v, err := strconv.Atoi(q.Get("max_shipping_days")); err == nil {
		filter.MaxShippingDays = &v
	}

	minLat, errMinLat := strconv.ParseFloat(q.Get("min_lat"), 64)
	maxLat, errMaxLat := strconv.ParseFloat(q.Get("max_lat"), 64)
	minLon, errMinLon := strconv.ParseFloat(q.Get("min_lon"), 64)
	maxLon, errMaxLon := strconv.ParseFloat(q.Get("max_lon"), 64)
	if errMinLat == nil && errMaxLat == nil && errMinLon == nil && errMaxLon == nil {
		filter.Geographic = &db.GeographicFilter{
			MinLatitude:  minLat,
			MaxLatitude:  maxLat,
			MinLongitude: minLon,
			MaxLongitude: maxLon,
		}
	}
	return filter
}

// ListPublicOffersHandler обрабатывает GET /offers/public без авторизации.
// Переданный токен не ошибка, он просто не влияет на выборку.
func (h *Handler) ListPublicOffersHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)
	filter := parseOfferFilterQuery(r)

	offers, err := h.Store.ListPublicOffers(r.Context(), filter, params.Limit, params.Offset)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"offers": offers})
}

// FilterPublicOffersHandler обрабатывает POST /offers/public/filter
func (h *Handler) FilterPublicOffersHandler(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	var filter db.OfferFilter
	if err := decodeBody(w, r, &filter); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	offers, err := h.Store.ListPublicOffers(r.Context(), &filter, params.Limit, params.Offset)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"offers": offers})
}

func (h *Handler) UpdateOfferHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid offer id")
		return
	}

	var req db.UpdateOfferRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	offer, err := h.Store.UpdateOffer(r.Context(), id, &req, user.ID)
	if err != nil {
		h.writeStorageError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, offer)
}

func (h *Handler) DeleteOfferHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid offer id")
		return
	}

	if err := h.Store.DeleteOffer(r.Context(), id, user.ID); err != nil {
		h.writeStorageError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "offer deleted"})
}
