package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ostkru/trading/db"
)

// Handler оборачивает Storage для доступа к данным
type Handler struct {
	Store StorageInterface
	Log   *zap.Logger
}

// NewHandler создает новый Handler
func NewHandler(store StorageInterface, log *zap.Logger) *Handler {
	return &Handler{Store: store, Log: log}
}

// PingHandler отвечает "ok" для проверки сервера
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

const maxBodySize = 1048576

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Log.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeStorageError переводит ошибки хранилища в HTTP статусы.
// Внутренние ошибки наружу не утекают, только в лог.
func (h *Handler) writeStorageError(w http.ResponseWriter, err error) {
	switch {
	case db.IsValidation(err):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, db.ErrSelfTrade), errors.Is(err, db.ErrInsufficientLot):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, db.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, db.ErrForbidden):
		h.writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, db.ErrConflict):
		h.writeError(w, http.StatusConflict, "conflict with existing data")
	default:
		h.Log.Error("storage error", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

type PaginationParams struct {
	Limit  int
	Offset int
}

// parsePaginationParams парсит limit/offset и page/per_page из query.
// page/per_page пересчитываются в limit и offset, страницы нумеруются с 1.
func parsePaginationParams(r *http.Request) PaginationParams {
	params := PaginationParams{Limit: 20, Offset: 0}
	q := r.URL.Query()

	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 && l <= 100 {
		params.Limit = l
	}
	if o, err := strconv.Atoi(q.Get("offset")); err == nil && o >= 0 {
		params.Offset = o
	}
	if pp, err := strconv.Atoi(q.Get("per_page")); err == nil && pp > 0 && pp <= 100 {
		params.Limit = pp
	}
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 1 {
		params.Offset = (p - 1) * params.Limit
	}
	return params
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
