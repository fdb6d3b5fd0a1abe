package handlers

import (
	"net/http"

	"github.com/ostkru/trading/db"
)

// RegisterUserHandler обрабатывает POST /user/registration без авторизации:
// это единственный способ получить API ключ. Ключ возвращается в ответе.
func (h *Handler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user := &db.User{Username: req.Username, Email: req.Email}
	if err := h.Store.CreateUser(r.Context(), user); err != nil {
		h.writeStorageError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, user)
}
