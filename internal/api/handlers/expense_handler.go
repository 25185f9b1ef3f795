package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/divvyup/divvy/internal/middleware"
	"github.com/divvyup/divvy/internal/service"
)

// ExpenseHandler handles HTTP requests for the expense ledger.
type ExpenseHandler struct {
	service *service.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(service *service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

// Create records a new expense with its splits.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	groupID := chi.URLParam(r, "groupID")

	var payload service.ExpenseInput
	if err := decode(r, &payload); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	view, err := h.service.Create(r.Context(), userID, groupID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, view)
}

// Update replaces an expense wholesale, splits included.
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	groupID := chi.URLParam(r, "groupID")
	expenseID := chi.URLParam(r, "expenseID")

	var payload service.ExpenseInput
	if err := decode(r, &payload); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	view, err := h.service.Edit(r.Context(), userID, groupID, expenseID, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Delete removes an expense and its splits.
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	groupID := chi.URLParam(r, "groupID")
	expenseID := chi.URLParam(r, "expenseID")

	if err := h.service.Delete(r.Context(), userID, groupID, expenseID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
