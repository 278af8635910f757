package http

import (
	"net/http"

	"rateio/internal/core"
	"rateio/internal/log"
	"rateio/internal/storage"
)

// ListExpenses supports the optional account_id and person_id filters.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	accountID, err := int64Query(r, "account_id")
	if err != nil {
		badRequest(w, r, err)
		return
	}
	personID, err := int64Query(r, "person_id")
	if err != nil {
		badRequest(w, r, err)
		return
	}

	expenses, err := h.expenses.List(r.Context(), storage.ExpenseFilter{AccountID: accountID, PersonID: personID})
	if err != nil {
		writeServiceError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponses(expenses))
}

func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	e, err := h.expenses.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(e))
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		writeServiceError(w, r, log.OpCreate, err)
		return
	}

	var e core.Expense
	patch.Apply(&e)
	created, err := h.expenses.Create(r.Context(), e)
	if err != nil {
		writeServiceError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(created))
}

// UpdateExpense serves both PUT and PATCH: absent fields keep their stored
// values and allocation always re-runs over the whole expense.
func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		writeServiceError(w, r, log.OpUpdate, err)
		return
	}

	updated, err := h.expenses.Update(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(updated))
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	if err := h.expenses.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
