package http

import (
	"net/http"

	"rateio/internal/log"
	"rateio/internal/services"
)

// Handler serves the JSON API over the ledger services.
type Handler struct {
	directory *services.DirectoryService
	expenses  *services.ExpenseService
	recurring *services.RecurringProcessor
	dashboard *services.DashboardService
}

func NewHandler(directory *services.DirectoryService, expenses *services.ExpenseService, recurring *services.RecurringProcessor, dashboard *services.DashboardService) *Handler {
	return &Handler{
		directory: directory,
		expenses:  expenses,
		recurring: recurring,
		dashboard: dashboard,
	}
}

func badRequest(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, http.StatusBadRequest, "invalid request", err)
}

func (h *Handler) ListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := h.directory.ListPeople(r.Context())
	if err != nil {
		writeServiceError(w, r, log.OpList, err)
		return
	}
	out := make([]personResponse, len(people))
	for i, p := range people {
		out[i] = toPersonResponse(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	p, err := h.directory.GetPerson(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonResponse(p))
}

func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req personRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, err)
		return
	}
	p, err := h.directory.CreatePerson(r.Context(), req.patch())
	if err != nil {
		writeServiceError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPersonResponse(p))
}

func (h *Handler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	var req personRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, err)
		return
	}
	p, err := h.directory.UpdatePerson(r.Context(), id, req.patch())
	if err != nil {
		writeServiceError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, toPersonResponse(p))
}

func (h *Handler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	if err := h.directory.DeletePerson(r.Context(), id); err != nil {
		writeServiceError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.directory.ListAccounts(r.Context())
	if err != nil {
		writeServiceError(w, r, log.OpList, err)
		return
	}
	out := make([]accountResponse, len(accounts))
	for i, a := range accounts {
		out[i] = toAccountResponse(a)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	a, err := h.directory.GetAccount(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(a))
}

func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, err)
		return
	}
	a, err := h.directory.CreateAccount(r.Context(), req.patch())
	if err != nil {
		writeServiceError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountResponse(a))
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	var req accountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, err)
		return
	}
	a, err := h.directory.UpdateAccount(r.Context(), id, req.patch())
	if err != nil {
		writeServiceError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(a))
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	if err := h.directory.DeleteAccount(r.Context(), id); err != nil {
		writeServiceError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
