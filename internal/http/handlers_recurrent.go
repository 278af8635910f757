package http

import (
	"net/http"

	"rateio/internal/log"
)

func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.recurring.ListRules(r.Context())
	if err != nil {
		writeServiceError(w, r, log.OpList, err)
		return
	}
	out := make([]ruleResponse, len(rules))
	for i, rule := range rules {
		out[i] = toRuleResponse(rule)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	rule, err := h.recurring.GetRule(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, toRuleResponse(rule))
}

func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		writeServiceError(w, r, log.OpCreate, err)
		return
	}
	rule, err := h.recurring.CreateRule(r.Context(), patch)
	if err != nil {
		writeServiceError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRuleResponse(rule))
}

func (h *Handler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	var req ruleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, r, err)
		return
	}
	patch, err := req.patch()
	if err != nil {
		writeServiceError(w, r, log.OpUpdate, err)
		return
	}
	rule, err := h.recurring.UpdateRule(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, toRuleResponse(rule))
}

func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	if err := h.recurring.DeleteRule(r.Context(), id); err != nil {
		writeServiceError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GenerateOccurrence creates one expense from the rule's template and
// returns all of the rule's expenses, newest first.
func (h *Handler) GenerateOccurrence(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	ref, err := referenceDate(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	expenses, err := h.recurring.GenerateOccurrence(r.Context(), id, ref)
	if err != nil {
		writeServiceError(w, r, log.OpGenerate, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponses(expenses))
}

func (h *Handler) RunDue(w http.ResponseWriter, r *http.Request) {
	ref, err := referenceDate(r)
	if err != nil {
		badRequest(w, r, err)
		return
	}
	n, err := h.recurring.RunDue(r.Context(), ref)
	if err != nil {
		writeServiceError(w, r, log.OpRunDue, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"generated": n})
}
