package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/adesina-femi/staffcore/internal/web"
	"github.com/adesina-femi/staffcore/modules/allowances/domain/ports"
	"github.com/adesina-femi/staffcore/modules/allowances/services"
)

type ActorGetter func(ctx context.Context) string

type AllowancesController struct {
	Svc   *services.AllowancesService
	Actor ActorGetter
}

type ruleRequest struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Value    string `json:"value"`
	IsActive *bool  `json:"is_active"`
}

func (req ruleRequest) toInput() services.RuleInput {
	return services.RuleInput{Name: req.Name, Kind: req.Kind, Value: req.Value, IsActive: req.IsActive}
}

func (c AllowancesController) HandleRules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		activeOnly := strings.TrimSpace(r.URL.Query().Get("active")) == "true"
		list, err := c.Svc.ListRules(r.Context(), activeOnly)
		if err != nil {
			web.WriteServiceError(w, r, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, map[string]any{"rules": list})

	case http.MethodPost:
		var req ruleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			web.WriteError(w, r, http.StatusBadRequest, "bad_json", "bad json")
			return
		}
		created, err := c.Svc.CreateRule(r.Context(), c.Actor(r.Context()), req.toInput())
		if err != nil {
			web.WriteServiceError(w, r, err)
			return
		}
		web.WriteJSON(w, http.StatusCreated, created)

	default:
		web.WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (c AllowancesController) HandleRuleItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	switch r.Method {
	case http.MethodGet:
		rule, err := c.Svc.GetRule(r.Context(), id)
		if err != nil {
			web.WriteServiceError(w, r, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, rule)

	case http.MethodPut:
		var req ruleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			web.WriteError(w, r, http.StatusBadRequest, "bad_json", "bad json")
			return
		}
		updated, err := c.Svc.UpdateRule(r.Context(), c.Actor(r.Context()), id, req.toInput())
		if err != nil {
			web.WriteServiceError(w, r, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := c.Svc.DeleteRule(r.Context(), c.Actor(r.Context()), id); err != nil {
			web.WriteServiceError(w, r, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, map[string]any{"deleted": id})

	default:
		web.WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (c AllowancesController) HandleIndividual(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		list, err := c.Svc.ListIndividual(r.Context(), ports.IndividualFilter{
			StaffID: q.Get("staff_id"),
			Period:  q.Get("period"),
			Status:  q.Get("status"),
		})
		if err != nil {
			web.WriteServiceError(w, r, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, map[string]any{"allowances": list})

	case http.MethodPost:
		var req struct {
			StaffID     string `json:"staff_id"`
			Type        string `json:"type"`
			Description string `json:"description"`
			Amount      string `json:"amount"`
			Period      string `json:"period"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			web.WriteError(w, r, http.StatusBadRequest, "bad_json", "bad json")
			return
		}
		created, err := c.Svc.CreateIndividual(r.Context(), c.Actor(r.Context()), services.IndividualInput{
			StaffID:     req.StaffID,
			Type:        req.Type,
			Description: req.Description,
			Amount:      req.Amount,
			Period:      req.Period,
		})
		if err != nil {
			web.WriteServiceError(w, r, err)
			return
		}
		web.WriteJSON(w, http.StatusCreated, created)

	default:
		web.WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (c AllowancesController) HandleIndividualItem(w http.ResponseWriter, r *http.Request) {
	a, err := c.Svc.GetIndividual(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		web.WriteServiceError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, a)
}

func (c AllowancesController) HandleApply(w http.ResponseWriter, r *http.Request) {
	updated, err := c.Svc.MarkApplied(r.Context(), c.Actor(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		web.WriteServiceError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, updated)
}

func (c AllowancesController) HandleCancel(w http.ResponseWriter, r *http.Request) {
	updated, err := c.Svc.Cancel(r.Context(), c.Actor(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		web.WriteServiceError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, updated)
}
