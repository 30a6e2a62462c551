package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/adesina-femi/staffcore/internal/web"
	"github.com/adesina-femi/staffcore/modules/cooperatives/services"
)

type ActorGetter func(ctx context.Context) string

type CooperativesController struct {
	Svc   *services.CooperativesService
	Actor ActorGetter
}

type cooperativeAPIRequest struct {
	Name                string `json:"name"`
	ContactPerson       string `json:"contact_person"`
	Phone               string `json:"phone"`
	Email               string `json:"email"`
	Address             string `json:"address"`
	DefaultInterestRate string `json:"default_interest_rate"`
	IsActive            *bool  `json:"is_active"`
}

func (req cooperativeAPIRequest) toInput() services.CooperativeInput {
	return services.CooperativeInput{
		Name:                req.Name,
		ContactPerson:       req.ContactPerson,
		Phone:               req.Phone,
		Email:               req.Email,
		Address:             req.Address,
		DefaultInterestRate: req.DefaultInterestRate,
		IsActive:            req.IsActive,
	}
}

func (c CooperativesController) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		activeOnly := strings.TrimSpace(r.URL.Query().Get("active")) == "true"
		list, err := c.Svc.List(r.Context(), activeOnly)
		if err != nil {
			web.WriteServiceError(w, r, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, map[string]any{"cooperatives": list})

	case http.MethodPost:
		var req cooperativeAPIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			web.WriteError(w, r, http.StatusBadRequest, "bad_json", "bad json")
			return
		}
		created, err := c.Svc.Create(r.Context(), c.Actor(r.Context()), req.toInput())
		if err != nil {
			web.WriteServiceError(w, r, err)
			return
		}
		web.WriteJSON(w, http.StatusCreated, created)

	default:
		web.WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (c CooperativesController) HandleItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	switch r.Method {
	case http.MethodGet:
		coop, err := c.Svc.Get(r.Context(), id)
		if err != nil {
			web.WriteServiceError(w, r, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, coop)

	case http.MethodPut:
		var req cooperativeAPIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			web.WriteError(w, r, http.StatusBadRequest, "bad_json", "bad json")
			return
		}
		updated, err := c.Svc.Update(r.Context(), c.Actor(r.Context()), id, req.toInput())
		if err != nil {
			web.WriteServiceError(w, r, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := c.Svc.Delete(r.Context(), c.Actor(r.Context()), id); err != nil {
			web.WriteServiceError(w, r, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, map[string]any{"deleted": id})

	default:
		web.WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}
