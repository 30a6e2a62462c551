package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/adesina-femi/staffcore/internal/web"
	"github.com/adesina-femi/staffcore/modules/promotions/domain/ports"
	"github.com/adesina-femi/staffcore/modules/promotions/services"
)

type ActorGetter func(ctx context.Context) string

type PromotionsController struct {
	Svc   *services.PromotionsService
	Actor ActorGetter
}

func (c PromotionsController) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		list, err := c.Svc.List(r.Context(), ports.ListFilter{
			StaffID: q.Get("staff_id"),
			Status:  q.Get("status"),
		})
		if err != nil {
			web.WriteServiceError(w, r, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, map[string]any{"promotions": list})

	case http.MethodPost:
		var req struct {
			StaffID       string `json:"staff_id"`
			Type          string `json:"type"`
			ToGradeLevel  int    `json:"to_grade_level"`
			ToStep        int    `json:"to_step"`
			EffectiveDate string `json:"effective_date"`
			Reason        string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			web.WriteError(w, r, http.StatusBadRequest, "bad_json", "bad json")
			return
		}
		created, err := c.Svc.Create(r.Context(), c.Actor(r.Context()), services.CreatePromotionInput{
			StaffID:       req.StaffID,
			Type:          req.Type,
			ToGradeLevel:  req.ToGradeLevel,
			ToStep:        req.ToStep,
			EffectiveDate: req.EffectiveDate,
			Reason:        req.Reason,
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

func (c PromotionsController) HandleItem(w http.ResponseWriter, r *http.Request) {
	p, err := c.Svc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		web.WriteServiceError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, p)
}

func (c PromotionsController) HandleApprove(w http.ResponseWriter, r *http.Request) {
	approved, err := c.Svc.Approve(r.Context(), c.Actor(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		web.WriteServiceError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, approved)
}

func (c PromotionsController) HandleReject(w http.ResponseWriter, r *http.Request) {
	rejected, err := c.Svc.Reject(r.Context(), c.Actor(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		web.WriteServiceError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, rejected)
}
