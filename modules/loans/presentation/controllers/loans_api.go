package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/adesina-femi/staffcore/internal/web"
	"github.com/adesina-femi/staffcore/modules/loans/domain/ports"
	"github.com/adesina-femi/staffcore/modules/loans/services"
)

type ActorGetter func(ctx context.Context) string

type LoansController struct {
	Svc   *services.LoansService
	Actor ActorGetter
}

type loanTermsRequest struct {
	TotalAmount       string `json:"total_amount"`
	AnnualRatePercent string `json:"annual_rate_percent"`
	Method            string `json:"method"`
	Installments      int    `json:"installments"`
	StartDate         string `json:"start_date"`
}

func (req loanTermsRequest) toInput() services.LoanTermsInput {
	return services.LoanTermsInput{
		TotalAmount:       req.TotalAmount,
		AnnualRatePercent: req.AnnualRatePercent,
		Method:            req.Method,
		Installments:      req.Installments,
		StartDate:         req.StartDate,
	}
}

type createLoanRequest struct {
	StaffID       string `json:"staff_id"`
	CooperativeID string `json:"cooperative_id"`
	Notes         string `json:"notes"`
	loanTermsRequest
}

func (c LoansController) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		list, err := c.Svc.List(r.Context(), ports.ListFilter{
			StaffID:       q.Get("staff_id"),
			CooperativeID: q.Get("cooperative_id"),
			Status:        q.Get("status"),
		})
		if err != nil {
			web.WriteServiceError(w, r, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, map[string]any{"loans": list})

	case http.MethodPost:
		var req createLoanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			web.WriteError(w, r, http.StatusBadRequest, "bad_json", "bad json")
			return
		}
		created, err := c.Svc.Create(r.Context(), c.Actor(r.Context()), services.CreateLoanInput{
			StaffID:       req.StaffID,
			CooperativeID: req.CooperativeID,
			Notes:         req.Notes,
			Terms:         req.toInput(),
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

func (c LoansController) HandleItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	switch r.Method {
	case http.MethodGet:
		loan, err := c.Svc.Get(r.Context(), id)
		if err != nil {
			web.WriteServiceError(w, r, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, loan)

	case http.MethodPut:
		var req loanTermsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			web.WriteError(w, r, http.StatusBadRequest, "bad_json", "bad json")
			return
		}
		updated, err := c.Svc.UpdateTerms(r.Context(), c.Actor(r.Context()), id, req.toInput())
		if err != nil {
			web.WriteServiceError(w, r, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, updated)

	default:
		web.WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func (c LoansController) HandleSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := c.Svc.Schedule(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		web.WriteServiceError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, map[string]any{"schedule": schedule})
}

func (c LoansController) HandleApprove(w http.ResponseWriter, r *http.Request) {
	approved, err := c.Svc.Approve(r.Context(), c.Actor(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		web.WriteServiceError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, approved)
}

func (c LoansController) HandleRepayments(w http.ResponseWriter, r *http.Request) {
	updated, err := c.Svc.RecordRepayment(r.Context(), c.Actor(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		web.WriteServiceError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, updated)
}

func (c LoansController) HandleStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.WriteError(w, r, http.StatusBadRequest, "bad_json", "bad json")
		return
	}
	updated, err := c.Svc.SetStatus(r.Context(), c.Actor(r.Context()), mux.Vars(r)["id"], req.Status)
	if err != nil {
		web.WriteServiceError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, updated)
}

func (c LoansController) HandleNotes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.WriteError(w, r, http.StatusBadRequest, "bad_json", "bad json")
		return
	}
	updated, err := c.Svc.UpdateNotes(r.Context(), c.Actor(r.Context()), mux.Vars(r)["id"], req.Notes)
	if err != nil {
		web.WriteServiceError(w, r, err)
		return
	}
	web.WriteJSON(w, http.StatusOK, updated)
}

func (c LoansController) HandleAdjustments(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	switch r.Method {
	case http.MethodGet:
		list, err := c.Svc.ListAdjustments(r.Context(), id)
		if err != nil {
			web.WriteServiceError(w, r, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, map[string]any{"adjustments": list})

	case http.MethodPost:
		var req struct {
			NewBalance string `json:"new_balance"`
			Reason     string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			web.WriteError(w, r, http.StatusBadRequest, "bad_json", "bad json")
			return
		}
		adj, err := c.Svc.AdjustBalance(r.Context(), c.Actor(r.Context()), id, services.AdjustBalanceInput{
			NewBalance: req.NewBalance,
			Reason:     req.Reason,
		})
		if err != nil {
			web.WriteServiceError(w, r, err)
			return
		}
		web.WriteJSON(w, http.StatusCreated, adj)

	default:
		web.WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}
