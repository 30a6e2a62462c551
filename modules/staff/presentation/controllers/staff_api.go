package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/adesina-femi/staffcore/internal/web"
	"github.com/adesina-femi/staffcore/modules/staff/domain/ports"
	"github.com/adesina-femi/staffcore/modules/staff/services"
)

type ActorGetter func(ctx context.Context) string

type StaffController struct {
	Svc   *services.StaffService
	Actor ActorGetter
}

type staffAPIRequest struct {
	StaffNumber      string `json:"staff_number"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Email            string `json:"email"`
	GradeLevel       int    `json:"grade_level"`
	Step             int    `json:"step"`
	EmploymentStatus string `json:"employment_status"`
	HireDate         string `json:"hire_date"`
}

func (c StaffController) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		f := ports.ListFilter{
			EmploymentStatus: strings.TrimSpace(r.URL.Query().Get("employment_status")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("grade_level")); raw != "" {
			g, err := strconv.Atoi(raw)
			if err != nil {
				web.WriteError(w, r, http.StatusBadRequest, "invalid_request", "grade_level must be an integer")
				return
			}
			f.GradeLevel = g
		}
		list, err := c.Svc.List(r.Context(), f)
		if err != nil {
			web.WriteServiceError(w, r, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, map[string]any{"staff": list})

	case http.MethodPost:
		var req staffAPIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			web.WriteError(w, r, http.StatusBadRequest, "bad_json", "bad json")
			return
		}
		created, err := c.Svc.Create(r.Context(), c.Actor(r.Context()), services.CreateStaffInput{
			StaffNumber:      req.StaffNumber,
			FirstName:        req.FirstName,
			LastName:         req.LastName,
			Email:            req.Email,
			GradeLevel:       req.GradeLevel,
			Step:             req.Step,
			EmploymentStatus: req.EmploymentStatus,
			HireDate:         req.HireDate,
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

func (c StaffController) HandleItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	switch r.Method {
	case http.MethodGet:
		st, err := c.Svc.Get(r.Context(), id)
		if err != nil {
			web.WriteServiceError(w, r, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, st)

	case http.MethodPut:
		var req staffAPIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			web.WriteError(w, r, http.StatusBadRequest, "bad_json", "bad json")
			return
		}
		updated, err := c.Svc.Update(r.Context(), c.Actor(r.Context()), id, services.UpdateStaffInput{
			FirstName:        req.FirstName,
			LastName:         req.LastName,
			Email:            req.Email,
			EmploymentStatus: req.EmploymentStatus,
		})
		if err != nil {
			web.WriteServiceError(w, r, err)
			return
		}
		web.WriteJSON(w, http.StatusOK, updated)

	default:
		web.WriteError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}
