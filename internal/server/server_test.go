package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/adesina-femi/staffcore/pkg/authz"
	"github.com/adesina-femi/staffcore/pkg/conjuss"
)

const testTable = `
grades:
  - grade: 5
    steps:
      - { step: 3, base_pay: 81200 }
  - grade: 6
    steps:
      - { step: 1, base_pay: 90500 }
`

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	table, err := conjuss.Parse([]byte(testTable))
	if err != nil {
		t.Fatalf("parse table: %v", err)
	}
	authorizer, err := authz.NewAuthorizer("../../configs/authz/model.conf", "../../configs/authz/policy.csv", authz.ModeEnforce)
	if err != nil {
		t.Fatalf("authorizer: %v", err)
	}
	log := logrus.New()
	log.SetOutput(io.Discard)

	return New(Deps{Authorizer: authorizer, Conjuss: table, Log: log}).Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path, role string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if role != "" {
		req.Header.Set("X-Role", role)
		req.Header.Set("X-Actor", role+"-user")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(t)
	rec := doJSON(t, h, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestAuthorization(t *testing.T) {
	h := newTestHandler(t)

	if rec := doJSON(t, h, http.MethodGet, "/api/v1/staff", "", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("anonymous: status=%d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodPost, "/api/v1/staff", "auditor", map[string]any{}); rec.Code != http.StatusForbidden {
		t.Fatalf("auditor write: status=%d", rec.Code)
	}
	if rec := doJSON(t, h, http.MethodGet, "/api/v1/staff", "hr_officer", nil); rec.Code != http.StatusOK {
		t.Fatalf("hr_officer read: status=%d body=%s", rec.Code, rec.Body.String())
	}
	if rec := doJSON(t, h, http.MethodGet, "/api/v1/audit-logs", "auditor", nil); rec.Code != http.StatusOK {
		t.Fatalf("auditor audit read: status=%d", rec.Code)
	}
}

func TestLoanLifecycleOverHTTP(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/staff", "hr_officer", map[string]any{
		"staff_number": "FCDA/0042",
		"first_name":   "Amina",
		"last_name":    "Bello",
		"grade_level":  5,
		"step":         3,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create staff: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var member struct {
		ID      string `json:"id"`
		BasePay string `json:"base_pay"`
	}
	decode(t, rec, &member)
	if member.BasePay != "81200.00" {
		t.Fatalf("base pay=%s", member.BasePay)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/v1/loans", "payroll_officer", map[string]any{
		"staff_id":            member.ID,
		"total_amount":        "120000",
		"annual_rate_percent": "12",
		"method":              "flat",
		"installments":        12,
		"start_date":          "2024-04-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create loan: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var loan struct {
		ID           string `json:"id"`
		Status       string `json:"status"`
		MonthlyTotal string `json:"monthly_total"`
	}
	decode(t, rec, &loan)
	if loan.Status != "pending" || loan.MonthlyTotal != "11200.00" {
		t.Fatalf("loan=%+v", loan)
	}

	// Approval requires the admin role.
	if rec := doJSON(t, h, http.MethodPost, "/api/v1/loans/"+loan.ID+"/approve", "payroll_officer", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("payroll approve: status=%d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodPost, "/api/v1/loans/"+loan.ID+"/approve", "admin", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin approve: status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/api/v1/loans/"+loan.ID+"/repayments", "payroll_officer", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("repayment: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var after struct {
		InstallmentsPaid int    `json:"installments_paid"`
		RemainingBalance string `json:"remaining_balance"`
	}
	decode(t, rec, &after)
	if after.InstallmentsPaid != 1 || after.RemainingBalance != "110000.00" {
		t.Fatalf("after repayment=%+v", after)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/loans/"+loan.ID+"/schedule", "payroll_officer", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("schedule: status=%d", rec.Code)
	}
	var sched struct {
		Schedule []struct {
			IsPaid bool `json:"is_paid"`
		} `json:"schedule"`
	}
	decode(t, rec, &sched)
	if len(sched.Schedule) != 12 || !sched.Schedule[0].IsPaid || sched.Schedule[1].IsPaid {
		t.Fatalf("schedule=%+v", sched)
	}

	// Term edits are refused once a repayment exists.
	rec = doJSON(t, h, http.MethodPut, "/api/v1/loans/"+loan.ID, "payroll_officer", map[string]any{
		"total_amount":        "100000",
		"annual_rate_percent": "10",
		"method":              "flat",
		"installments":        10,
		"start_date":          "2024-04-01",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("term edit after repayment: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestPromotionApprovalOverHTTP(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/staff", "hr_officer", map[string]any{
		"staff_number": "FCDA/0001",
		"first_name":   "Chinedu",
		"last_name":    "Okafor",
		"grade_level":  5,
		"step":         3,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create staff: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var member struct {
		ID string `json:"id"`
	}
	decode(t, rec, &member)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/promotions", "hr_officer", map[string]any{
		"staff_id":       member.ID,
		"type":           "regular",
		"to_grade_level": 6,
		"to_step":        1,
		"effective_date": "2099-01-01",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create promotion: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var promo struct {
		ID string `json:"id"`
	}
	decode(t, rec, &promo)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/promotions/"+promo.ID+"/approve", "admin", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/staff/"+member.ID, "hr_officer", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get staff: status=%d", rec.Code)
	}
	var updated struct {
		GradeLevel int    `json:"grade_level"`
		Step       int    `json:"step"`
		BasePay    string `json:"base_pay"`
	}
	decode(t, rec, &updated)
	if updated.GradeLevel != 6 || updated.Step != 1 || updated.BasePay != "90500.00" {
		t.Fatalf("updated staff=%+v", updated)
	}
}
