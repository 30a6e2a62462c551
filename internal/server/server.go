// Package server wires stores, services and controllers into one HTTP
// handler. With a database pool the pg stores are used; without one the
// server runs fully in memory, which the tests and local demos rely on.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/adesina-femi/staffcore/internal/audit"
	"github.com/adesina-femi/staffcore/internal/web"
	allowports "github.com/adesina-femi/staffcore/modules/allowances/domain/ports"
	allowpersist "github.com/adesina-femi/staffcore/modules/allowances/infrastructure/persistence"
	allowctrl "github.com/adesina-femi/staffcore/modules/allowances/presentation/controllers"
	allowsvc "github.com/adesina-femi/staffcore/modules/allowances/services"
	coopports "github.com/adesina-femi/staffcore/modules/cooperatives/domain/ports"
	cooppersist "github.com/adesina-femi/staffcore/modules/cooperatives/infrastructure/persistence"
	coopctrl "github.com/adesina-femi/staffcore/modules/cooperatives/presentation/controllers"
	coopsvc "github.com/adesina-femi/staffcore/modules/cooperatives/services"
	loanports "github.com/adesina-femi/staffcore/modules/loans/domain/ports"
	loanpersist "github.com/adesina-femi/staffcore/modules/loans/infrastructure/persistence"
	loanctrl "github.com/adesina-femi/staffcore/modules/loans/presentation/controllers"
	loansvc "github.com/adesina-femi/staffcore/modules/loans/services"
	promoports "github.com/adesina-femi/staffcore/modules/promotions/domain/ports"
	promopersist "github.com/adesina-femi/staffcore/modules/promotions/infrastructure/persistence"
	promoctrl "github.com/adesina-femi/staffcore/modules/promotions/presentation/controllers"
	promosvc "github.com/adesina-femi/staffcore/modules/promotions/services"
	staffports "github.com/adesina-femi/staffcore/modules/staff/domain/ports"
	staffpersist "github.com/adesina-femi/staffcore/modules/staff/infrastructure/persistence"
	staffctrl "github.com/adesina-femi/staffcore/modules/staff/presentation/controllers"
	staffsvc "github.com/adesina-femi/staffcore/modules/staff/services"
	"github.com/adesina-femi/staffcore/pkg/authz"
	"github.com/adesina-femi/staffcore/pkg/conjuss"
)

type Deps struct {
	// Pool is optional; nil selects the in-memory stores.
	Pool       *pgxpool.Pool
	Authorizer *authz.Authorizer
	Conjuss    *conjuss.Table
	Log        *logrus.Logger
}

type Server struct {
	router     *mux.Router
	authorizer *authz.Authorizer
	log        *logrus.Logger
}

func New(deps Deps) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		authorizer: deps.Authorizer,
		log:        deps.Log,
	}

	var (
		auditStore audit.Store
		staffStore staffports.StaffStore
		coopStore  coopports.CooperativeStore
		loanStore  loanports.LoanStore
		promoStore promoports.PromotionStore
		ruleStore  allowports.RuleStore
		indivStore allowports.IndividualStore
	)

	if deps.Pool != nil {
		auditStore = audit.NewPGStore(deps.Pool)
		staffStore = staffpersist.NewPGStore(deps.Pool)
		coopStore = cooppersist.NewPGStore(deps.Pool)
		loanStore = loanpersist.NewPGStore(deps.Pool)
		promoStore = promopersist.NewPGStore(deps.Pool)
		allowPG := allowpersist.NewPGStore(deps.Pool)
		ruleStore = allowPG
		indivStore = allowPG
	} else {
		auditStore = audit.NewMemoryStore()
		staffMem := staffpersist.NewMemoryStore()
		staffStore = staffMem
		coopStore = cooppersist.NewMemoryStore()
		loanStore = loanpersist.NewMemoryStore()
		promoStore = promopersist.NewMemoryStore(staffMem)
		allowMem := allowpersist.NewMemoryStore()
		ruleStore = allowMem
		indivStore = allowMem
	}

	staffService := staffsvc.NewStaffService(staffStore, deps.Conjuss, auditStore, deps.Log)
	coopService := coopsvc.NewCooperativesService(coopStore, loanStore, auditStore, deps.Log)
	loanService := loansvc.NewLoansService(loanStore, staffStore, coopStore, auditStore, deps.Log)
	promoService := promosvc.NewPromotionsService(promoStore, staffStore, auditStore, deps.Log)
	allowService := allowsvc.NewAllowancesService(ruleStore, indivStore, staffStore, auditStore, deps.Log)

	staff := staffctrl.StaffController{Svc: staffService, Actor: ActorFromContext}
	coops := coopctrl.CooperativesController{Svc: coopService, Actor: ActorFromContext}
	loans := loanctrl.LoansController{Svc: loanService, Actor: ActorFromContext}
	promos := promoctrl.PromotionsController{Svc: promoService, Actor: ActorFromContext}
	allows := allowctrl.AllowancesController{Svc: allowService, Actor: ActorFromContext}
	auditAPI := audit.Controller{Store: auditStore}

	s.router.Use(principalMiddleware)
	s.router.Use(loggingMiddleware(deps.Log))

	s.router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		web.WriteJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/staff", s.guard("staff", "read", staff.HandleCollection)).Methods(http.MethodGet)
	api.HandleFunc("/staff", s.guard("staff", "write", staff.HandleCollection)).Methods(http.MethodPost)
	api.HandleFunc("/staff/{id}", s.guard("staff", "read", staff.HandleItem)).Methods(http.MethodGet)
	api.HandleFunc("/staff/{id}", s.guard("staff", "write", staff.HandleItem)).Methods(http.MethodPut)

	api.HandleFunc("/cooperatives", s.guard("cooperatives", "read", coops.HandleCollection)).Methods(http.MethodGet)
	api.HandleFunc("/cooperatives", s.guard("cooperatives", "write", coops.HandleCollection)).Methods(http.MethodPost)
	api.HandleFunc("/cooperatives/{id}", s.guard("cooperatives", "read", coops.HandleItem)).Methods(http.MethodGet)
	api.HandleFunc("/cooperatives/{id}", s.guard("cooperatives", "write", coops.HandleItem)).Methods(http.MethodPut, http.MethodDelete)

	api.HandleFunc("/loans", s.guard("loans", "read", loans.HandleCollection)).Methods(http.MethodGet)
	api.HandleFunc("/loans", s.guard("loans", "write", loans.HandleCollection)).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}", s.guard("loans", "read", loans.HandleItem)).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}", s.guard("loans", "write", loans.HandleItem)).Methods(http.MethodPut)
	api.HandleFunc("/loans/{id}/schedule", s.guard("loans", "read", loans.HandleSchedule)).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/approve", s.guard("loans", "approve", loans.HandleApprove)).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/repayments", s.guard("loans", "write", loans.HandleRepayments)).Methods(http.MethodPost)
	api.HandleFunc("/loans/{id}/status", s.guard("loans", "write", loans.HandleStatus)).Methods(http.MethodPut)
	api.HandleFunc("/loans/{id}/notes", s.guard("loans", "write", loans.HandleNotes)).Methods(http.MethodPut)
	api.HandleFunc("/loans/{id}/adjustments", s.guard("loans", "read", loans.HandleAdjustments)).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}/adjustments", s.guard("loans", "approve", loans.HandleAdjustments)).Methods(http.MethodPost)

	api.HandleFunc("/promotions", s.guard("promotions", "read", promos.HandleCollection)).Methods(http.MethodGet)
	api.HandleFunc("/promotions", s.guard("promotions", "write", promos.HandleCollection)).Methods(http.MethodPost)
	api.HandleFunc("/promotions/{id}", s.guard("promotions", "read", promos.HandleItem)).Methods(http.MethodGet)
	api.HandleFunc("/promotions/{id}/approve", s.guard("promotions", "approve", promos.HandleApprove)).Methods(http.MethodPost)
	api.HandleFunc("/promotions/{id}/reject", s.guard("promotions", "approve", promos.HandleReject)).Methods(http.MethodPost)

	api.HandleFunc("/allowance-rules", s.guard("allowance_rules", "read", allows.HandleRules)).Methods(http.MethodGet)
	api.HandleFunc("/allowance-rules", s.guard("allowance_rules", "write", allows.HandleRules)).Methods(http.MethodPost)
	api.HandleFunc("/allowance-rules/{id}", s.guard("allowance_rules", "read", allows.HandleRuleItem)).Methods(http.MethodGet)
	api.HandleFunc("/allowance-rules/{id}", s.guard("allowance_rules", "write", allows.HandleRuleItem)).Methods(http.MethodPut, http.MethodDelete)

	api.HandleFunc("/individual-allowances", s.guard("individual_allowances", "read", allows.HandleIndividual)).Methods(http.MethodGet)
	api.HandleFunc("/individual-allowances", s.guard("individual_allowances", "write", allows.HandleIndividual)).Methods(http.MethodPost)
	api.HandleFunc("/individual-allowances/{id}", s.guard("individual_allowances", "read", allows.HandleIndividualItem)).Methods(http.MethodGet)
	api.HandleFunc("/individual-allowances/{id}/apply", s.guard("individual_allowances", "write", allows.HandleApply)).Methods(http.MethodPost)
	api.HandleFunc("/individual-allowances/{id}/cancel", s.guard("individual_allowances", "write", allows.HandleCancel)).Methods(http.MethodPost)

	api.HandleFunc("/audit-logs", s.guard("audit_logs", "read", auditAPI.HandleList)).Methods(http.MethodGet)

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}
