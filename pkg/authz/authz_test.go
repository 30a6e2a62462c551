package authz

import (
	"os"
	"path/filepath"
	"testing"
)

const testModel = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

const testPolicy = `p, role:payroll_officer, loans, write
p, role:admin, loans, approve
g, role:admin, role:payroll_officer
`

func writeTempPolicy(t *testing.T) (modelPath, policyPath string) {
	t.Helper()
	dir := t.TempDir()
	modelPath = filepath.Join(dir, "model.conf")
	policyPath = filepath.Join(dir, "policy.csv")
	if err := os.WriteFile(modelPath, []byte(testModel), 0o600); err != nil {
		t.Fatalf("write model: %v", err)
	}
	if err := os.WriteFile(policyPath, []byte(testPolicy), 0o600); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	return modelPath, policyPath
}

func TestAuthorize_Enforce(t *testing.T) {
	modelPath, policyPath := writeTempPolicy(t)
	a, err := NewAuthorizer(modelPath, policyPath, ModeEnforce)
	if err != nil {
		t.Fatalf("new authorizer: %v", err)
	}

	allowed, enforced, err := a.Authorize("role:payroll_officer", "loans", "write")
	if err != nil || !allowed || !enforced {
		t.Fatalf("allowed=%v enforced=%v err=%v", allowed, enforced, err)
	}

	allowed, _, err = a.Authorize("role:payroll_officer", "loans", "approve")
	if err != nil || allowed {
		t.Fatalf("approve should be denied for payroll_officer: allowed=%v err=%v", allowed, err)
	}

	// admin inherits payroll_officer grants and carries approve itself.
	allowed, _, err = a.Authorize("role:admin", "loans", "write")
	if err != nil || !allowed {
		t.Fatalf("admin write: allowed=%v err=%v", allowed, err)
	}
	allowed, _, err = a.Authorize("role:admin", "loans", "approve")
	if err != nil || !allowed {
		t.Fatalf("admin approve: allowed=%v err=%v", allowed, err)
	}

	allowed, _, err = a.Authorize("role:anonymous", "loans", "read")
	if err != nil || allowed {
		t.Fatalf("anonymous should be denied: allowed=%v err=%v", allowed, err)
	}
}

func TestAuthorize_ShadowDoesNotEnforce(t *testing.T) {
	modelPath, policyPath := writeTempPolicy(t)
	a, err := NewAuthorizer(modelPath, policyPath, ModeShadow)
	if err != nil {
		t.Fatalf("new authorizer: %v", err)
	}
	allowed, enforced, err := a.Authorize("role:anonymous", "loans", "write")
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if allowed || enforced {
		t.Fatalf("allowed=%v enforced=%v", allowed, enforced)
	}
}

func TestSubjectFromRole(t *testing.T) {
	if got := SubjectFromRole(" Payroll_Officer "); got != "role:payroll_officer" {
		t.Fatalf("subject=%q", got)
	}
	if got := SubjectFromRole(""); got != "role:anonymous" {
		t.Fatalf("subject=%q", got)
	}
}

func TestModeFromEnv(t *testing.T) {
	t.Setenv("AUTHZ_MODE", "")
	if m, err := ModeFromEnv(); err != nil || m != ModeEnforce {
		t.Fatalf("mode=%v err=%v", m, err)
	}

	t.Setenv("AUTHZ_MODE", "shadow")
	if m, err := ModeFromEnv(); err != nil || m != ModeShadow {
		t.Fatalf("mode=%v err=%v", m, err)
	}

	t.Setenv("AUTHZ_MODE", "disabled")
	t.Setenv("AUTHZ_UNSAFE_ALLOW_DISABLED", "")
	if _, err := ModeFromEnv(); err == nil {
		t.Fatalf("expected error for disabled without override")
	}
	t.Setenv("AUTHZ_UNSAFE_ALLOW_DISABLED", "1")
	if m, err := ModeFromEnv(); err != nil || m != ModeDisabled {
		t.Fatalf("mode=%v err=%v", m, err)
	}

	t.Setenv("AUTHZ_MODE", "bogus")
	if _, err := ModeFromEnv(); err == nil {
		t.Fatalf("expected error for bogus mode")
	}
}
