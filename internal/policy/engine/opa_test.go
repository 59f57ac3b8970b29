package engine

import (
	"context"
	"testing"

	"security-code-service/internal/policy"
)

func TestOPAEvaluator_HealthCheck(t *testing.T) {
	e := NewOPAEvaluator("", "")
	if err := e.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestOPAEvaluator_AgreesWithSubstringPolicy(t *testing.T) {
	e := NewOPAEvaluator("", "")
	p := policy.NewSubstring("")
	emails := []string{
		"a@institution.edu",
		"admin@public.com",
		"student@gmail.com",
		"instructor2@work.org",
		"notanadmin@x.com",
		"badminton@x.com",
		"someone@else.org",
	}
	for _, email := range emails {
		got, err := e.Evaluate(context.Background(), email)
		if err != nil {
			t.Fatalf("Evaluate(%q): %v", email, err)
		}
		if want := p.Required(email); got != want {
			t.Errorf("Evaluate(%q) = %v, substring policy says %v", email, got, want)
		}
	}
}

func TestOPAEvaluator_CustomPolicy(t *testing.T) {
	const custom = `package securitycode.verification

default required = false

required if {
	endswith(input.email, "@always.test")
}
`
	e := NewOPAEvaluator(custom, "")
	if !e.Required("x@always.test") {
		t.Error("custom policy should require verification for @always.test")
	}
	if e.Required("admin@public.com") {
		t.Error("custom policy should not carry the default substring rules")
	}
}

func TestOPAEvaluator_BrokenPolicyFallsBack(t *testing.T) {
	e := NewOPAEvaluator("package broken\nthis is not rego", "")
	// Fallback is the substring policy, so the concrete cases still hold.
	if !e.Required("admin@public.com") {
		t.Error("fallback should require verification for admin@public.com")
	}
	if e.Required("student@gmail.com") {
		t.Error("fallback should not require verification for student@gmail.com")
	}
}
