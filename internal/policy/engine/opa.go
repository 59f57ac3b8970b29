// Package engine evaluates the verification-required policy with OPA Rego so
// deployments can override the rules without a rebuild.
package engine

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	"security-code-service/internal/policy"
)

const policyQuery = "data.securitycode.verification.required"

// Default Rego policy; encodes the same literal substring rules as
// policy.Substring so the two evaluators agree out of the box.
const defaultRegoPolicy = `package securitycode.verification

default required = false

required if {
	endswith(input.email, input.institution_suffix)
}

required if {
	contains(input.local, "admin")
}

required if {
	contains(input.local, "instructor")
}
`

// OPAEvaluator evaluates the requirement predicate using OPA Rego.
// On evaluation failure it logs and falls back to the substring policy.
type OPAEvaluator struct {
	source   string
	suffix   string
	fallback *policy.Substring
}

// NewOPAEvaluator returns an evaluator for the given Rego source; empty source
// uses the embedded default. suffix is normalized the same way as
// policy.NewSubstring.
func NewOPAEvaluator(source, suffix string) *OPAEvaluator {
	if source == "" {
		source = defaultRegoPolicy
	}
	fallback := policy.NewSubstring(suffix)
	return &OPAEvaluator{
		source:   source,
		suffix:   fallback.InstitutionSuffix,
		fallback: fallback,
	}
}

// HealthCheck verifies the policy compiles and evaluates. Returns nil on success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	_, err := e.Evaluate(ctx, "healthcheck@example.com")
	return err
}

// Evaluate runs the Rego policy for email.
func (e *OPAEvaluator) Evaluate(ctx context.Context, email string) (bool, error) {
	compiler, err := ast.CompileModules(map[string]string{"verification_required.rego": e.source})
	if err != nil {
		return false, fmt.Errorf("compile policy: %w", err)
	}

	email = strings.ToLower(strings.TrimSpace(email))
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}
	input := map[string]interface{}{
		"email":              email,
		"local":              local,
		"institution_suffix": strings.ToLower(e.suffix),
	}

	q := rego.New(
		rego.Query(policyQuery),
		rego.Compiler(compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return false, fmt.Errorf("eval policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, fmt.Errorf("policy query returned no result")
	}
	v, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("policy query returned non-boolean %T", rs[0].Expressions[0].Value)
	}
	return v, nil
}

// Required implements policy.Evaluator.
func (e *OPAEvaluator) Required(email string) bool {
	v, err := e.Evaluate(context.Background(), email)
	if err != nil {
		log.Printf("policy: evaluation failed: %v, using substring fallback", err)
		return e.fallback.Required(email)
	}
	return v
}
