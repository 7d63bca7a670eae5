package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	"roster-portal/internal/policy/repository"
)

// Default Rego policy that matches current hardcoded logic (backward compatibility).
const defaultRegoPolicy = `package roster.onboarding

default resend_cooldown_seconds = 60
default max_verify_attempts = 5
default allow_self_assignment = true
`

// OPAEvaluator evaluates onboarding policies using OPA Rego.
type OPAEvaluator struct {
	policyRepo repository.Repository
}

// NewOPAEvaluator returns an OPA-based policy evaluator.
func NewOPAEvaluator(policyRepo repository.Repository) *OPAEvaluator {
	return &OPAEvaluator{policyRepo: policyRepo}
}

// HealthCheck verifies that the in-process OPA Rego engine can compile and evaluate the default policy.
// Does not call the policy repo or database. Returns nil on success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	modules := map[string]string{"policy_0.rego": defaultRegoPolicy}
	compiler, err := ast.CompileModules(modules)
	if err != nil {
		return fmt.Errorf("compile default policy: %w", err)
	}
	minimalInput := map[string]interface{}{
		"phone":   "",
		"purpose": "register",
	}
	q := rego.New(
		rego.Query("data.roster.onboarding.max_verify_attempts"),
		rego.Compiler(compiler),
		rego.Input(minimalInput),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return fmt.Errorf("eval default policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return fmt.Errorf("policy query returned no result")
	}
	return nil
}

// EvaluateOnboarding evaluates onboarding policy using OPA Rego policies.
func (e *OPAEvaluator) EvaluateOnboarding(ctx context.Context, phone, purpose string) (OnboardingResult, error) {
	input := map[string]interface{}{
		"phone":   phone,
		"purpose": purpose,
	}

	// Load enabled policies
	var policies []string
	if e.policyRepo != nil {
		enabledPolicies, err := e.policyRepo.GetEnabledPolicies(ctx)
		if err != nil {
			log.Printf("policy: failed to load policies: %v", err)
		} else {
			for _, p := range enabledPolicies {
				if p.Enabled && p.Rego != "" {
					policies = append(policies, p.Rego)
				}
			}
		}
	}

	// Use default policy if no stored policies exist
	if len(policies) == 0 {
		policies = []string{defaultRegoPolicy}
	}

	result, err := e.evaluatePolicies(ctx, policies, input)
	if err != nil {
		log.Printf("policy: evaluation failed: %v, using defaults", err)
		return defaultResult(), nil
	}

	return result, nil
}

func (e *OPAEvaluator) evaluatePolicies(ctx context.Context, policies []string, input map[string]interface{}) (OnboardingResult, error) {
	// Compile all policies
	modules := make(map[string]string)
	for i, policy := range policies {
		modules[fmt.Sprintf("policy_%d.rego", i)] = policy
	}

	compiler, err := ast.CompileModules(modules)
	if err != nil {
		return OnboardingResult{}, fmt.Errorf("compile policies: %w", err)
	}

	out := defaultResult()

	// Query resend_cooldown_seconds
	if v, ok := evalInt(ctx, compiler, input, "data.roster.onboarding.resend_cooldown_seconds"); ok && v >= 0 {
		out.ResendCooldownSeconds = v
	}

	// Query max_verify_attempts
	if v, ok := evalInt(ctx, compiler, input, "data.roster.onboarding.max_verify_attempts"); ok && v > 0 {
		out.MaxVerifyAttempts = v
	}

	// Query allow_self_assignment
	allowQuery := rego.New(
		rego.Query("data.roster.onboarding.allow_self_assignment"),
		rego.Compiler(compiler),
		rego.Input(input),
	)
	allowRS, err := allowQuery.Eval(ctx)
	if err == nil && len(allowRS) > 0 && len(allowRS[0].Expressions) > 0 {
		if v, ok := allowRS[0].Expressions[0].Value.(bool); ok {
			out.AllowSelfAssignment = v
		}
	}

	return out, nil
}

func evalInt(ctx context.Context, compiler *ast.Compiler, input map[string]interface{}, query string) (int, bool) {
	q := rego.New(
		rego.Query(query),
		rego.Compiler(compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil || len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return 0, false
	}
	switch v := rs[0].Expressions[0].Value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
	case float64:
		return int(v), true
	case int64:
		return int(v), true
	}
	return 0, false
}

func defaultResult() OnboardingResult {
	return OnboardingResult{
		ResendCooldownSeconds: 60,
		MaxVerifyAttempts:     5,
		AllowSelfAssignment:   true,
	}
}
