package engine

import "context"

// OnboardingResult holds the result of onboarding policy evaluation.
type OnboardingResult struct {
	ResendCooldownSeconds int
	MaxVerifyAttempts     int
	AllowSelfAssignment   bool
}

// Evaluator evaluates onboarding policies using OPA or other engines.
type Evaluator interface {
	// EvaluateOnboarding evaluates onboarding policy for the given phone and purpose.
	// Returns the resend cooldown, the verify attempt limit and whether users may
	// link their own account to a roster player.
	EvaluateOnboarding(ctx context.Context, phone, purpose string) (OnboardingResult, error)
}
