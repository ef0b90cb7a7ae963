package core

import "fmt"

// PromptPolicy gates a single prompt.
type PromptPolicy struct {
	// MinStartups is the number of recorded startups required before the prompt may show.
	MinStartups uint64 `json:"min_startups" yaml:"min_startups" env:"MIN_STARTUPS"`
	// RequireFirstRun holds the prompt back until first run has been recorded.
	RequireFirstRun bool `json:"require_first_run" yaml:"require_first_run" env:"REQUIRE_FIRST_RUN"`
	// Disabled suppresses the prompt entirely.
	Disabled bool `json:"disabled" yaml:"disabled" env:"DISABLED"`
}

// Allows reports whether the prompt should show for state, given whether it was already seen.
// A seen prompt never shows again.
func (p PromptPolicy) Allows(state State, seen bool) bool {
	if p.Disabled || seen {
		return false
	}
	if p.RequireFirstRun && !state.FirstRunDone {
		return false
	}
	return state.Startups >= p.MinStartups
}

// Policy holds the thresholds for both prompts.
type Policy struct {
	Push  PromptPolicy `json:"push" yaml:"push" env:"PUSH"`
	InApp PromptPolicy `json:"in_app" yaml:"in_app" env:"IN_APP"`
}

// DefaultPolicy asks for push permission after the third startup and shows
// the in-app message right away.
func DefaultPolicy() Policy {
	return Policy{
		Push:  PromptPolicy{MinStartups: 3},
		InApp: PromptPolicy{MinStartups: 0},
	}
}

// For returns the policy gating p.
func (p Policy) For(prompt Prompt) PromptPolicy {
	if prompt == PromptPush {
		return p.Push
	}
	return p.InApp
}

// Decide evaluates prompt against state.
func (p Policy) Decide(prompt Prompt, state State) bool {
	return p.For(prompt).Allows(state, state.Seen(prompt))
}

func (p PromptPolicy) String() string {
	return fmt.Sprintf("min_startups=%d require_first_run=%t disabled=%t", p.MinStartups, p.RequireFirstRun, p.Disabled)
}
