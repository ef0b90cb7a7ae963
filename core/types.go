package core

import (
	"errors"
	"math"
	"strings"
)

// Key names a persisted integer. All keys written by the engine live under
// KeyNamespace so they never collide with host data in a shared store.
type Key string

// KeyNamespace prefixes every key the engine persists.
const KeyNamespace = "promptkit."

const (
	KeyFirstRun  Key = KeyNamespace + "first_run"
	KeyStartups  Key = KeyNamespace + "startups"
	KeyPushSeen  Key = KeyNamespace + "push_seen"
	KeyInAppSeen Key = KeyNamespace + "in_app_seen"
)

// Keys lists every key the engine reads at construction.
func Keys() []Key {
	return []Key{KeyFirstRun, KeyStartups, KeyPushSeen, KeyInAppSeen}
}

// Prompt identifies one of the user-facing prompts the engine decides on.
type Prompt string

const (
	PromptPush  Prompt = "push"
	PromptInApp Prompt = "in_app"
)

// ParsePrompt accepts the canonical names plus the dashed "in-app" spelling.
func ParsePrompt(s string) (Prompt, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(PromptPush):
		return PromptPush, nil
	case string(PromptInApp), "in-app", "inapp":
		return PromptInApp, nil
	}
	return "", errors.New("unknown prompt: " + s)
}

// SeenKey returns the flag key recording that p was shown.
func (p Prompt) SeenKey() Key {
	if p == PromptPush {
		return KeyPushSeen
	}
	return KeyInAppSeen
}

// State is a snapshot of the counters and flags that drive decisions.
type State struct {
	FirstRunDone bool   `json:"first_run_done" yaml:"first_run_done"`
	Startups     uint64 `json:"startups" yaml:"startups"`
	PushSeen     bool   `json:"push_seen" yaml:"push_seen"`
	InAppSeen    bool   `json:"in_app_seen" yaml:"in_app_seen"`
}

// Seen reports the seen flag for p.
func (s State) Seen(p Prompt) bool {
	if p == PromptPush {
		return s.PushSeen
	}
	return s.InAppSeen
}

// FlagValue encodes a boolean flag as the integer persisted for it.
func FlagValue(set bool) uint64 {
	if set {
		return 1
	}
	return 0
}

// FlagSet decodes a persisted flag; any non-zero value counts as set.
func FlagSet(v uint64) bool { return v != 0 }

// SaturatingInc increments a counter, pinning it at the maximum instead of wrapping.
func SaturatingInc(v uint64) uint64 {
	if v == math.MaxUint64 {
		return v
	}
	return v + 1
}
