package core

import (
	"math"
	"strings"
	"testing"
)

func TestSaturatingInc(t *testing.T) {
	if v := SaturatingInc(10); v != 11 {
		t.Fatalf("got %v", v)
	}
	if v := SaturatingInc(math.MaxUint64); v != math.MaxUint64 {
		t.Fatalf("expected saturation, got %v", v)
	}
}

func TestFlagEncoding(t *testing.T) {
	if FlagSet(FlagValue(false)) {
		t.Fatal("false flag decoded as set")
	}
	if !FlagSet(FlagValue(true)) {
		t.Fatal("true flag decoded as unset")
	}
	if !FlagSet(7) {
		t.Fatal("non-zero should count as set")
	}
}

func TestKeysAreNamespaced(t *testing.T) {
	seen := map[Key]bool{}
	for _, k := range Keys() {
		if !strings.HasPrefix(string(k), KeyNamespace) {
			t.Fatalf("key %q not namespaced", k)
		}
		if seen[k] {
			t.Fatalf("duplicate key %q", k)
		}
		seen[k] = true
	}
}

func TestParsePrompt(t *testing.T) {
	for in, want := range map[string]Prompt{"push": PromptPush, " Push ": PromptPush, "in_app": PromptInApp, "in-app": PromptInApp} {
		got, err := ParsePrompt(in)
		if err != nil || got != want {
			t.Fatalf("ParsePrompt(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParsePrompt("banner"); err == nil {
		t.Fatal("expected error for unknown prompt")
	}
}

func TestStoreFuncsNilSafe(t *testing.T) {
	var f StoreFuncs
	if _, ok := f.ReadInt("k"); ok {
		t.Fatal("nil read should report unwritten")
	}
	f.WriteInt("k", 1)
}
