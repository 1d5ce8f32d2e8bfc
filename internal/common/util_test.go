package common

import (
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"testing"
)

func TestMakeRandHexString_LengthAndHex(t *testing.T) {
	const n = 16
	s, err := MakeRandHexString(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != n*2 {
		t.Fatalf("expected hex length %d, got %d", n*2, len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		t.Fatalf("string is not valid hex: %v", err)
	}
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	if err != nil {
		t.Fatalf("unexpected error for size=0: %v", err)
	}
	if s != "" {
		t.Fatalf("expected empty string for size=0, got %q", s)
	}
}

func TestNewID_Shape(t *testing.T) {
	re := regexp.MustCompile(`^[a-f0-9]{24}$`)
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id, err := NewID()
		if err != nil {
			t.Fatalf("NewID error: %v", err)
		}
		if !re.MatchString(id) {
			t.Fatalf("unexpected id shape: %q", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id generated: %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestSentinels_MatchThroughWrapping(t *testing.T) {
	err := fmt.Errorf("db error: %w", ErrorAlreadyExists)
	if !errors.Is(err, ErrorAlreadyExists) {
		t.Fatalf("wrapped error lost its sentinel: %v", err)
	}
	if errors.Is(err, ErrorNotFound) {
		t.Fatalf("unexpected match with ErrorNotFound")
	}
}
