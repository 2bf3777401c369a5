package ident

import (
	"testing"
	"time"
)

func TestTimestampLayout(t *testing.T) {
	stamp := Timestamp()
	parsed, err := time.Parse(TimestampLayout, stamp)
	if err != nil {
		t.Fatalf("timestamp %q does not match layout: %v", stamp, err)
	}
	if d := time.Since(parsed); d < 0 || d > time.Minute {
		t.Fatalf("timestamp %q not current (delta %v)", stamp, d)
	}
}

func TestNonceUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 64; i++ {
		n := Nonce()
		if n == "" || seen[n] {
			t.Fatalf("nonce %q empty or repeated", n)
		}
		seen[n] = true
	}
}
