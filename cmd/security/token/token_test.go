package token

import (
	"strings"
	"testing"
)

const testKey = "0123456789abcdef0123456789abcdef" // 32 bytes

func TestNewHasher_KeyPolicy(t *testing.T) {
	if _, err := NewHasher(""); err != ErrKeyMissing {
		t.Fatalf("empty key: expected ErrKeyMissing, got %v", err)
	}
	if _, err := NewHasher("   "); err != ErrKeyMissing {
		t.Fatalf("blank key: expected ErrKeyMissing, got %v", err)
	}
	if _, err := NewHasher("too-short"); err != ErrKeyTooShort {
		t.Fatalf("short key: expected ErrKeyTooShort, got %v", err)
	}
	if _, err := NewHasher(testKey); err != nil {
		t.Fatalf("valid key: %v", err)
	}
}

func TestSum_DeterministicHex(t *testing.T) {
	h, err := NewHasher(testKey)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}

	a := h.Sum("some-refresh-token")
	b := h.Sum("some-refresh-token")
	if a != b {
		t.Fatalf("digest not deterministic: %s vs %s", a, b)
	}
	if len(a) != 64 || strings.ToLower(a) != a {
		t.Fatalf("expected lowercase hex sha256 digest, got %q", a)
	}
	if h.Sum("other-token") == a {
		t.Fatalf("distinct inputs produced identical digests")
	}
}

func TestEqual(t *testing.T) {
	h, err := NewHasher(testKey)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}

	d := h.Sum("some-refresh-token")
	if !h.Equal(d, "some-refresh-token") {
		t.Fatalf("expected digest to match its input")
	}
	if h.Equal(d, "other-token") {
		t.Fatalf("expected mismatch for different input")
	}
	if h.Equal("zz-not-hex", "some-refresh-token") {
		t.Fatalf("expected mismatch for non-hex digest")
	}

	other, err := NewHasher("ffffffffffffffffffffffffffffffff")
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	if other.Equal(d, "some-refresh-token") {
		t.Fatalf("expected digests to be key-bound")
	}
}
