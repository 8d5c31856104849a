package hostlib

import "testing"

func TestNormalizeNFCComposesAccents(t *testing.T) {
	decomposed := "é" // e + combining acute accent
	got := Normalize(decomposed, NFC)
	if got != "é" {
		t.Errorf("got %q, want %q", got, "é")
	}
}

func TestNormalizeDefaultsToNFC(t *testing.T) {
	decomposed := "é"
	if Normalize(decomposed, "") != Normalize(decomposed, NFC) {
		t.Errorf("unknown form should default to NFC")
	}
}

func TestCollatorOrdersByLocale(t *testing.T) {
	col, err := NewCollator("en", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if col.Compare("a", "b") >= 0 {
		t.Errorf("expected a < b")
	}
	if col.Compare("a", "a") != 0 {
		t.Errorf("expected a == a")
	}
}

func TestCollatorIgnoreCase(t *testing.T) {
	col, err := NewCollator("en", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if col.Compare("ABC", "abc") != 0 {
		t.Errorf("expected case-insensitive equality")
	}
}

func TestNewCollatorRejectsBadTag(t *testing.T) {
	if _, err := NewCollator("!!!not-a-tag!!!", false); err == nil {
		t.Fatalf("expected error for malformed BCP-47 tag")
	}
}
