package hostlib

import (
	"bytes"
	"testing"
)

func TestBase64RoundTrip(t *testing.T) {
	orig := []byte("hello, world")
	encoded := EncodeBase64(orig)
	decoded, err := DecodeBase64(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(orig, decoded) {
		t.Errorf("got %v, want %v", decoded, orig)
	}
}

func TestDecodeBase64Invalid(t *testing.T) {
	if _, err := DecodeBase64("not!valid!base64"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestHexRoundTrip(t *testing.T) {
	orig := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	encoded := EncodeHex(orig)
	if encoded != "deadbeef" {
		t.Errorf("got %q, want %q", encoded, "deadbeef")
	}
	decoded, err := DecodeHex(encoded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(orig, decoded) {
		t.Errorf("got %v, want %v", decoded, orig)
	}
}

func TestDecodeHexInvalid(t *testing.T) {
	if _, err := DecodeHex("zz"); err == nil {
		t.Fatalf("expected decode error")
	}
}
