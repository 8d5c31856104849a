package hostlib

import (
	"encoding/base64"
	"encoding/hex"
)

// EncodeBase64 and DecodeBase64 back the bytes `base64` conversion
// (spec.md §4.5 DOMAIN additions), using standard (not URL-safe)
// alphabet with padding — no pack example carries a third-party
// base64 codec.
func EncodeBase64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

func DecodeBase64(s string) ([]byte, error) { return base64.StdEncoding.DecodeString(s) }

// EncodeHex and DecodeHex back the bytes `hex` conversion.
func EncodeHex(b []byte) string { return hex.EncodeToString(b) }

func DecodeHex(s string) ([]byte, error) { return hex.DecodeString(s) }
