package hostlib

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeText detects a byte slice's encoding by BOM (UTF-8, UTF-16 LE,
// UTF-16 BE) and returns it as a UTF-8 Go string, generalized from
// CWBudde-go-dws's detectAndDecodeFile so a host's bytes→string
// conversion function can accept any of the three without the caller
// pre-declaring which one it is.
func DecodeText(data []byte) (string, error) {
	switch {
	case len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF:
		return string(data[3:]), nil
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE:
		return decodeUTF16(data, unicode.LittleEndian)
	case len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF:
		return decodeUTF16(data, unicode.BigEndian)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("bytes conversion: input is not valid UTF-8")
	}
	return string(data), nil
}

func decodeUTF16(data []byte, endianness unicode.Endianness) (string, error) {
	decoder := unicode.UTF16(endianness, unicode.UseBOM).NewDecoder()
	utf8Data, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", fmt.Errorf("failed to decode UTF-16: %w", err)
	}
	result := string(bytes.TrimPrefix(utf8Data, []byte("﻿")))
	return result, nil
}

// RuneLen returns the CEL `size()` definition for a string: the number
// of Unicode code points, not UTF-8 bytes.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
