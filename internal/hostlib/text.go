package hostlib

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeForm names a Unicode normalization form, used by the `trim`
// function's whitespace-boundary decisions when a host enables
// normalization-aware trimming.
type NormalizeForm string

const (
	NFC  NormalizeForm = "NFC"
	NFD  NormalizeForm = "NFD"
	NFKC NormalizeForm = "NFKC"
	NFKD NormalizeForm = "NFKD"
)

// Normalize applies a Unicode normalization form, generalized from
// CWBudde-go-dws's string_helpers.go normalizeUnicode.
func Normalize(s string, form NormalizeForm) string {
	switch form {
	case NFD:
		return norm.NFD.String(s)
	case NFKC:
		return norm.NFKC.String(s)
	case NFKD:
		return norm.NFKD.String(s)
	default:
		return norm.NFC.String(s)
	}
}

// Collator orders strings using a locale rather than CEL's default
// byte-wise comparison. A host registers one to back the `<`,`<=`,`>`,
// `>=` string overloads; left nil (the default), those overloads
// compare with values.Less's plain Go string ordering instead.
type Collator struct {
	col *collate.Collator
}

// NewCollator builds a Collator for a BCP-47 language tag, generalized
// from CWBudde-go-dws's vm_builtins_string.go collation-backed string
// comparison built-in.
func NewCollator(tag string, ignoreCase bool) (*Collator, error) {
	t, err := language.Parse(tag)
	if err != nil {
		return nil, err
	}
	opts := []collate.Option{}
	if ignoreCase {
		opts = append(opts, collate.IgnoreCase)
	}
	return &Collator{col: collate.New(t, opts...)}, nil
}

// Compare returns -1, 0, or 1 per strings.Compare's convention, using
// the collator's locale-aware ordering.
func (c *Collator) Compare(a, b string) int {
	return c.col.CompareString(a, b)
}
