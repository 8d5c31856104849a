package hostlib

import "regexp"

// MatchString backs the `matches()` string function (spec.md §4.5) with
// the standard library's RE2 engine — no pack example carries a
// third-party regex engine, and RE2's linear-time guarantee is the
// right default for an expression language a host embeds untrusted
// input into.
func MatchString(pattern, s string) (bool, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(s), nil
}

// Split divides s on every match of pattern, backing the DOMAIN `split`
// string function.
func Split(pattern, s string) ([]string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return re.Split(s, -1), nil
}
