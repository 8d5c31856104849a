package stdlib

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-cel/internal/hostlib"
	"github.com/cwbudde/go-cel/internal/registry"
	"github.com/cwbudde/go-cel/internal/types"
	"github.com/cwbudde/go-cel/internal/values"
)

// registerStringMethods wires the "Strings" family of spec.md §4.5 plus
// SPEC_FULL.md's DOMAIN additions (replace, trim).
func registerStringMethods(reg *registry.Registry) error {
	str := types.String()

	method := func(name string, params []*types.TypeDecl, ret *types.TypeDecl, h func([]values.Value) (values.Value, error)) error {
		return reg.RegisterFunctionOverload(registry.FunctionSignature{Name: name, Receiver: str, Params: params, Return: ret}, h)
	}

	startsWith := func(args []values.Value) (values.Value, error) {
		return values.Bool(strings.HasPrefix(args[0].Str, args[1].Str)), nil
	}
	endsWith := func(args []values.Value) (values.Value, error) {
		return values.Bool(strings.HasSuffix(args[0].Str, args[1].Str)), nil
	}
	contains := func(args []values.Value) (values.Value, error) {
		return values.Bool(strings.Contains(args[0].Str, args[1].Str)), nil
	}
	indexOf := func(args []values.Value) (values.Value, error) {
		recv := []rune(args[0].Str)
		needle := args[1].Str
		start := 0
		if len(args) > 2 {
			start = int(args[2].Int)
			if start < 0 || start > len(recv) {
				return values.Value{}, fmt.Errorf("indexOf: start index %d out of range [0, %d]", start, len(recv))
			}
		}
		idx := strings.Index(string(recv[start:]), needle)
		if idx < 0 {
			return values.Int(-1), nil
		}
		return values.Int(int64(start + len([]rune(string(recv[start:])[:idx])))), nil
	}
	lastIndexOf := func(args []values.Value) (values.Value, error) {
		recv := []rune(args[0].Str)
		needle := args[1].Str
		end := len(recv)
		if len(args) > 2 {
			end = int(args[2].Int)
			if end < 0 || end > len(recv) {
				return values.Value{}, fmt.Errorf("lastIndexOf: end index %d out of range [0, %d]", end, len(recv))
			}
		}
		idx := strings.LastIndex(string(recv[:end]), needle)
		if idx < 0 {
			return values.Int(-1), nil
		}
		return values.Int(int64(len([]rune(string(recv[:end])[:idx])))), nil
	}
	substring := func(args []values.Value) (values.Value, error) {
		recv := []rune(args[0].Str)
		start := int(args[1].Int)
		end := len(recv)
		if len(args) > 2 {
			end = int(args[2].Int)
		}
		if start < 0 || end > len(recv) || start > end {
			return values.Value{}, fmt.Errorf("substring: range [%d, %d) out of bounds for length %d", start, end, len(recv))
		}
		return values.String(string(recv[start:end])), nil
	}
	matches := func(args []values.Value) (values.Value, error) {
		ok, err := hostlib.MatchString(args[1].Str, args[0].Str)
		if err != nil {
			return values.Value{}, err
		}
		return values.Bool(ok), nil
	}
	split := func(args []values.Value) (values.Value, error) {
		parts, err := hostlib.Split(args[1].Str, args[0].Str)
		if err != nil {
			return values.Value{}, err
		}
		if len(args) > 2 {
			limit := int(args[2].Int)
			switch {
			case limit == 0:
				parts = nil
			case limit > 0 && limit < len(parts):
				head := parts[:limit-1]
				rest := strings.Join(parts[limit-1:], args[1].Str)
				parts = append(append([]string{}, head...), rest)
			}
		}
		elems := make([]values.Value, len(parts))
		for i, p := range parts {
			elems[i] = values.String(p)
		}
		return values.List(elems), nil
	}
	replace := func(args []values.Value) (values.Value, error) {
		return values.String(strings.ReplaceAll(args[0].Str, args[1].Str, args[2].Str)), nil
	}
	trim := func(args []values.Value) (values.Value, error) {
		return values.String(strings.TrimSpace(hostlib.Normalize(args[0].Str, hostlib.NFC))), nil
	}

	entries := []struct {
		name    string
		params  []*types.TypeDecl
		ret     *types.TypeDecl
		handler func([]values.Value) (values.Value, error)
	}{
		{"startsWith", []*types.TypeDecl{str}, types.Bool(), startsWith},
		{"endsWith", []*types.TypeDecl{str}, types.Bool(), endsWith},
		{"contains", []*types.TypeDecl{str}, types.Bool(), contains},
		{"indexOf", []*types.TypeDecl{str}, types.Int(), indexOf},
		{"indexOf", []*types.TypeDecl{str, types.Int()}, types.Int(), indexOf},
		{"lastIndexOf", []*types.TypeDecl{str}, types.Int(), lastIndexOf},
		{"lastIndexOf", []*types.TypeDecl{str, types.Int()}, types.Int(), lastIndexOf},
		{"substring", []*types.TypeDecl{types.Int()}, str, substring},
		{"substring", []*types.TypeDecl{types.Int(), types.Int()}, str, substring},
		{"matches", []*types.TypeDecl{str}, types.Bool(), matches},
		{"split", []*types.TypeDecl{str}, types.List(str), split},
		{"split", []*types.TypeDecl{str, types.Int()}, types.List(str), split},
		{"replace", []*types.TypeDecl{str, str}, str, replace},
		{"trim", nil, str, trim},
	}
	for _, e := range entries {
		if err := method(e.name, e.params, e.ret, e.handler); err != nil {
			return err
		}
	}
	return nil
}
