// Package hostlib holds the concrete adapters behind the host-provided
// primitives spec.md §6 names: UTF-8 transcoding, JSON parsing, regex,
// overflow-checked integer arithmetic, and calendar arithmetic. Each
// adapter is a plain function or small struct a host can swap out; none
// of them depend on internal/registry or internal/evaluator. The catalog
// of CEL functions that wires them together lives in internal/stdlib.
package hostlib

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cwbudde/go-cel/internal/values"
)

// ParseJSON decodes a JSON document into a CEL dyn value: objects become
// insertion-ordered values.Map, arrays become values.List, numbers
// without a fractional part or exponent become int64 where they fit,
// otherwise double — mirroring json.Number's int64-first preference in
// CWBudde-go-dws's builtins_json.go, generalized to CEL's value domain
// instead of a separate jsonvalue.Value sum type.
func ParseJSON(s string) (values.Value, error) {
	decoder := json.NewDecoder(strings.NewReader(s))
	decoder.UseNumber()

	var data interface{}
	if err := decoder.Decode(&data); err != nil {
		return values.Value{}, fmt.Errorf("JSON parse error: %w", err)
	}
	return goValueToCEL(data), nil
}

func goValueToCEL(data interface{}) values.Value {
	switch v := data.(type) {
	case nil:
		return values.Null()
	case bool:
		return values.Bool(v)
	case json.Number:
		if i64, err := v.Int64(); err == nil {
			return values.Int(i64)
		}
		f64, _ := v.Float64()
		return values.Double(f64)
	case string:
		return values.String(v)
	case []interface{}:
		elems := make([]values.Value, len(v))
		for i, e := range v {
			elems[i] = goValueToCEL(e)
		}
		return values.List(elems)
	case map[string]interface{}:
		m := values.NewMap()
		for _, k := range sortedJSONKeys(v) {
			m.Set(values.String(k), goValueToCEL(v[k]))
		}
		return values.Value{Kind: values.KindMap, Map: m}
	}
	return values.Null()
}

// sortedJSONKeys works around encoding/json's map[string]interface{}
// decode losing source key order: a deterministic (sorted) order keeps
// ParseJSON's output reproducible across runs.
func sortedJSONKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// EncodeJSON renders a CEL dyn value back to a JSON document, the
// inverse of ParseJSON.
func EncodeJSON(v values.Value) ([]byte, error) {
	return json.Marshal(celToGoValue(v))
}

func celToGoValue(v values.Value) interface{} {
	switch v.Kind {
	case values.KindNull:
		return nil
	case values.KindBool:
		return v.Bool
	case values.KindInt:
		return v.Int
	case values.KindUint:
		return v.Uint
	case values.KindDouble:
		return v.Double
	case values.KindString:
		return v.Str
	case values.KindBytes:
		return v.Bytes
	case values.KindList:
		out := make([]interface{}, len(v.List))
		for i, e := range v.List {
			out[i] = celToGoValue(e)
		}
		return out
	case values.KindMap:
		out := make(map[string]interface{}, v.Map.Len())
		for _, k := range v.Map.Keys() {
			val, _ := v.Map.Get(k)
			out[k.String()] = celToGoValue(val)
		}
		return out
	}
	return nil
}
