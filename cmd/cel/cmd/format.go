package cmd

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-cel/internal/values"
)

// formatValue renders v for CLI output, a compact recursive form
// sufficient for inspecting scalars, lists, maps, and optionals.
func formatValue(v values.Value) string {
	switch v.Kind {
	case values.KindNull:
		return "null"
	case values.KindBool:
		return fmt.Sprintf("%v", v.Bool)
	case values.KindInt:
		return fmt.Sprintf("%d", v.Int)
	case values.KindUint:
		return fmt.Sprintf("%du", v.Uint)
	case values.KindDouble:
		return fmt.Sprintf("%v", v.Double)
	case values.KindString:
		return fmt.Sprintf("%q", v.Str)
	case values.KindBytes:
		return fmt.Sprintf("b%q", string(v.Bytes))
	case values.KindList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = formatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case values.KindMap:
		var parts []string
		for _, k := range v.Map.Keys() {
			val, _ := v.Map.Get(k)
			parts = append(parts, formatValue(k)+": "+formatValue(val))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case values.KindTimestamp:
		return v.Time.Format("2006-01-02T15:04:05.999999999Z07:00")
	case values.KindDuration:
		return v.Dur.String()
	case values.KindType:
		return v.TypeVal.CanonicalName()
	case values.KindOptional:
		if v.Opt != nil && v.Opt.HasValue {
			return "optional(" + formatValue(v.Opt.Val) + ")"
		}
		return "optional.none()"
	case values.KindMessage:
		var parts []string
		for name, val := range v.Msg.Fields {
			parts = append(parts, name+": "+formatValue(val))
		}
		return v.Msg.TypeName + "{" + strings.Join(parts, ", ") + "}"
	}
	return "<invalid>"
}
