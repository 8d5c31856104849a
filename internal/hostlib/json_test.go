package hostlib

import (
	"testing"

	"github.com/cwbudde/go-cel/internal/values"
)

func TestParseJSONPrimitives(t *testing.T) {
	tests := []struct {
		name string
		json string
		kind values.Kind
	}{
		{"null", "null", values.KindNull},
		{"bool", "true", values.KindBool},
		{"int", "42", values.KindInt},
		{"float", "3.14", values.KindDouble},
		{"string", `"hello"`, values.KindString},
		{"array", "[1,2,3]", values.KindList},
		{"object", `{"a":1}`, values.KindMap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseJSON(tt.json)
			if err != nil {
				t.Fatalf("ParseJSON(%q): %v", tt.json, err)
			}
			if v.Kind != tt.kind {
				t.Errorf("got kind %v, want %v", v.Kind, tt.kind)
			}
		})
	}
}

func TestParseJSONObjectFields(t *testing.T) {
	v, err := ParseJSON(`{"name":"a","age":30}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	name, ok := v.Map.Get(values.String("name"))
	if !ok || name.Str != "a" {
		t.Errorf("got %v, want name=a", name)
	}
	age, ok := v.Map.Get(values.String("age"))
	if !ok || age.Int != 30 {
		t.Errorf("got %v, want age=30", age)
	}
}

func TestParseJSONInvalid(t *testing.T) {
	if _, err := ParseJSON("{not json"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestEncodeJSONRoundTrip(t *testing.T) {
	orig, err := ParseJSON(`{"a":1,"b":[true,null,"x"]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := EncodeJSON(orig)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	roundTripped, err := ParseJSON(string(out))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eq, err := values.Equal(orig, roundTripped, false); err != nil || !eq {
		t.Errorf("round trip mismatch: %v vs %v (err=%v)", orig, roundTripped, err)
	}
}
