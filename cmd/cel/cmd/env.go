package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/cwbudde/go-cel/internal/config"
	"github.com/cwbudde/go-cel/internal/types"
	celpkg "github.com/cwbudde/go-cel/pkg/cel"
	"gopkg.in/yaml.v3"
)

// envFileSpec is the `--env` YAML shape: declared variable types plus the
// constructor options spec.md §6 names for Environment.
type envFileSpec struct {
	Variables                    map[string]string `yaml:"variables"`
	UnlistedVariablesAreDyn      *bool             `yaml:"unlistedVariablesAreDyn"`
	HomogeneousAggregateLiterals *bool             `yaml:"homogeneousAggregateLiterals"`
	EnableOptionalTypes          *bool             `yaml:"enableOptionalTypes"`
	Limits                       *limitsSpec       `yaml:"limits"`
}

type limitsSpec struct {
	MaxAstNodes      *int `yaml:"maxAstNodes"`
	MaxDepth         *int `yaml:"maxDepth"`
	MaxListElements  *int `yaml:"maxListElements"`
	MaxMapEntries    *int `yaml:"maxMapEntries"`
	MaxCallArguments *int `yaml:"maxCallArguments"`
}

// loadEnvironment builds a cel.Environment from the --env YAML file, or
// the bare default environment if path is empty.
func loadEnvironment(path string) (*celpkg.Environment, error) {
	if path == "" {
		return celpkg.New()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading --env file: %w", err)
	}
	var spec envFileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing --env file: %w", err)
	}

	var opts []celpkg.Option
	if spec.UnlistedVariablesAreDyn != nil {
		opts = append(opts, celpkg.WithUnlistedVariablesAreDyn(*spec.UnlistedVariablesAreDyn))
	}
	if spec.HomogeneousAggregateLiterals != nil {
		opts = append(opts, celpkg.WithHomogeneousAggregateLiterals(*spec.HomogeneousAggregateLiterals))
	}
	if spec.EnableOptionalTypes != nil {
		opts = append(opts, celpkg.WithEnableOptionalTypes(*spec.EnableOptionalTypes))
	}
	if spec.Limits != nil {
		l := config.Defaults()
		if spec.Limits.MaxAstNodes != nil {
			l.MaxAstNodes = *spec.Limits.MaxAstNodes
		}
		if spec.Limits.MaxDepth != nil {
			l.MaxDepth = *spec.Limits.MaxDepth
		}
		if spec.Limits.MaxListElements != nil {
			l.MaxListElements = *spec.Limits.MaxListElements
		}
		if spec.Limits.MaxMapEntries != nil {
			l.MaxMapEntries = *spec.Limits.MaxMapEntries
		}
		if spec.Limits.MaxCallArguments != nil {
			l.MaxCallArguments = *spec.Limits.MaxCallArguments
		}
		opts = append(opts, celpkg.WithLimits(l))
	}
	for name, typeName := range spec.Variables {
		t, err := parseTypeName(typeName)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		opts = append(opts, celpkg.WithVariable(name, t))
	}

	return celpkg.New(opts...)
}

// parseTypeName parses the small type-name grammar the --env file's
// `variables` map uses: primitives by name, list<T>, map<K,V>,
// optional<T>, dyn.
func parseTypeName(s string) (*types.TypeDecl, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "string":
		return types.String(), nil
	case "bool":
		return types.Bool(), nil
	case "int":
		return types.Int(), nil
	case "uint":
		return types.Uint(), nil
	case "double":
		return types.Double(), nil
	case "bytes":
		return types.Bytes(), nil
	case "null":
		return types.Null(), nil
	case "dyn":
		return types.Dyn(), nil
	case "timestamp":
		return types.Message("google.protobuf.Timestamp", nil), nil
	case "duration":
		return types.Message("google.protobuf.Duration", nil), nil
	}
	if inner, ok := wrapped(s, "list<", ">"); ok {
		elem, err := parseTypeName(inner)
		if err != nil {
			return nil, err
		}
		return types.List(elem), nil
	}
	if inner, ok := wrapped(s, "optional<", ">"); ok {
		elem, err := parseTypeName(inner)
		if err != nil {
			return nil, err
		}
		return types.Optional(elem), nil
	}
	if inner, ok := wrapped(s, "map<", ">"); ok {
		parts := splitTopLevelComma(inner)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid map type %q: expected map<K,V>", s)
		}
		key, err := parseTypeName(parts[0])
		if err != nil {
			return nil, err
		}
		val, err := parseTypeName(parts[1])
		if err != nil {
			return nil, err
		}
		return types.Map(key, val), nil
	}
	return nil, fmt.Errorf("unrecognized type name %q", s)
}

func wrapped(s, prefix, suffix string) (string, bool) {
	if strings.HasPrefix(s, prefix) && strings.HasSuffix(s, suffix) {
		return s[len(prefix) : len(s)-len(suffix)], true
	}
	return "", false
}

// splitTopLevelComma splits s on commas not nested inside <...>, so
// map<string,list<int>> splits into ["string", "list<int>"].
func splitTopLevelComma(s string) []string {
	depth := 0
	var parts []string
	last := 0
	for i, r := range s {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[last:i]))
				last = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(s[last:]))
	return parts
}
