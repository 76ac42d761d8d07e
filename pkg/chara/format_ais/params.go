package format_ais

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Wrapper keys accepted around a parameter map, in order of preference
var parameterWrapperKeys = []string{"chareditor_read", "mapped_params"}

// LoadParameterFile reads a YAML or JSON parameter file. See ParseParameters.
func LoadParameterFile(path string) (FaceParameterSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	set, err := ParseParameters(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// ParseParameters decodes a parameter document. It accepts a map of field
// name to game value, the same map wrapped under chareditor_read or
// mapped_params, or a list of exactly 59 values in slider order. Fractional
// values are rounded.
func ParseParameters(data []byte) (FaceParameterSet, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse parameters: %w", err)
	}

	switch v := doc.(type) {
	case []interface{}:
		values := make([]int, len(v))
		for i, item := range v {
			n, err := gameValue(item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			values[i] = n
		}
		return FaceParameterSetFromList(values)

	case map[string]interface{}:
		for _, key := range parameterWrapperKeys {
			if inner, ok := v[key].(map[string]interface{}); ok {
				return parameterMap(inner)
			}
		}
		return parameterMap(v)

	case nil:
		return nil, fmt.Errorf("parse parameters: empty document")

	default:
		return nil, fmt.Errorf("parse parameters: unsupported document type %T", doc)
	}
}

func parameterMap(m map[string]interface{}) (FaceParameterSet, error) {
	set := make(FaceParameterSet, len(m))
	for name, raw := range m {
		n, err := gameValue(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		set[name] = n
	}
	return set, nil
}

func gameValue(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		if n > math.MaxInt32 {
			return math.MaxInt32, nil
		}
		return int(n), nil
	case float64:
		return roundGameValue(n)
	default:
		return 0, fmt.Errorf("value %v is not a number", v)
	}
}

func roundGameValue(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("value %v is not finite", f)
	}
	if f > math.MaxInt32 {
		return math.MaxInt32, nil
	}
	if f < math.MinInt32 {
		return math.MinInt32, nil
	}
	return int(math.Round(f)), nil
}

// ParseAssignment parses a NAME=VALUE pair. VALUE may be fractional and is
// rounded to the nearest game value.
func ParseAssignment(s string) (string, int, error) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", 0, fmt.Errorf("invalid assignment %q, want NAME=VALUE", s)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid value in %q: %w", s, err)
	}
	n, err := roundGameValue(f)
	if err != nil {
		return "", 0, fmt.Errorf("invalid value in %q: %w", s, err)
	}
	return name, n, nil
}
