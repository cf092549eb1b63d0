// Package feature turns a loosely-typed JSON request into the fixed-order
// numeric vector the classifier expects.
//
// The mapping is a pure function: no HTTP, no model, no shared mutable state.
// Absent and falsy values ("", 0, false, null, [], {}) all become 0, so a
// legitimately-zero measurement cannot be told apart from a missing one.
package feature

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// names is the declared feature order. Position i of every Vector holds the
// value of names[i].
var names = [...]string{
	"sepal length",
	"sepal width",
	"petal length",
	"petal width",
}

// Count is the length of every Vector.
const Count = len(names)

// Names returns the declared feature names in vector order.
func Names() []string {
	out := make([]string, Count)
	copy(out, names[:])
	return out
}

// Vector is an ordered feature vector, one value per declared name.
type Vector []float64

// ValueError reports a feature whose value is present and truthy but cannot
// be read as a number.
type ValueError struct {
	Name  string
	Value any
}

func (e ValueError) Error() string {
	return fmt.Sprintf("feature %q: value %v is not numeric", e.Name, e.Value)
}

// ValueErrors collects every non-numeric feature of a single request.
type ValueErrors []ValueError

func (e ValueErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, ve := range e {
		parts = append(parts, ve.Error())
	}
	return strings.Join(parts, "; ")
}

// Extract builds the feature vector for input. Keys that are not declared
// feature names are ignored.
//
// A nil map is treated like an empty one and yields an all-zero vector.
func Extract(input map[string]any) (Vector, error) {
	vec := make(Vector, Count)
	var invalid ValueErrors

	for i, name := range names {
		v, err := Value(input[name])
		if err != nil {
			invalid = append(invalid, ValueError{Name: name, Value: input[name]})
			continue
		}
		vec[i] = v
	}

	if len(invalid) > 0 {
		return nil, invalid
	}
	return vec, nil
}

// Value converts a single decoded JSON value.
//
// Falsy values return 0. Truthy numbers are returned as-is, true is 1 and
// numeric strings are parsed. Everything else is an error.
func Value(raw any) (float64, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, err
		}
		return finite(f)
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case string:
		if v == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, err
		}
		return finite(f)
	case []any:
		if len(v) == 0 {
			return 0, nil
		}
	case map[string]any:
		if len(v) == 0 {
			return 0, nil
		}
	}
	return 0, fmt.Errorf("unsupported value type %T", raw)
}

func finite(f float64) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("value %v is not finite", f)
	}
	return f, nil
}

// Ignored returns the request keys that are not declared feature names,
// sorted for stable logging.
func Ignored(input map[string]any) []string {
	var extra []string
	for key := range input {
		if !isDeclared(key) {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	return extra
}

func isDeclared(key string) bool {
	for _, name := range names {
		if name == key {
			return true
		}
	}
	return false
}
