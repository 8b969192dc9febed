// Package features defines the canonical input schema of the housing model.
package features

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind is the semantic type of a feature.
type Kind int

const (
	KindFloat Kind = iota
	KindInt
)

func (k Kind) String() string {
	if k == KindInt {
		return "int"
	}
	return "float"
}

// Feature describes one model input column.
type Feature struct {
	Name     string
	Kind     Kind
	Required bool
}

// Row holds validated feature values in contract order. Missing optional
// features are NaN.
type Row []float64

// Contract is the ordered set of features a request must satisfy.
type Contract struct {
	features []Feature
	index    map[string]int
}

// DefaultFeatures is the Boston housing feature set in training column order.
var DefaultFeatures = []Feature{
	{Name: "CRIM", Kind: KindFloat, Required: true},
	{Name: "ZN", Kind: KindFloat},
	{Name: "INDUS", Kind: KindFloat, Required: true},
	{Name: "CHAS", Kind: KindInt},
	{Name: "NOX", Kind: KindFloat, Required: true},
	{Name: "RM", Kind: KindFloat, Required: true},
	{Name: "AGE", Kind: KindFloat, Required: true},
	{Name: "DIS", Kind: KindFloat, Required: true},
	{Name: "RAD", Kind: KindInt},
	{Name: "TAX", Kind: KindFloat, Required: true},
	{Name: "PTRATIO", Kind: KindFloat, Required: true},
	{Name: "B", Kind: KindFloat, Required: true},
	{Name: "LSTAT", Kind: KindFloat, Required: true},
}

// NewContract builds a contract, rejecting empty or duplicate names.
func NewContract(features []Feature) (*Contract, error) {
	if len(features) == 0 {
		return nil, fmt.Errorf("contract needs at least one feature")
	}
	c := &Contract{
		features: make([]Feature, len(features)),
		index:    make(map[string]int, len(features)),
	}
	for i, f := range features {
		if f.Name == "" {
			return nil, fmt.Errorf("feature %d has no name", i)
		}
		if _, dup := c.index[f.Name]; dup {
			return nil, fmt.Errorf("duplicate feature %q", f.Name)
		}
		c.features[i] = f
		c.index[f.Name] = i
	}
	return c, nil
}

// Default returns the Boston housing contract.
func Default() *Contract {
	c, err := NewContract(DefaultFeatures)
	if err != nil {
		panic(err)
	}
	return c
}

// Names returns the feature names in contract order.
func (c *Contract) Names() []string {
	names := make([]string, len(c.features))
	for i, f := range c.features {
		names[i] = f.Name
	}
	return names
}

// Features returns a copy of the feature descriptors.
func (c *Contract) Features() []Feature {
	out := make([]Feature, len(c.features))
	copy(out, c.features)
	return out
}

// Lookup returns the descriptor for name.
func (c *Contract) Lookup(name string) (Feature, bool) {
	i, ok := c.index[name]
	if !ok {
		return Feature{}, false
	}
	return c.features[i], true
}

// Len is the number of features.
func (c *Contract) Len() int { return len(c.features) }

// CheckColumns verifies that columns name exactly the contract's features.
func (c *Contract) CheckColumns(columns []string) error {
	seen := make(map[string]bool, len(columns))
	var unknown, missing []string
	for _, col := range columns {
		if _, ok := c.index[col]; !ok {
			unknown = append(unknown, col)
		}
		if seen[col] {
			return fmt.Errorf("column %q listed twice", col)
		}
		seen[col] = true
	}
	for _, f := range c.features {
		if !seen[f.Name] {
			missing = append(missing, f.Name)
		}
	}
	if len(unknown) > 0 || len(missing) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("columns do not match feature contract: missing %v, unknown %v", missing, unknown)
	}
	return nil
}

// Vector reorders a contract-ordered row into the given column order.
// Columns not in the contract yield NaN.
func (c *Contract) Vector(row Row, columns []string) []float64 {
	out := make([]float64, len(columns))
	for i, col := range columns {
		j, ok := c.index[col]
		if !ok || j >= len(row) {
			out[i] = math.NaN()
			continue
		}
		out[i] = row[j]
	}
	return out
}

// Validate checks raw request fields against the contract and returns the
// values in contract order. All violations are reported together as
// ValidationErrors; the row is still returned with NaN in place of every
// missing or invalid value. Fields outside the contract are ignored.
func (c *Contract) Validate(raw map[string]any) (Row, error) {
	row := make(Row, len(c.features))
	var errs ValidationErrors

	for i, f := range c.features {
		v, present := raw[f.Name]
		if !present || v == nil {
			if f.Required {
				errs = append(errs, &MissingRequiredFeatureError{Name: f.Name})
			}
			row[i] = math.NaN()
			continue
		}

		value, err := coerce(f, v)
		if err != nil {
			errs = append(errs, err)
			row[i] = math.NaN()
			continue
		}
		row[i] = value
	}

	if len(errs) > 0 {
		return row, errs
	}
	return row, nil
}

// IsMissing reports whether name is absent or null in raw.
func IsMissing(raw map[string]any, name string) bool {
	v, ok := raw[name]
	return !ok || v == nil
}

func coerce(f Feature, v any) (float64, FieldError) {
	var (
		value float64
		got   string
	)

	switch x := v.(type) {
	case float64:
		value, got = x, "number"
	case float32:
		value, got = float64(x), "number"
	case int:
		value, got = float64(x), "number"
	case int32:
		value, got = float64(x), "number"
	case int64:
		value, got = float64(x), "number"
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, &TypeMismatchError{Name: f.Name, Expected: f.Kind.String(), Got: x.String()}
		}
		value, got = parsed, "number"
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, &TypeMismatchError{Name: f.Name, Expected: f.Kind.String(), Got: fmt.Sprintf("string %q", x)}
		}
		value, got = parsed, "string"
	case bool:
		return 0, &TypeMismatchError{Name: f.Name, Expected: f.Kind.String(), Got: "bool"}
	default:
		return 0, &TypeMismatchError{Name: f.Name, Expected: f.Kind.String(), Got: fmt.Sprintf("%T", v)}
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, &TypeMismatchError{Name: f.Name, Expected: f.Kind.String(), Got: "non-finite " + got}
	}
	if f.Kind == KindInt && value != math.Trunc(value) {
		return 0, &TypeMismatchError{Name: f.Name, Expected: f.Kind.String(), Got: "fractional " + got}
	}
	return value, nil
}
