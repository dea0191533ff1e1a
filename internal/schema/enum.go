package schema

import (
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/text/cases"
)

// EnumPair binds one in-memory enum value to its stored string.
type EnumPair struct {
	Value int
	Name  string
}

// EnumMapping is a bijection between enum values and the strings stored in
// the database.
type EnumMapping struct {
	name     string
	toString map[int]string
	toValue  map[string]int
	folded   map[string]int
}

// NewEnumMapping builds a mapping and rejects anything that is not a
// bijection: duplicate values, duplicate strings, or strings that only
// differ in case.
func NewEnumMapping(name string, pairs ...EnumPair) (*EnumMapping, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("enum %s: no values", name)
	}
	m := &EnumMapping{
		name:     name,
		toString: make(map[int]string, len(pairs)),
		toValue:  make(map[string]int, len(pairs)),
		folded:   make(map[string]int, len(pairs)),
	}
	for _, p := range pairs {
		if p.Name == "" {
			return nil, fmt.Errorf("enum %s: value %d has empty name", name, p.Value)
		}
		if prev, ok := m.toString[p.Value]; ok {
			return nil, fmt.Errorf("enum %s: value %d mapped to both %q and %q", name, p.Value, prev, p.Name)
		}
		if _, ok := m.toValue[p.Name]; ok {
			return nil, fmt.Errorf("enum %s: name %q used twice", name, p.Name)
		}
		f := fold(p.Name)
		if _, ok := m.folded[f]; ok {
			return nil, fmt.Errorf("enum %s: name %q differs from another only in case", name, p.Name)
		}
		m.toString[p.Value] = p.Name
		m.toValue[p.Name] = p.Value
		m.folded[f] = p.Value
	}
	return m, nil
}

// MustEnumMapping is NewEnumMapping for package-level tables; it panics on
// an invalid mapping so the mistake is caught at start-up.
func MustEnumMapping(name string, pairs ...EnumPair) *EnumMapping {
	m, err := NewEnumMapping(name, pairs...)
	if err != nil {
		panic(err)
	}
	return m
}

// Name of the enum type, used in log output.
func (m *EnumMapping) Name() string { return m.name }

// String returns the stored form of v.
func (m *EnumMapping) String(v int) (string, bool) {
	s, ok := m.toString[v]
	return s, ok
}

// Value returns the enum value stored as s. Legacy rows with different
// capitalisation are accepted with a warning.
func (m *EnumMapping) Value(s string) (int, bool) {
	if v, ok := m.toValue[s]; ok {
		return v, true
	}
	if v, ok := m.folded[fold(s)]; ok {
		slog.Warn("enum value matched ignoring case", "enum", m.name, "stored", s, "canonical", m.toString[v])
		return v, true
	}
	return 0, false
}

// Values returns every enum value in ascending order.
func (m *EnumMapping) Values() []int {
	vals := make([]int, 0, len(m.toString))
	for v := range m.toString {
		vals = append(vals, v)
	}
	sort.Ints(vals)
	return vals
}

// cases.Caser is stateful, so one is made per call.
func fold(s string) string {
	return cases.Fold().String(s)
}
