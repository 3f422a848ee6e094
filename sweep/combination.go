package sweep

import (
	"iter"
	"strings"
)

// Assignment binds one parameter to one chosen value.
type Assignment struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Combination assigns a value to every parameter of a Spec, in the
// spec's parameter order.
type Combination []Assignment

// Get returns the value assigned to name.
func (c Combination) Get(name string) (string, bool) {
	for _, a := range c {
		if a.Name == name {
			return a.Value, true
		}
	}

	return "", false
}

// String renders the combination as name=value pairs.
func (c Combination) String() string {
	parts := make([]string, len(c))
	for i, a := range c {
		parts[i] = a.Name + "=" + a.Value
	}

	return strings.Join(parts, " ")
}

// Combinations enumerates the cartesian product of the candidate
// lists, rightmost parameter varying fastest. A spec with no parameters
// yields a single empty combination. Ranging again restarts enumeration.
func (s Spec) Combinations() iter.Seq[Combination] {
	return func(yield func(Combination) bool) {
		for _, p := range s.Params {
			if len(p.Values) == 0 {
				return
			}
		}

		idx := make([]int, len(s.Params))

		for {
			c := make(Combination, len(s.Params))
			for i, p := range s.Params {
				c[i] = Assignment{Name: p.Name, Value: p.Values[idx[i]]}
			}

			if !yield(c) {
				return
			}

			// Advance the odometer from the rightmost position.
			i := len(idx) - 1
			for ; i >= 0; i-- {
				idx[i]++
				if idx[i] < len(s.Params[i].Values) {
					break
				}

				idx[i] = 0
			}

			if i < 0 {
				return
			}
		}
	}
}
