// Package sweep expands a sweep specification into every parameter
// combination and merges each combination over a base configuration.
package sweep

import (
	"strings"

	"github.com/weiihann/sweeper/config"
)

// ValueSeparator splits a parameter's candidate list.
const ValueSeparator = ","

// Param is one swept parameter and its candidate values.
type Param struct {
	Name   string   `json:"name" yaml:"name"`
	Values []string `json:"values" yaml:"values"`
}

// Spec is the ordered set of swept parameters.
type Spec struct {
	Params []Param `json:"params" yaml:"params"`
}

// ExtractSpec parses the named section of a sweep configuration. Every key
// visible in the section, including those inherited from DEFAULT, becomes
// a parameter whose value is split on commas without trimming. Names of
// all other sections are returned as skipped, in file order.
func ExtractSpec(cfg config.Configuration, section string) (Spec, []string) {
	var (
		spec    Spec
		skipped []string
	)

	for _, name := range cfg.SectionNames() {
		if name != section {
			skipped = append(skipped, name)
		}
	}

	for _, k := range cfg.Options(section) {
		spec.set(k.Name, strings.Split(k.Value, ValueSeparator))
	}

	return spec, skipped
}

// Count returns the number of combinations the spec enumerates.
func (s Spec) Count() int {
	n := 1
	for _, p := range s.Params {
		n *= len(p.Values)
	}

	return n
}

// Names returns parameter names in declaration order.
func (s Spec) Names() []string {
	names := make([]string, 0, len(s.Params))
	for _, p := range s.Params {
		names = append(names, p.Name)
	}

	return names
}

// Overrides reports, per parameter, whether base already defines the key
// in section, directly or through DEFAULT. The merge ignores this; it is
// only shown to the user.
func (s Spec) Overrides(base config.Configuration, section string) []bool {
	out := make([]bool, len(s.Params))
	for i, p := range s.Params {
		out[i] = base.HasOption(section, p.Name)
	}

	return out
}

func (s *Spec) set(name string, values []string) {
	for i := range s.Params {
		if s.Params[i].Name == name {
			s.Params[i].Values = values

			return
		}
	}

	s.Params = append(s.Params, Param{Name: name, Values: values})
}
