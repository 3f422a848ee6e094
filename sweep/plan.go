package sweep

import "github.com/weiihann/sweeper/config"

// PlannedParam is a parameter as shown to the user before a sweep.
type PlannedParam struct {
	Param      `yaml:",inline"`
	Overridden bool `json:"overridden" yaml:"overridden"`
}

// PlannedSection is one section of the sweep file, in file order.
type PlannedSection struct {
	Name  string `json:"name" yaml:"name"`
	Match bool   `json:"match" yaml:"match"`
}

// Plan summarizes what a sweep will run.
type Plan struct {
	Section  string           `json:"section" yaml:"section"`
	Sections []PlannedSection `json:"sections" yaml:"sections"`
	Params   []PlannedParam   `json:"params" yaml:"params"`
	Skipped  []string         `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Total    int              `json:"total" yaml:"total"`
	Spec     Spec             `json:"-" yaml:"-"`
	HasMatch bool             `json:"has_match" yaml:"has_match"`
}

// NewPlan extracts the spec for section and marks parameters that base
// already defines.
func NewPlan(base, sweepCfg config.Configuration, section string) Plan {
	spec, skipped := ExtractSpec(sweepCfg, section)
	overrides := spec.Overrides(base, section)

	plan := Plan{
		Section:  section,
		Skipped:  skipped,
		Total:    spec.Count(),
		Spec:     spec,
		HasMatch: sweepCfg.HasSection(section),
	}

	for _, name := range sweepCfg.SectionNames() {
		plan.Sections = append(plan.Sections, PlannedSection{
			Name:  name,
			Match: name == section,
		})
	}

	for i, p := range spec.Params {
		plan.Params = append(plan.Params, PlannedParam{
			Param:      p,
			Overridden: overrides[i],
		})
	}

	return plan
}
