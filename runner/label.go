package runner

import "github.com/weiihann/sweeper/sweep"

// DefaultLabel names the result table when no override is given.
const DefaultLabel = "parametersweep_results"

// LabelPolicy picks the result label for a combination. index is 1-based.
type LabelPolicy func(index int, c sweep.Combination) string

// FixedLabel uses the same label for every run, so all runs accumulate
// into one result table.
func FixedLabel(label string) LabelPolicy {
	return func(int, sweep.Combination) string {
		return label
	}
}

// ResolveLabel returns a fixed policy for override, or DefaultLabel when
// override is empty.
func ResolveLabel(override string) LabelPolicy {
	if override == "" {
		return FixedLabel(DefaultLabel)
	}

	return FixedLabel(override)
}
