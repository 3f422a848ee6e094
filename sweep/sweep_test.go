package sweep

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/weiihann/sweeper/config"
)

func collect(s Spec) []Combination {
	var out []Combination
	for c := range s.Combinations() {
		out = append(out, c)
	}

	return out
}

func TestExtractSpec(t *testing.T) {
	cfg := config.Configuration{Sections: []config.Section{
		{Name: "notes", Keys: []config.Key{{Name: "x", Value: "1,2"}}},
		{Name: "benchmark", Keys: []config.Key{
			{Name: "threads", Value: "1,2,4"},
			{Name: "mode", Value: " fast, slow"},
		}},
		{Name: "other"},
	}}

	spec, skipped := ExtractSpec(cfg, "benchmark")

	want := Spec{Params: []Param{
		{Name: "threads", Values: []string{"1", "2", "4"}},
		{Name: "mode", Values: []string{" fast", " slow"}},
	}}
	if diff := cmp.Diff(want, spec); diff != "" {
		t.Errorf("spec mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{"notes", "other"}, skipped)
}

func TestExtractSpecSectionIsCaseSensitive(t *testing.T) {
	cfg := config.Configuration{Sections: []config.Section{
		{Name: "Benchmark", Keys: []config.Key{{Name: "threads", Value: "1"}}},
	}}

	spec, skipped := ExtractSpec(cfg, "benchmark")
	assert.Empty(t, spec.Params)
	assert.Equal(t, []string{"Benchmark"}, skipped)
}

func TestExtractSpecInheritsDefaults(t *testing.T) {
	cfg := config.Configuration{Sections: []config.Section{
		{Name: config.DefaultSection, Keys: []config.Key{
			{Name: "mode", Value: "a,b"},
			{Name: "threads", Value: "8"},
		}},
		{Name: "benchmark", Keys: []config.Key{{Name: "threads", Value: "1,2"}}},
	}}

	spec, skipped := ExtractSpec(cfg, "benchmark")

	want := Spec{Params: []Param{
		{Name: "threads", Values: []string{"1", "2"}},
		{Name: "mode", Values: []string{"a", "b"}},
	}}
	if diff := cmp.Diff(want, spec); diff != "" {
		t.Errorf("spec mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, []string{config.DefaultSection}, skipped)
}

func TestExtractSpecMissingSectionIgnoresDefaults(t *testing.T) {
	cfg := config.Configuration{Sections: []config.Section{
		{Name: config.DefaultSection, Keys: []config.Key{{Name: "mode", Value: "a,b"}}},
	}}

	spec, _ := ExtractSpec(cfg, "benchmark")
	assert.Empty(t, spec.Params)
	assert.Equal(t, 1, spec.Count())
}

func TestSingleParameterScenario(t *testing.T) {
	base := config.Configuration{Sections: []config.Section{
		{Name: "http", Keys: []config.Key{{Name: "port", Value: "80"}}},
	}}
	sweepCfg := config.Configuration{Sections: []config.Section{
		{Name: "benchmark", Keys: []config.Key{{Name: "threads", Value: "1,2,4"}}},
	}}

	spec, _ := ExtractSpec(sweepCfg, "benchmark")
	require.Equal(t, 3, spec.Count())

	combos := collect(spec)
	require.Len(t, combos, 3)

	for i, want := range []string{"1", "2", "4"} {
		got, ok := combos[i].Get("threads")
		require.True(t, ok)
		assert.Equal(t, want, got)

		merged := Merge(base, combos[i], "benchmark")

		port, ok := merged.Get("http", "port")
		assert.True(t, ok)
		assert.Equal(t, "80", port)

		threads, ok := merged.Get("benchmark", "threads")
		assert.True(t, ok)
		assert.Equal(t, want, threads)
	}
}

func TestRightmostParameterVariesFastest(t *testing.T) {
	spec := Spec{Params: []Param{
		{Name: "mode", Values: []string{"fast", "slow"}},
		{Name: "seed", Values: []string{"1", "2"}},
	}}

	var got []string
	for c := range spec.Combinations() {
		got = append(got, c.String())
	}

	want := []string{
		"mode=fast seed=1",
		"mode=fast seed=2",
		"mode=slow seed=1",
		"mode=slow seed=2",
	}
	assert.Equal(t, want, got)
}

func TestEmptySpecYieldsOneEmptyCombination(t *testing.T) {
	var spec Spec

	assert.Equal(t, 1, spec.Count())

	combos := collect(spec)
	require.Len(t, combos, 1)
	assert.Empty(t, combos[0])
}

func TestCombinationsRestartable(t *testing.T) {
	spec := Spec{Params: []Param{{Name: "a", Values: []string{"x", "y"}}}}

	assert.Equal(t, collect(spec), collect(spec))
}

func TestCombinationsEarlyStop(t *testing.T) {
	spec := Spec{Params: []Param{{Name: "a", Values: []string{"1", "2", "3"}}}}

	n := 0
	for range spec.Combinations() {
		n++
		if n == 2 {
			break
		}
	}

	assert.Equal(t, 2, n)
}

func TestCombinationsAreIndependentValues(t *testing.T) {
	spec := Spec{Params: []Param{{Name: "a", Values: []string{"1", "2"}}}}

	combos := collect(spec)
	combos[0][0].Value = "mutated"

	v, _ := combos[1].Get("a")
	assert.Equal(t, "2", v)
}

func TestCombinationsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nParams := rapid.IntRange(0, 4).Draw(t, "params")

		spec := Spec{}
		want := 1
		for i := 0; i < nParams; i++ {
			n := rapid.IntRange(1, 4).Draw(t, fmt.Sprintf("len%d", i))
			values := make([]string, n)
			for j := range values {
				values[j] = fmt.Sprintf("v%d", j)
			}

			spec.Params = append(spec.Params, Param{
				Name:   fmt.Sprintf("p%d", i),
				Values: values,
			})
			want *= n
		}

		combos := collect(spec)
		assert.Equal(t, want, len(combos))
		assert.Equal(t, want, spec.Count())

		seen := make(map[string]bool, len(combos))
		for _, c := range combos {
			assert.Equal(t, spec.Names(), names(c), "combination must assign every parameter")

			key := c.String()
			assert.False(t, seen[key], "duplicate combination %s", key)
			seen[key] = true
		}
	})
}

func TestMergeSweepWinsAndIsPure(t *testing.T) {
	base := config.Configuration{Sections: []config.Section{
		{Name: "benchmark", Keys: []config.Key{
			{Name: "threads", Value: "16"},
			{Name: "runs", Value: "3"},
		}},
		{Name: "output", Keys: []config.Key{{Name: "dir", Value: "/tmp"}}},
	}}
	snapshot := base.Clone()

	combo := Combination{{Name: "threads", Value: "2"}, {Name: "mode", Value: "zarr"}}

	first := Merge(base, combo, "benchmark")
	second := Merge(base, combo, "benchmark")

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("merge is not deterministic (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(snapshot, base); diff != "" {
		t.Errorf("merge mutated base (-before +after):\n%s", diff)
	}

	threads, _ := first.Get("benchmark", "threads")
	assert.Equal(t, "2", threads)

	runs, _ := first.Get("benchmark", "runs")
	assert.Equal(t, "3", runs)

	mode, _ := first.Get("benchmark", "mode")
	assert.Equal(t, "zarr", mode)

	dir, _ := first.Get("output", "dir")
	assert.Equal(t, "/tmp", dir)
}

func TestMergeCreatesMissingSection(t *testing.T) {
	base := config.Configuration{Sections: []config.Section{{Name: "http"}}}

	merged := Merge(base, nil, "benchmark")
	assert.Equal(t, []string{"http", "benchmark"}, merged.SectionNames())
	assert.Equal(t, []string{"http"}, base.SectionNames())
}

func TestMergeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		keys := rapid.SliceOfDistinct(rapid.StringMatching(`[a-zA-Z]{1,4}`), func(s string) string { return s }).Draw(t, "keys")

		base := config.Configuration{}
		combo := Combination{}
		for i, k := range keys {
			if rapid.Bool().Draw(t, fmt.Sprintf("inBase%d", i)) {
				base.Set("sweep", k, "base")
			}
			if rapid.Bool().Draw(t, fmt.Sprintf("inCombo%d", i)) {
				combo = append(combo, Assignment{Name: k, Value: "swept"})
			}
		}

		merged := Merge(base, combo, "sweep")

		for _, k := range keys {
			if _, ok := combo.Get(k); ok {
				v, _ := merged.Get("sweep", k)
				assert.Equal(t, "swept", v)
			} else if base.HasKey("sweep", k) {
				v, _ := merged.Get("sweep", k)
				assert.Equal(t, "base", v)
			}
		}
	})
}

func TestNewPlanMarksOverrides(t *testing.T) {
	base := config.Configuration{Sections: []config.Section{
		{Name: "benchmark", Keys: []config.Key{{Name: "threads", Value: "16"}}},
	}}
	sweepCfg := config.Configuration{Sections: []config.Section{
		{Name: "ignored"},
		{Name: "benchmark", Keys: []config.Key{
			{Name: "threads", Value: "1,2"},
			{Name: "mode", Value: "a,b,c"},
		}},
	}}

	plan := NewPlan(base, sweepCfg, "benchmark")

	assert.True(t, plan.HasMatch)
	assert.Equal(t, 6, plan.Total)
	assert.Equal(t, []string{"ignored"}, plan.Skipped)
	require.Len(t, plan.Params, 2)
	assert.True(t, plan.Params[0].Overridden)
	assert.False(t, plan.Params[1].Overridden)
}

func TestNewPlanKeepsSectionOrder(t *testing.T) {
	sweepCfg := config.Configuration{Sections: []config.Section{
		{Name: "first"},
		{Name: "benchmark", Keys: []config.Key{{Name: "threads", Value: "1,2"}}},
		{Name: "last"},
	}}

	plan := NewPlan(config.Configuration{}, sweepCfg, "benchmark")

	want := []PlannedSection{
		{Name: "first"},
		{Name: "benchmark", Match: true},
		{Name: "last"},
	}
	if diff := cmp.Diff(want, plan.Sections); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
}

func TestOverridesSeeBaseDefaults(t *testing.T) {
	base := config.Configuration{Sections: []config.Section{
		{Name: config.DefaultSection, Keys: []config.Key{{Name: "threads", Value: "16"}}},
		{Name: "benchmark"},
	}}
	spec := Spec{Params: []Param{
		{Name: "threads", Values: []string{"1"}},
		{Name: "mode", Values: []string{"a"}},
	}}

	assert.Equal(t, []bool{true, false}, spec.Overrides(base, "benchmark"))
	assert.Equal(t, []bool{false, false}, spec.Overrides(base, "absent"))
}

func names(c Combination) []string {
	out := make([]string, len(c))
	for i, a := range c {
		out[i] = a.Name
	}

	return out
}
