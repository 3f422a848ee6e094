package sweep

import "github.com/weiihann/sweeper/config"

// Merge returns a copy of base with section populated from c. Swept keys
// always replace base values; base is not modified.
func Merge(base config.Configuration, c Combination, section string) config.Configuration {
	merged := base.Clone()
	merged.EnsureSection(section)

	for _, a := range c {
		merged.Set(section, a.Name, a.Value)
	}

	return merged
}
