// Package config loads and writes the section/key/value configuration
// files consumed by the benchmark. Both the base configuration and the
// sweep specification use this format.
package config

// DefaultSection holds keys inherited by every other section.
const DefaultSection = "DEFAULT"

// Key is a single key/value pair inside a section.
type Key struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Section is a named, ordered list of keys.
type Section struct {
	Name string `json:"name" yaml:"name"`
	Keys []Key  `json:"keys" yaml:"keys"`
}

// Configuration is an ordered mapping of section name to ordered keys.
// Section and key names are compared case-sensitively.
type Configuration struct {
	Sections []Section `json:"sections" yaml:"sections"`
}

// SectionNames returns section names in declaration order.
func (c Configuration) SectionNames() []string {
	names := make([]string, 0, len(c.Sections))
	for _, s := range c.Sections {
		names = append(names, s.Name)
	}

	return names
}

// Section returns the named section.
func (c Configuration) Section(name string) (Section, bool) {
	if i := c.sectionIndex(name); i >= 0 {
		return c.Sections[i], true
	}

	return Section{}, false
}

// HasSection reports whether the named section exists.
func (c Configuration) HasSection(name string) bool {
	return c.sectionIndex(name) >= 0
}

// HasKey reports whether key is defined in section.
func (c Configuration) HasKey(section, key string) bool {
	_, ok := c.Get(section, key)

	return ok
}

// Get returns the value of key in section.
func (c Configuration) Get(section, key string) (string, bool) {
	i := c.sectionIndex(section)
	if i < 0 {
		return "", false
	}

	return c.Sections[i].Get(key)
}

// Options returns the keys visible in section: its own keys followed by
// DEFAULT keys the section does not redefine. It returns nil when the
// section does not exist.
func (c Configuration) Options(section string) []Key {
	s, ok := c.Section(section)
	if !ok {
		return nil
	}

	keys := append([]Key(nil), s.Keys...)
	if section == DefaultSection {
		return keys
	}

	defaults, _ := c.Section(DefaultSection)
	for _, k := range defaults.Keys {
		if _, shadowed := s.Get(k.Name); !shadowed {
			keys = append(keys, k)
		}
	}

	return keys
}

// HasOption reports whether key is defined in section, directly or
// through DEFAULT. The section itself must exist.
func (c Configuration) HasOption(section, key string) bool {
	if !c.HasSection(section) {
		return false
	}

	if c.HasKey(section, key) {
		return true
	}

	return c.HasKey(DefaultSection, key)
}

// EnsureSection appends an empty section if name is not present.
func (c *Configuration) EnsureSection(name string) {
	if c.sectionIndex(name) < 0 {
		c.Sections = append(c.Sections, Section{Name: name})
	}
}

// Set assigns value to key in section, creating either as needed.
// An existing key keeps its position.
func (c *Configuration) Set(section, key, value string) {
	c.EnsureSection(section)
	c.Sections[c.sectionIndex(section)].Set(key, value)
}

// Clone returns a deep copy of c.
func (c Configuration) Clone() Configuration {
	out := Configuration{Sections: make([]Section, len(c.Sections))}
	for i, s := range c.Sections {
		out.Sections[i] = Section{
			Name: s.Name,
			Keys: append([]Key(nil), s.Keys...),
		}
	}

	return out
}

func (c Configuration) sectionIndex(name string) int {
	for i, s := range c.Sections {
		if s.Name == name {
			return i
		}
	}

	return -1
}

// Get returns the value of key.
func (s Section) Get(key string) (string, bool) {
	for _, k := range s.Keys {
		if k.Name == key {
			return k.Value, true
		}
	}

	return "", false
}

// Set assigns value to key, appending the key if it is new.
func (s *Section) Set(key, value string) {
	for i := range s.Keys {
		if s.Keys[i].Name == key {
			s.Keys[i].Value = value

			return
		}
	}

	s.Keys = append(s.Keys, Key{Name: key, Value: value})
}
