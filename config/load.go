package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/ini.v1"
)

// ErrNotFound is returned when a configuration path does not resolve to
// an existing regular file.
var ErrNotFound = errors.New("configuration file not found")

// ParseError reports a configuration file that could not be split into
// sections and keys.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse configuration %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// loadOptions mirror a case-sensitive configparser: inline comment
// markers, surrounding quotes and a trailing backslash are part of the
// value.
var loadOptions = ini.LoadOptions{
	IgnoreContinuation:         true,
	IgnoreInlineComment:        true,
	PreserveSurroundedQuote:    true,
	AllowPythonMultilineValues: true,
	KeyValueDelimiters:         "=:",
}

// Load reads the configuration file at path.
func Load(path string) (Configuration, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Configuration{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		return Configuration{}, fmt.Errorf("stat %s: %w", path, err)
	}

	if info.IsDir() {
		return Configuration{}, fmt.Errorf("%w: %s is a directory", ErrNotFound, path)
	}

	file, err := ini.LoadSources(loadOptions, path)
	if err != nil {
		return Configuration{}, &ParseError{Path: path, Err: err}
	}

	return fromINI(file), nil
}

// Parse reads a configuration from raw bytes.
func Parse(data []byte) (Configuration, error) {
	file, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return Configuration{}, &ParseError{Path: "<bytes>", Err: err}
	}

	return fromINI(file), nil
}

func fromINI(file *ini.File) Configuration {
	var cfg Configuration

	for _, sec := range file.Sections() {
		keys := sec.Keys()

		// ini.v1 always materializes DEFAULT; keep it only when used.
		if sec.Name() == DefaultSection && len(keys) == 0 {
			continue
		}

		s := Section{Name: sec.Name(), Keys: make([]Key, 0, len(keys))}
		for _, k := range keys {
			s.Keys = append(s.Keys, Key{Name: k.Name(), Value: k.Value()})
		}

		cfg.Sections = append(cfg.Sections, s)
	}

	return cfg
}
