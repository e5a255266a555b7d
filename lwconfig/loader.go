package lwconfig

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Parse parses a Config from YAML bytes, starting from Default() so any
// field the document omits keeps its default value.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &Error{Message: "failed to parse YAML", Cause: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &Error{Message: err.Error()}
	}
	return cfg, nil
}

// Load reads and parses a Config from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{File: path, Message: "failed to read file", Cause: err}
	}
	cfg, err := Parse(data)
	if err != nil {
		if ce, ok := err.(*Error); ok {
			ce.File = path
			return nil, ce
		}
		return nil, &Error{File: path, Message: err.Error()}
	}
	return cfg, nil
}
