package rhema

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest describes a project: extra library files evaluated into the
// root environment on startup and an optional session database.
type Manifest struct {
	Name     string   `yaml:"name"`
	Preludes []string `yaml:"preludes"`
	Session  string   `yaml:"session"`
}

// LoadManifest reads a YAML manifest. A missing file is not an error;
// it returns (nil, nil) so callers fall back to defaults.
func LoadManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	var m Manifest
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return &Manifest{}, nil
		}
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// ApplyPreludes evaluates each prelude file named by the manifest into env.
func (m *Manifest) ApplyPreludes(env *Env) error {
	for _, path := range m.Preludes {
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read prelude %s: %w", path, err)
		}
		if err := LoadSource(env, path, string(src)); err != nil {
			return err
		}
	}
	return nil
}
