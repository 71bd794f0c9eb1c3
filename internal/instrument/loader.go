// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package instrument

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/peaks-engine/pkg/types"
)

// LoadFile reads a YAML instrument definition and builds the instrument.
func LoadFile(path string) (*Instrument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading instrument %s: %w", path, err)
	}
	var def types.InstrumentDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing instrument %s: %w", path, err)
	}
	inst, err := FromDefinition(def)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return inst, nil
}

// LoadDir loads every *.yaml and *.yml file in dir and returns the
// instruments keyed by name. A missing directory is not an error; LoadDir
// returns an empty map. Dotfiles and subdirectories are skipped.
func LoadDir(dir string) (map[string]*Instrument, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*Instrument{}, nil
		}
		return nil, fmt.Errorf("reading instruments directory %s: %w", dir, err)
	}

	instruments := make(map[string]*Instrument)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		ext := filepath.Ext(name)
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		inst, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if _, dup := instruments[inst.Name()]; dup {
			return nil, fmt.Errorf("instrument %s defined more than once in %s", inst.Name(), dir)
		}
		instruments[inst.Name()] = inst
	}

	return instruments, nil
}
