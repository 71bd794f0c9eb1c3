// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/peaks-engine/internal/instrument"
	"github.com/pdiddy/peaks-engine/internal/peaks"
	"github.com/pdiddy/peaks-engine/pkg/types"
)

// ErrUnknownInstrument is returned when a peaks file names an instrument
// that is not among the loaded definitions.
var ErrUnknownInstrument = errors.New("unknown instrument")

// Format selects the export encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ReadPeaksFile parses and validates a peaks file. JSON files parse as
// YAML.
func ReadPeaksFile(path string) (types.PeaksFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.PeaksFile{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var f types.PeaksFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return types.PeaksFile{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := validate.Struct(f); err != nil {
		return types.PeaksFile{}, fmt.Errorf("invalid peaks file %s: %w", path, err)
	}
	return f, nil
}

// Build turns a peaks file into a workspace. A file that names its
// instrument resolves it from instruments, so workspaces imported against
// the same definition share one *instrument.Instrument.
func Build(f types.PeaksFile, instruments map[string]*instrument.Instrument) (*peaks.Workspace, error) {
	var inst *instrument.Instrument
	if f.Instrument != nil {
		var err error
		inst, err = instrument.FromDefinition(*f.Instrument)
		if err != nil {
			return nil, fmt.Errorf("workspace %s: %w", f.Name, err)
		}
	} else {
		var ok bool
		inst, ok = instruments[f.InstrumentName]
		if !ok {
			return nil, fmt.Errorf("workspace %s: %w: %s", f.Name, ErrUnknownInstrument, f.InstrumentName)
		}
	}

	ws, err := peaks.FromRecords(inst, f.Peaks)
	if err != nil {
		return nil, fmt.Errorf("workspace %s: %w", f.Name, err)
	}
	return ws, nil
}

// ToFile returns the on-disk form of ws, with the instrument inlined and Q
// written for every peak.
func ToFile(name string, ws *peaks.Workspace) types.PeaksFile {
	f := types.PeaksFile{Name: name, Peaks: ws.Records()}
	if inst := ws.Instrument(); inst != nil {
		def := inst.Definition()
		f.Instrument = &def
	}
	return f
}

// Export writes the named workspace to dir/<name>.<format> and returns the
// path written.
func Export(ctx context.Context, store Store, name, dir string, format Format) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	ws, err := store.Get(ctx, name)
	if err != nil {
		return "", err
	}

	f := ToFile(name, ws)

	var data []byte
	switch format {
	case FormatYAML, "":
		format = FormatYAML
		data, err = yaml.Marshal(&f)
		if err != nil {
			return "", fmt.Errorf("marshaling YAML: %w", err)
		}
	case FormatJSON:
		data, err = json.MarshalIndent(&f, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshaling JSON: %w", err)
		}
	default:
		return "", fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, name+"."+string(format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
