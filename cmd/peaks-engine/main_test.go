// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/peaks-engine/internal/instrument"
	"github.com/pdiddy/peaks-engine/internal/peaks"
	"github.com/pdiddy/peaks-engine/internal/workspace"
	"github.com/pdiddy/peaks-engine/pkg/types"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(viper.New())
	require.NoError(t, err)

	assert.Equal(t, types.StoreSQLite, cfg.Store.Backend)
	assert.Equal(t, defaultDataDir, cfg.Store.DataDir)
	assert.Equal(t, defaultInstrumentsDir, cfg.InstrumentsDir)
	assert.Equal(t, defaultLogLevel, cfg.LogLevel)
	assert.InDelta(t, 0.01, cfg.Combine.Tolerance, 1e-12)
	assert.False(t, cfg.Combine.CombineMatchingPeaks)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peaks-engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  backend: memory
  data_dir: /tmp/peaks
combine:
  tolerance: 0.2
  combine_matching_peaks: true
log_level: debug
`), 0o644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, types.StoreMemory, cfg.Store.Backend)
	assert.Equal(t, "/tmp/peaks", cfg.Store.DataDir)
	assert.InDelta(t, 0.2, cfg.Combine.Tolerance, 1e-12)
	assert.True(t, cfg.Combine.CombineMatchingPeaks)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigInvalid(t *testing.T) {
	v := viper.New()
	v.Set("log_level", "chatty")
	_, err := loadConfig(v)
	assert.Error(t, err)
}

func TestImportFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}
	a := write("a.yaml", "name: a\ninstrument_name: TEST_CYLINDER\npeaks:\n  - detector_id: 1\n    wavelength: 1\n")
	b := write("b.yaml", "name: b\ninstrument_name: TEST_CYLINDER\npeaks:\n  - detector_id: 2\n    wavelength: 1\n  - detector_id: 3\n    wavelength: 2\n")

	inst := instrument.NewTestInstrument()
	insts := map[string]*instrument.Instrument{"TEST_CYLINDER": inst}
	store := workspace.NewMemoryStore()
	var out bytes.Buffer
	reportEvents(store, &out)

	require.NoError(t, importFiles(context.Background(), store, insts, []string{a, b}, 2, &out))
	assert.Equal(t, "added: a (1 peaks)\nadded: b (2 peaks)\nImported 2 workspace(s)\n", out.String())

	ws, err := store.Get(context.Background(), "b")
	require.NoError(t, err)
	assert.Same(t, inst, ws.Instrument())
}

func TestImportFilesAllOrNothing(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(good, []byte("name: good\ninstrument_name: TEST_CYLINDER\npeaks: []\n"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("name: bad\ninstrument_name: MISSING\npeaks: []\n"), 0o644))

	store := workspace.NewMemoryStore()
	insts := map[string]*instrument.Instrument{"TEST_CYLINDER": instrument.NewTestInstrument()}

	err := importFiles(context.Background(), store, insts, []string{good, bad}, 0, &bytes.Buffer{})
	assert.ErrorIs(t, err, workspace.ErrUnknownInstrument)

	names, err := store.Names(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestImportFilesDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, f := range []string{"one.yaml", "two.yaml"} {
		path := filepath.Join(dir, f)
		require.NoError(t, os.WriteFile(path, []byte("name: same\ninstrument_name: TEST_CYLINDER\npeaks: []\n"), 0o644))
		paths = append(paths, path)
	}
	insts := map[string]*instrument.Instrument{"TEST_CYLINDER": instrument.NewTestInstrument()}

	err := importFiles(context.Background(), workspace.NewMemoryStore(), insts, paths, 0, &bytes.Buffer{})
	assert.ErrorContains(t, err, "defined in both")
}

func TestShowWorkspaceSelection(t *testing.T) {
	ctx := context.Background()
	store := workspace.NewMemoryStore()
	require.NoError(t, store.Put(ctx, "run", peaks.NewTestWorkspace(instrument.NewTestInstrument(), 6)))

	var out bytes.Buffer
	require.NoError(t, showWorkspace(ctx, store, "run", "1,4", false, &out))
	assert.Contains(t, out.String(), "Workspace run: 2 peaks, instrument TEST_CYLINDER")
	assert.Regexp(t, `(?m)^\s+1\s+1\s+1\.5000`, out.String())
	assert.Regexp(t, `(?m)^\s+4\s+4\s+4\.5000`, out.String())

	out.Reset()
	require.NoError(t, showWorkspace(ctx, store, "run", "2-3", false, &out))
	assert.Regexp(t, `(?m)^\s+3\s+3\s+3\.5000`, out.String())

	err := showWorkspace(ctx, store, "run", "9", false, &out)
	assert.ErrorIs(t, err, peaks.ErrSelectionRange)

	err = showWorkspace(ctx, store, "absent", "", false, &out)
	assert.ErrorIs(t, err, workspace.ErrNotFound)
}

func TestListWorkspaces(t *testing.T) {
	ctx := context.Background()
	store := workspace.NewMemoryStore()

	var out bytes.Buffer
	require.NoError(t, listWorkspaces(ctx, store, &out))
	assert.Equal(t, "No workspaces stored.\n", out.String())

	require.NoError(t, store.Put(ctx, "run", peaks.NewTestWorkspace(instrument.NewTestInstrument(), 2)))
	out.Reset()
	require.NoError(t, listWorkspaces(ctx, store, &out))
	assert.Regexp(t, `run\s+2\s+TEST_CYLINDER`, out.String())
}

func TestWriteSampleInstrument(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "instruments")
	path, err := writeSampleInstrument(dir, "DEMO")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "DEMO.yaml"), path)

	insts, err := instrument.LoadDir(dir)
	require.NoError(t, err)
	require.Contains(t, insts, "DEMO")
	assert.Equal(t, 1000, insts["DEMO"].NumberDetectors())

	_, err = writeSampleInstrument(dir, "DEMO")
	assert.Error(t, err)

	var out bytes.Buffer
	require.NoError(t, listInstruments(insts, &out))
	assert.Contains(t, out.String(), "DEMO")
}
