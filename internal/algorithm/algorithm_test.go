// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package algorithm

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/peaks-engine/internal/combine"
	"github.com/pdiddy/peaks-engine/internal/instrument"
	"github.com/pdiddy/peaks-engine/internal/peaks"
	"github.com/pdiddy/peaks-engine/internal/workspace"
)

// --- test helpers ---

type testEnv struct {
	store workspace.Store
	logs  *bytes.Buffer
	alg   Algorithm
}

func testSetup(t *testing.T) testEnv {
	t.Helper()
	store := workspace.NewMemoryStore()
	logs := &bytes.Buffer{}
	alg, err := Standard().Create(CombinePeaksWorkspacesName, Env{
		Store:  store,
		Logger: slog.New(slog.NewTextHandler(logs, nil)),
	})
	require.NoError(t, err)
	alg.Initialize()
	return testEnv{store: store, logs: logs, alg: alg}
}

func (e testEnv) put(t *testing.T, name string, ws *peaks.Workspace) {
	t.Helper()
	require.NoError(t, e.store.Put(context.Background(), name, ws))
}

func (e testEnv) set(t *testing.T, props map[string]any) {
	t.Helper()
	for k, v := range props {
		require.NoError(t, e.alg.SetProperty(k, v), k)
	}
}

func (e testEnv) get(t *testing.T, name string) *peaks.Workspace {
	t.Helper()
	ws, err := e.store.Get(context.Background(), name)
	require.NoError(t, err)
	return ws
}

// --- registry ---

func TestRegistry(t *testing.T) {
	r := Standard()
	assert.Equal(t, []string{CombinePeaksWorkspacesName}, r.Names())

	_, err := r.Create("Rebin", Env{})
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)

	err = r.Register(CombinePeaksWorkspacesName, NewCombinePeaksWorkspaces)
	assert.Error(t, err)

	alg, err := r.Create(CombinePeaksWorkspacesName, Env{Store: workspace.NewMemoryStore()})
	require.NoError(t, err)
	assert.Equal(t, CombinePeaksWorkspacesName, alg.Name())
	assert.Equal(t, 1, alg.Version())
}

// --- CombinePeaksWorkspaces ---

func TestInit(t *testing.T) {
	alg := NewCombinePeaksWorkspaces(Env{Store: workspace.NewMemoryStore()})
	assert.ErrorIs(t, alg.SetProperty(PropTolerance, 0.1), ErrNotInitialized)
	assert.ErrorIs(t, alg.Execute(context.Background()), ErrNotInitialized)

	alg.Initialize()
	c := alg.(*CombinePeaksWorkspaces)
	assert.Equal(t, DefaultTolerance, c.opts.Tolerance)
	assert.False(t, c.opts.CombineMatchingPeaks)
}

func TestInvalidInputs(t *testing.T) {
	env := testSetup(t)

	err := env.alg.SetProperty(PropTolerance, -1.0)
	assert.ErrorIs(t, err, combine.ErrInvalidArgument)
	assert.Equal(t, DefaultTolerance, env.alg.(*CombinePeaksWorkspaces).opts.Tolerance)

	assert.ErrorIs(t, env.alg.SetProperty("Rebin", 1), ErrUnknownProperty)
	assert.Error(t, env.alg.SetProperty(PropTolerance, "wide"))
	assert.Error(t, env.alg.SetProperty(PropCombineMatchingPeaks, 3))
	assert.Error(t, env.alg.SetProperty(PropLHSWorkspace, 7))
}

func TestMissingProperties(t *testing.T) {
	env := testSetup(t)
	env.set(t, map[string]any{PropLHSWorkspace: "a", PropRHSWorkspace: "b"})

	err := env.alg.Execute(context.Background())
	assert.ErrorIs(t, err, ErrMissingProperty)
	assert.Contains(t, err.Error(), PropOutputWorkspace)
}

func TestMissingInputWorkspace(t *testing.T) {
	env := testSetup(t)
	env.put(t, "lhs", peaks.NewTestWorkspace(instrument.NewTestInstrument(), 2))
	env.set(t, map[string]any{
		PropLHSWorkspace:    "lhs",
		PropRHSWorkspace:    "absent",
		PropOutputWorkspace: "out",
	})

	err := env.alg.Execute(context.Background())
	assert.ErrorIs(t, err, workspace.ErrNotFound)

	_, err = env.store.Get(context.Background(), "out")
	assert.ErrorIs(t, err, workspace.ErrNotFound)
	assert.Contains(t, env.logs.String(), "execution failed")
}

func TestKeepAllPeaks(t *testing.T) {
	env := testSetup(t)
	lhs := peaks.NewTestWorkspace(instrument.NewTestInstrument(), 2)
	env.put(t, "lhs", lhs)
	env.put(t, "rhs", peaks.NewTestWorkspace(instrument.NewTestInstrument(), 3))
	env.set(t, map[string]any{
		PropLHSWorkspace:    "lhs",
		PropRHSWorkspace:    "rhs",
		PropOutputWorkspace: "out",
	})

	require.NoError(t, env.alg.Execute(context.Background()))

	out := env.get(t, "out")
	require.Equal(t, 5, out.Number())
	assert.Equal(t, out.Peak(0).QLabFrame(), out.Peak(2).QLabFrame())
	assert.Equal(t, out.Peak(1).QLabFrame(), out.Peak(3).QLabFrame())
	assert.InDelta(t, 2.5, out.Peak(4).Wavelength(), 0.001)
	assert.Same(t, lhs.Instrument(), out.Instrument())

	run := env.alg.LastRun()
	assert.Equal(t, "out", run.Output)
	assert.Equal(t, 5, run.Peaks)
	assert.Contains(t, env.logs.String(), run.ID.String())
}

func TestMatchIdenticalWorkspaces(t *testing.T) {
	env := testSetup(t)
	in := peaks.NewTestWorkspace(instrument.NewTestInstrument(), 2)
	env.put(t, "in", in)
	env.set(t, map[string]any{
		PropLHSWorkspace:         "in",
		PropRHSWorkspace:         "in",
		PropOutputWorkspace:      "out",
		PropCombineMatchingPeaks: true,
	})

	require.NoError(t, env.alg.Execute(context.Background()))

	out := env.get(t, "out")
	require.Equal(t, 2, out.Number())
	assert.Equal(t, in.Peak(0).Wavelength(), out.Peak(0).Wavelength())
	assert.Equal(t, in.Peak(1).Wavelength(), out.Peak(1).Wavelength())
}

func TestMatchPeaksWithinTolerance(t *testing.T) {
	env := testSetup(t)
	lhs := peaks.NewWorkspace(instrument.NewTestInstrument())
	rhs := peaks.NewWorkspace(instrument.NewTestInstrument())
	scale := []float64{1.01, 1.02, 1.0335, 1.04}
	for i, det := range []int{989, 356, 990, 996} {
		require.NoError(t, lhs.AddPeak(peaks.MustPeak(lhs.Instrument(), det, 1.0)))
		require.NoError(t, rhs.AddPeak(peaks.MustPeak(rhs.Instrument(), det, scale[i])))
	}
	env.put(t, "lhs", lhs)
	env.put(t, "rhs", rhs)
	env.set(t, map[string]any{
		PropLHSWorkspace:         "lhs",
		PropRHSWorkspace:         "rhs",
		PropOutputWorkspace:      "out",
		PropTolerance:            "0.08145",
		PropCombineMatchingPeaks: "true",
	})

	require.NoError(t, env.alg.Execute(context.Background()))

	out := env.get(t, "out")
	require.Equal(t, 7, out.Number())
	assert.Equal(t, rhs.Peak(2).QLabFrame(), out.Peak(6).QLabFrame())
	assert.Same(t, lhs.Instrument(), out.Instrument())
}

func TestOutputReplacesInput(t *testing.T) {
	env := testSetup(t)
	inst := instrument.NewTestInstrument()
	env.put(t, "lhs", peaks.NewTestWorkspace(inst, 2))
	env.put(t, "rhs", peaks.NewTestWorkspace(inst, 1))

	var events []workspace.Event
	env.store.Subscribe(workspace.EventReplaced, func(ev workspace.Event) { events = append(events, ev) })

	env.set(t, map[string]any{
		PropLHSWorkspace:    "lhs",
		PropRHSWorkspace:    "rhs",
		PropOutputWorkspace: "lhs",
		PropTolerance:       combine.Tolerance(0),
	})
	require.NoError(t, env.alg.Execute(context.Background()))

	assert.Equal(t, 3, env.get(t, "lhs").Number())
	assert.Equal(t, []workspace.Event{{Kind: workspace.EventReplaced, Name: "lhs", Peaks: 3}}, events)
}

func TestInitializeResets(t *testing.T) {
	env := testSetup(t)
	env.set(t, map[string]any{PropTolerance: 0.5, PropCombineMatchingPeaks: true, PropLHSWorkspace: "x"})

	env.alg.Initialize()
	c := env.alg.(*CombinePeaksWorkspaces)
	assert.Equal(t, DefaultTolerance, c.opts.Tolerance)
	assert.False(t, c.opts.CombineMatchingPeaks)
	assert.Empty(t, c.lhs)
}
