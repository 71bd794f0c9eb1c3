// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/peaks-engine/internal/algorithm"
	"github.com/pdiddy/peaks-engine/internal/instrument"
	"github.com/pdiddy/peaks-engine/internal/workspace"
	"github.com/pdiddy/peaks-engine/pkg/types"
)

const (
	defaultDataDir        = "data"
	defaultBackend        = types.StoreSQLite
	defaultInstrumentsDir = "instruments"
	defaultLogLevel       = "warn"
)

var validate = validator.New()

func bindFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// loadConfig reads the engine configuration from v, applying defaults for
// anything the config file, environment, and flags leave unset.
func loadConfig(v *viper.Viper) (types.EngineConfig, error) {
	v.SetDefault("store.backend", string(defaultBackend))
	v.SetDefault("store.data_dir", defaultDataDir)
	v.SetDefault("instruments_dir", defaultInstrumentsDir)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("combine.tolerance", float64(algorithm.DefaultTolerance))
	v.SetDefault("combine.combine_matching_peaks", false)

	var cfg types.EngineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return types.EngineConfig{}, fmt.Errorf("reading config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return types.EngineConfig{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// session is everything a command needs to talk to the store.
type session struct {
	cfg    types.EngineConfig
	store  workspace.Store
	logger *slog.Logger
}

// openSession loads config, opens the store, and reports store changes on
// w.
func openSession(w io.Writer) (*session, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}

	store, err := workspace.Open(cfg.Store)
	if err != nil {
		return nil, err
	}
	reportEvents(store, w)

	return &session{cfg: cfg, store: store, logger: newLogger(cfg.LogLevel)}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// instruments loads the named instrument definitions.
func (s *session) instruments() (map[string]*instrument.Instrument, error) {
	return instrument.LoadDir(s.cfg.InstrumentsDir)
}

func reportEvents(store workspace.Store, w io.Writer) {
	h := func(ev workspace.Event) {
		if ev.Kind == workspace.EventRemoved {
			fmt.Fprintf(w, "%s: %s\n", ev.Kind, ev.Name)
			return
		}
		fmt.Fprintf(w, "%s: %s (%d peaks)\n", ev.Kind, ev.Name, ev.Peaks)
	}
	for _, kind := range []workspace.EventKind{workspace.EventAdded, workspace.EventReplaced, workspace.EventRemoved} {
		store.Subscribe(kind, h)
	}
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
