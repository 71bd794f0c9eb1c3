// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// StoreBackend selects the workspace store implementation.
type StoreBackend string

const (
	StoreSQLite StoreBackend = "sqlite"
	StoreMemory StoreBackend = "memory"
)

// StoreConfig holds settings for the named workspace store.
type StoreConfig struct {
	// Backend selects sqlite (persistent) or memory (process lifetime).
	Backend StoreBackend `json:"backend" yaml:"backend" mapstructure:"backend" validate:"oneof=sqlite memory"`

	// DataDir is the base directory for the store (contains index/, export/).
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir" validate:"required"`
}

// CombineConfig holds the defaults applied to CombinePeaksWorkspaces runs.
type CombineConfig struct {
	// Tolerance is the per-axis Q tolerance used when matching peaks. It is
	// checked when it is set on the algorithm.
	Tolerance float64 `json:"tolerance" yaml:"tolerance" mapstructure:"tolerance"`

	// CombineMatchingPeaks drops right-hand peaks that coincide with
	// already accepted peaks.
	CombineMatchingPeaks bool `json:"combine_matching_peaks" yaml:"combine_matching_peaks" mapstructure:"combine_matching_peaks"`
}

// EngineConfig groups all configuration for the CLI.
type EngineConfig struct {
	Store   StoreConfig   `json:"store" yaml:"store" mapstructure:"store"`
	Combine CombineConfig `json:"combine" yaml:"combine" mapstructure:"combine"`

	// InstrumentsDir holds instrument definitions referenced by name.
	InstrumentsDir string `json:"instruments_dir" yaml:"instruments_dir" mapstructure:"instruments_dir"`

	// LogLevel is the minimum level of structured algorithm logs.
	LogLevel string `json:"log_level" yaml:"log_level" mapstructure:"log_level" validate:"oneof=debug info warn error"`
}
