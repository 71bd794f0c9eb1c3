// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/peaks-engine/internal/instrument"
)

var instrumentCmd = &cobra.Command{
	Use:   "instrument",
	Short: "Manage instrument definitions (list, sample)",
}

var instrumentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the instrument definitions in the instruments directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		insts, err := instrument.LoadDir(cfg.InstrumentsDir)
		if err != nil {
			return err
		}
		return listInstruments(insts, os.Stdout)
	},
}

func listInstruments(insts map[string]*instrument.Instrument, w io.Writer) error {
	if len(insts) == 0 {
		fmt.Fprintln(w, "No instruments defined.")
		return nil
	}
	names := make([]string, 0, len(insts))
	for name := range insts {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "%-30s  %9s  %s\n", "Name", "Detectors", "Sample")
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, name := range names {
		inst := insts[name]
		fmt.Fprintf(w, "%-30s  %9d  %s\n", name, inst.NumberDetectors(), inst.SamplePosition())
	}
	return nil
}

var instrumentSampleCmd = &cobra.Command{
	Use:   "sample <name>",
	Short: "Write a sample cylindrical instrument definition",
	Long: `Sample writes <instruments-dir>/<name>.yaml: one cylindrical bank of
100 columns by 10 rows at 1 m, covering 10 to 158.5 degrees in two-theta.
Edit it to describe a real instrument.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		path, err := writeSampleInstrument(cfg.InstrumentsDir, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

func writeSampleInstrument(dir, name string) (string, error) {
	data, err := yaml.Marshal(instrument.TestDefinition(name))
	if err != nil {
		return "", fmt.Errorf("marshaling instrument: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating instruments directory: %w", err)
	}
	path := filepath.Join(dir, name+".yaml")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s already exists", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

func init() {
	instrumentCmd.AddCommand(instrumentListCmd)
	instrumentCmd.AddCommand(instrumentSampleCmd)
	rootCmd.AddCommand(instrumentCmd)
}
