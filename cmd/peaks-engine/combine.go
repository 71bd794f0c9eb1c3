// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/peaks-engine/internal/algorithm"
)

var combineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Combine two stored peaks workspaces",
	Long: `Combine runs CombinePeaksWorkspaces: the output holds every LHS peak
followed by the RHS peaks. With --combine-matching, an RHS peak is dropped
when its Q differs from an already accepted peak by no more than
--tolerance in both x and z. The output uses the LHS instrument.`,
	RunE: runCombine,
}

func runCombine(cmd *cobra.Command, args []string) error {
	s, err := openSession(os.Stdout)
	if err != nil {
		return err
	}
	defer s.Close()

	lhs, _ := cmd.Flags().GetString("lhs")
	rhs, _ := cmd.Flags().GetString("rhs")
	output, _ := cmd.Flags().GetString("output")

	alg, err := algorithm.Standard().Create(algorithm.CombinePeaksWorkspacesName,
		algorithm.Env{Store: s.store, Logger: s.logger})
	if err != nil {
		return err
	}
	alg.Initialize()

	props := []struct {
		name  string
		value any
	}{
		{algorithm.PropLHSWorkspace, lhs},
		{algorithm.PropRHSWorkspace, rhs},
		{algorithm.PropOutputWorkspace, output},
		{algorithm.PropTolerance, s.cfg.Combine.Tolerance},
		{algorithm.PropCombineMatchingPeaks, s.cfg.Combine.CombineMatchingPeaks},
	}
	for _, p := range props {
		if err := alg.SetProperty(p.name, p.value); err != nil {
			return err
		}
	}

	if err := alg.Execute(context.Background()); err != nil {
		return err
	}

	run := alg.LastRun()
	fmt.Fprintf(os.Stdout, "%s: %d peaks in %s (run %s)\n", alg.Name(), run.Peaks, run.Output, run.ID)
	return nil
}

func init() {
	combineCmd.Flags().String("lhs", "", "left-hand input workspace")
	combineCmd.Flags().String("rhs", "", "right-hand input workspace")
	combineCmd.Flags().String("output", "", "output workspace (replaced if it exists)")
	combineCmd.Flags().Float64("tolerance", float64(algorithm.DefaultTolerance), "per-axis Q tolerance in inverse Angstrom")
	combineCmd.Flags().Bool("combine-matching", false, "drop RHS peaks that coincide with accepted peaks")

	for _, f := range []string{"lhs", "rhs", "output"} {
		if err := combineCmd.MarkFlagRequired(f); err != nil {
			panic(err)
		}
	}
	bindFlag("combine.tolerance", combineCmd.Flags().Lookup("tolerance"))
	bindFlag("combine.combine_matching_peaks", combineCmd.Flags().Lookup("combine-matching"))

	rootCmd.AddCommand(combineCmd)
}
