// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/peaks-engine/internal/peaks"
	"github.com/pdiddy/peaks-engine/internal/workspace"
)

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Inspect and manage stored workspaces (list, show, remove, export)",
}

// --- list subcommand ---

var workspaceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored workspaces",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(os.Stdout)
		if err != nil {
			return err
		}
		defer s.Close()
		return listWorkspaces(context.Background(), s.store, os.Stdout)
	},
}

func listWorkspaces(ctx context.Context, store workspace.Store, w io.Writer) error {
	names, err := store.Names(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintln(w, "No workspaces stored.")
		return nil
	}

	fmt.Fprintf(w, "%-30s  %6s  %s\n", "Name", "Peaks", "Instrument")
	fmt.Fprintln(w, strings.Repeat("-", 60))
	for _, name := range names {
		ws, err := store.Get(ctx, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%-30s  %6d  %s\n", name, ws.Number(), instrumentName(ws))
	}
	return nil
}

// --- show subcommand ---

var workspaceShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print the peaks of a workspace",
	Long: `Show prints one row per peak with its detector, wavelength, and
lab-frame Q. --peaks restricts the output to a range ("2-5", inclusive) or
a list ("0,3,7") of peak indices.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(os.Stdout)
		if err != nil {
			return err
		}
		defer s.Close()

		selection, _ := cmd.Flags().GetString("peaks")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		return showWorkspace(context.Background(), s.store, args[0], selection, jsonOutput, os.Stdout)
	},
}

func showWorkspace(ctx context.Context, store workspace.Store, name, selection string, jsonOutput bool, w io.Writer) error {
	ws, err := store.Get(ctx, name)
	if err != nil {
		return err
	}

	offset := func(i int) int { return i }
	if selection != "" {
		sel, err := peaks.ParseSelection(selection)
		if err != nil {
			return err
		}
		if ws, err = peaks.Select(ws, sel); err != nil {
			return err
		}
		offset = selectionIndex(sel)
	}

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(workspace.ToFile(name, ws))
	}

	fmt.Fprintf(w, "Workspace %s: %d peaks, instrument %s\n\n", name, ws.Number(), instrumentName(ws))
	if ws.Number() == 0 {
		return nil
	}
	fmt.Fprintf(w, "%5s  %8s  %10s  %10s  %10s  %10s\n", "Index", "Detector", "Wavelength", "Qx", "Qy", "Qz")
	fmt.Fprintln(w, strings.Repeat("-", 64))
	for i, p := range ws.Peaks() {
		q := p.QLabFrame()
		fmt.Fprintf(w, "%5d  %8d  %10.4f  %10.4f  %10.4f  %10.4f\n",
			offset(i), p.DetectorID(), p.Wavelength(), q.X, q.Y, q.Z)
	}
	return nil
}

// selectionIndex maps a position in the selected workspace back to the
// index in the source workspace.
func selectionIndex(sel peaks.Selection) func(int) int {
	switch s := sel.(type) {
	case peaks.Span:
		return func(i int) int { return s.Start + i }
	case peaks.IndexSet:
		indices := s.Indices()
		return func(i int) int { return indices[i] }
	default:
		return func(i int) int { return i }
	}
}

// --- remove subcommand ---

var workspaceRemoveCmd = &cobra.Command{
	Use:   "remove <name>...",
	Short: "Remove workspaces from the store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(os.Stdout)
		if err != nil {
			return err
		}
		defer s.Close()

		for _, name := range args {
			if err := s.store.Remove(context.Background(), name); err != nil {
				return err
			}
		}
		return nil
	},
}

// --- export subcommand ---

var workspaceExportCmd = &cobra.Command{
	Use:   "export <name>...",
	Short: "Export workspaces to YAML or JSON",
	Long: `Export writes each workspace to <dir>/<name>.<format> with its
instrument definition inlined, so the file can be imported elsewhere.
The default directory is <data-dir>/export.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(os.Stdout)
		if err != nil {
			return err
		}
		defer s.Close()

		format, _ := cmd.Flags().GetString("format")
		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = filepath.Join(s.cfg.Store.DataDir, "export")
		}

		for _, name := range args {
			path, err := workspace.Export(context.Background(), s.store, name, dir, workspace.Format(format))
			if err != nil {
				return err
			}
			fmt.Printf("Exported %s to %s\n", name, path)
		}
		return nil
	},
}

func instrumentName(ws *peaks.Workspace) string {
	if inst := ws.Instrument(); inst != nil {
		return inst.Name()
	}
	return "-"
}

func init() {
	workspaceShowCmd.Flags().String("peaks", "", `peak indices to show: range "a-b" or list "i,j,k"`)
	workspaceShowCmd.Flags().Bool("json", false, "output the workspace as JSON")

	workspaceExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	workspaceExportCmd.Flags().String("dir", "", "output directory (default: <data-dir>/export)")

	workspaceCmd.AddCommand(workspaceListCmd)
	workspaceCmd.AddCommand(workspaceShowCmd)
	workspaceCmd.AddCommand(workspaceRemoveCmd)
	workspaceCmd.AddCommand(workspaceExportCmd)

	rootCmd.AddCommand(workspaceCmd)
}
