// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/peaks-engine/internal/instrument"
	"github.com/pdiddy/peaks-engine/internal/peaks"
	"github.com/pdiddy/peaks-engine/internal/workspace"
)

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Load peak files into the workspace store",
	Long: `Import reads peaks files (YAML or JSON), builds a workspace from each,
and stores it under the name given in the file. A file either inlines its
instrument definition or names one from the instruments directory.

Files are parsed in parallel; nothing is stored unless every file is valid.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	s, err := openSession(os.Stdout)
	if err != nil {
		return err
	}
	defer s.Close()

	insts, err := s.instruments()
	if err != nil {
		return err
	}

	jobs, _ := cmd.Flags().GetInt("jobs")
	return importFiles(context.Background(), s.store, insts, args, jobs, os.Stdout)
}

type parsed struct {
	name string
	ws   *peaks.Workspace
}

// importFiles parses every path concurrently and then stores the results in
// argument order.
func importFiles(ctx context.Context, store workspace.Store, insts map[string]*instrument.Instrument, paths []string, jobs int, w io.Writer) error {
	results := make([]parsed, len(paths))

	g, _ := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			f, err := workspace.ReadPeaksFile(path)
			if err != nil {
				return err
			}
			ws, err := workspace.Build(f, insts)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = parsed{name: f.Name, ws: ws}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	seen := make(map[string]string, len(paths))
	for i, r := range results {
		if prev, ok := seen[r.name]; ok {
			return fmt.Errorf("workspace %s defined in both %s and %s", r.name, prev, paths[i])
		}
		seen[r.name] = paths[i]
	}

	for _, r := range results {
		if err := store.Put(ctx, r.name, r.ws); err != nil {
			return err
		}
	}
	fmt.Fprintf(w, "Imported %d workspace(s)\n", len(results))
	return nil
}

func init() {
	importCmd.Flags().Int("jobs", 4, "maximum files parsed at once (0 = unlimited)")
	rootCmd.AddCommand(importCmd)
}
