package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/taigrr/skykeep/internal/config"
	"github.com/taigrr/skykeep/pkg/assets"
)

func newManifestCmd(o *config.Overrides) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Inspect the castle manifest",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List castle descriptors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*o)
			if err != nil {
				return err
			}
			m, err := manifestOpener(cfg)()
			if err != nil {
				return err
			}
			printManifest(cmd.OutOrStdout(), m)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Load every castle and report failures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*o)
			if err != nil {
				return err
			}
			log, err := newLogger(cfg, os.Stderr)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			m, err := manifestOpener(cfg)()
			if err != nil {
				return err
			}

			ml := newModelLoader(cfg, log)
			out := cmd.OutOrStdout()
			failed := 0
			for i, d := range m.Castles {
				g, err := ml.Load(cmd.Context(), d, i, m.Len())
				if err != nil {
					failed++
					fmt.Fprintf(out, "%d  FAIL  %s: %v\n", i, d.Model, err)
					continue
				}
				fmt.Fprintf(out, "%d  ok    %s (%d meshes)\n", i, d.Model, len(g.Meshes))
				g.Dispose()
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d castles failed to load", failed, m.Len())
			}
			return nil
		},
	})

	return cmd
}

func printManifest(w io.Writer, m *assets.Manifest) {
	for i, d := range m.Castles {
		textures := make([]string, len(d.Textures))
		for j, h := range d.Textures {
			textures[j] = string(h)
		}
		fmt.Fprintf(w, "%d  %s\n   textures: %s\n", i, d.Model, strings.Join(textures, ", "))
	}
}
