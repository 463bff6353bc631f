package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mhadri/routeflow/pkg/yamlutil"
	"github.com/spf13/cobra"
)

func normalizeCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "normalize FILE",
		Short: "Strip unicode spaces, CR line endings, and trailing whitespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dst, err := yamlutil.NormalizeFile(args[0], output)
			if err != nil {
				return err
			}
			fmt.Printf("✅ Normalized file written to: %s\n", dst)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <name>_norm.yaml)")
	return cmd
}

func flattenCmd() *cobra.Command {
	var output, baseDir string
	cmd := &cobra.Command{
		Use:   "flatten ROUTEFILE",
		Short: "Inline every !include into a single flat YAML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace()
			if err != nil {
				return err
			}
			if baseDir == "" {
				// Include targets are written relative to the project root,
				// the parent of the routes directory.
				baseDir = filepath.Dir(filepath.Clean(ws.cfg.RoutesPath))
			}
			if output == "" {
				src := filepath.Base(args[0])
				ext := filepath.Ext(src)
				output = filepath.Join(ws.cfg.DistPath, strings.TrimSuffix(src, ext)+"_flat"+ext)
			}
			dst, err := yamlutil.FlattenFile(baseDir, args[0], output)
			if err != nil {
				return err
			}
			fmt.Printf("✅ Flattened file written to: %s\n", dst)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <distPath>/<name>_flat.yaml)")
	cmd.Flags().StringVar(&baseDir, "base", "", "directory include targets resolve against")
	return cmd
}
