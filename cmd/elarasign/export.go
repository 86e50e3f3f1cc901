package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/elarasign/elarasign/pkg/elarasign/archive"
	"github.com/elarasign/elarasign/pkg/elarasign/archive/bundle"
	_ "github.com/elarasign/elarasign/pkg/elarasign/archive/compress"
	"github.com/elarasign/elarasign/pkg/elarasign/permissions"
)

func exportCmd() *cobra.Command {
	var (
		inPath     string
		outPath    string
		format     string
		outputMode string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Bundle a signed image into a compressed archive for audit handoff",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := archive.ChainForFormat(format); err != nil {
				return err
			}

			imageBytes, err := os.ReadFile(inPath)
			if err != nil {
				return fmt.Errorf("reading %s: %w", inPath, err)
			}

			tarOp := bundle.NewTarOperation(filepath.Base(inPath))
			out, err := archive.BuildExportBundle(imageBytes, filepath.Base(inPath), format, tarOp)
			if err != nil {
				return err
			}

			mode, err := permissions.ParseOctalString(outputMode, permissions.DefaultArchivePerms)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			if err := os.WriteFile(outPath, out, os.FileMode(mode)); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}

			color.New(color.FgGreen, color.Bold).Printf("✅ exported %s (%s, %d bytes)\n", outPath, format, len(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&inPath, "in", "", "Signed image path (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "Archive output path (required)")
	cmd.Flags().StringVar(&format, "format", "tar.gz", "Archive format: tar, tar.gz, or tar.bz2")
	cmd.Flags().StringVar(&outputMode, "output-mode", "", "Archive file mode, octal (default 644)")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}
