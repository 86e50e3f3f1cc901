package main

import (
	"fmt"
	"image/png"
	"os"

	"github.com/fatih/color"
	"github.com/nfnt/resize"
	"github.com/spf13/cobra"

	"github.com/elarasign/elarasign/pkg/elarasign/api"
	"github.com/elarasign/elarasign/pkg/elarasign/billboard"
	"github.com/elarasign/elarasign/pkg/elarasign/canvas"
)

func inspectCmd() *cobra.Command {
	var (
		inPath        string
		thumbnailPath string
		thumbnailSize uint
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Report what provenance layers a file carries, without verifying them",
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, raw, err := loadRGBA(inPath)
			if err != nil {
				return err
			}

			read := api.ReadSignature(buf)
			if read.IsElara {
				color.New(color.FgCyan, color.Bold).Println("elaraSign record found")
			} else {
				color.New(color.FgYellow).Println("no elaraSign LSB record found")
			}
			fmt.Printf("  version:         %s\n", orDash(read.Version))
			fmt.Printf("  legacy_detected: %v\n", read.LegacyDetected)
			fmt.Printf("  valid_locations: %v\n", read.ValidLocations)
			if read.MetaHashPrefix != nil {
				fmt.Printf("  meta_hash_prefix: %x\n", *read.MetaHashPrefix)
			}

			if pngResult, err := billboard.ReadPNG(raw); err == nil && pngResult.Present {
				fmt.Println("  billboard (png): present")
				fmt.Printf("    summary: %s\n", pngResult.Summary)
			}
			if jpegResult, err := billboard.ReadJPEG(raw); err == nil && jpegResult.Present {
				fmt.Println("  billboard (jpeg): present")
				fmt.Printf("    summary: %s\n", jpegResult.Summary)
			}

			if thumbnailPath != "" {
				if err := writeThumbnail(buf, thumbnailPath, thumbnailSize); err != nil {
					return err
				}
				fmt.Printf("  thumbnail written: %s\n", thumbnailPath)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&inPath, "in", "", "Image path (required)")
	cmd.Flags().StringVar(&thumbnailPath, "thumbnail", "", "Optional path to write a resized preview (PNG)")
	cmd.Flags().UintVar(&thumbnailSize, "thumbnail-width", 256, "Thumbnail width in pixels (height scales proportionally)")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}

// writeThumbnail renders a scaled-down preview of a signed image for a
// reviewer's audit log. Resizing discards the LSB and spread-spectrum
// layers (this is a preview, not a verified copy) but is harmless since
// inspect never treats the thumbnail as a provenance artifact.
func writeThumbnail(buf *canvas.Buffer, path string, width uint) error {
	img := rgbaView(buf)
	resized := resize.Resize(width, 0, img, resize.Lanczos3)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	return png.Encode(f, resized)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
