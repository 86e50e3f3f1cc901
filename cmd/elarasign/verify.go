package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/elarasign/elarasign/pkg/elarasign/api"
)

func verifyCmd() *cobra.Command {
	var (
		inPath       string
		originalPath string
		expectHash   string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a signed image's provenance layers",
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, _, err := loadRGBA(inPath)
			if err != nil {
				return err
			}

			var rawContent []byte
			if originalPath != "" {
				rawContent, err = os.ReadFile(originalPath)
				if err != nil {
					return fmt.Errorf("reading %s: %w", originalPath, err)
				}
			}

			var expected *[32]byte
			if expectHash != "" {
				decoded, err := hex.DecodeString(expectHash)
				if err != nil || len(decoded) != 32 {
					return fmt.Errorf("verify: --expect-meta-hash must be 64 hex chars")
				}
				var arr [32]byte
				copy(arr[:], decoded)
				expected = &arr
			}

			result := api.VerifyImage(buf, rawContent, expected)

			if result.Signed && !result.TamperDetected {
				color.New(color.FgGreen, color.Bold).Println("✅ signed")
			} else if result.Signed {
				color.New(color.FgRed, color.Bold).Println("⚠️  signed, tamper detected")
			} else {
				color.New(color.FgYellow, color.Bold).Println("✗ not signed")
			}

			fmt.Printf("  valid_locations: %v\n", result.ValidLocations)
			if result.BestRecord != nil {
				fmt.Printf("  timestamp:       %d\n", result.BestRecord.Timestamp)
				fmt.Printf("  meta_hash_prefix: %x\n", result.BestRecord.MetaHashPrefix)
			}
			if result.SpreadConfidence != nil {
				fmt.Printf("  spread_confidence: %.3f\n", *result.SpreadConfidence)
			}
			if result.IntegrityIndeterminate {
				fmt.Println("  integrity:       indeterminate (no --original supplied)")
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&inPath, "in", "", "Signed image path (required)")
	cmd.Flags().StringVar(&originalPath, "original", "", "Original pre-signing source bytes, for tamper detection")
	cmd.Flags().StringVar(&expectHash, "expect-meta-hash", "", "Expected meta_hash (hex) to correlate the spread-spectrum layer against")
	_ = cmd.MarkFlagRequired("in")

	return cmd
}
