package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/elarasign/elarasign/pkg/elarasign/api"
)

func forensicUnlockCmd() *cobra.Command {
	var (
		annotation     string
		annotationFile string
		masterKey      string
		metaHashHex    string
	)

	cmd := &cobra.Command{
		Use:   "forensic-unlock",
		Short: "Decrypt an operator accountability payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			blob := annotation
			if annotationFile != "" {
				raw, err := os.ReadFile(annotationFile)
				if err != nil {
					return fmt.Errorf("reading %s: %w", annotationFile, err)
				}
				blob = strings.TrimSpace(string(raw))
			}
			if blob == "" {
				return fmt.Errorf("forensic-unlock: one of --annotation or --annotation-file is required")
			}

			decoded, err := hex.DecodeString(metaHashHex)
			if err != nil || len(decoded) != 32 {
				return fmt.Errorf("forensic-unlock: --meta-hash must be 64 hex chars")
			}
			var metaHash [32]byte
			copy(metaHash[:], decoded)

			payload, err := api.ForensicUnlock(blob, masterKey, metaHash)
			if err != nil {
				return err
			}

			color.New(color.FgGreen, color.Bold).Println("✅ forensic payload decrypted")
			fmt.Printf("  timestamp:  %d\n", payload.Timestamp)
			fmt.Printf("  user_fp:    %x\n", payload.UserFingerprintShort)
			fmt.Printf("  ip:         %d.%d.%d.%d\n", payload.IP[0], payload.IP[1], payload.IP[2], payload.IP[3])
			fmt.Printf("  platform:   %d\n", payload.Platform)
			return nil
		},
	}

	cmd.Flags().StringVar(&annotation, "annotation", "", "Base64 forensic annotation")
	cmd.Flags().StringVar(&annotationFile, "annotation-file", "", "Path to a file containing the base64 forensic annotation")
	cmd.Flags().StringVar(&masterKey, "master-key", "", "64-char hex operator master key (required)")
	cmd.Flags().StringVar(&metaHashHex, "meta-hash", "", "The signing event's meta_hash, hex (required)")
	_ = cmd.MarkFlagRequired("master-key")
	_ = cmd.MarkFlagRequired("meta-hash")

	return cmd
}
