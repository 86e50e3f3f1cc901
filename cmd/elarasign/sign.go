package main

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/elarasign/elarasign/pkg/elarasign/api"
	"github.com/elarasign/elarasign/pkg/elarasign/billboard"
	"github.com/elarasign/elarasign/pkg/elarasign/canvas"
	"github.com/elarasign/elarasign/pkg/elarasign/forensic"
	"github.com/elarasign/elarasign/pkg/elarasign/metadata"
	"github.com/elarasign/elarasign/pkg/elarasign/permissions"
)

func signCmd() *cobra.Command {
	var (
		inPath      string
		outPath     string
		generator   string
		userID      string
		keyFP       string
		contentType string
		method      string
		modelUsed   string
		characterID string
		masterKey   string
		platform    string
		quality     int
		summary     string
		outputMode  string
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Embed a provenance signature into an image",
		RunE: func(cmd *cobra.Command, args []string) error {
			cliLogger.Debug("📸 sign invoked", "in", inPath, "out", outPath)

			buf, raw, err := loadRGBA(inPath)
			if err != nil {
				return err
			}

			rec := &metadata.Record{
				SignatureVersion: metadata.SignatureVersion,
				Generator:        generator,
				GeneratedAt:      time.Now().UTC().Format(time.RFC3339),
				UserFingerprint:  metadata.UserFingerprint(userID),
				KeyFingerprint:   keyFP,
				ContentType:      metadata.ContentType(contentType),
				ContentHash:      metadata.ContentHash(raw),
				ModelUsed:        modelUsed,
				CharacterID:      characterID,
				PromptHash:       metadata.PromptHash(""),
				GenerationMethod: metadata.GenerationMethod(method),
			}

			var forensicCtx *api.ForensicContext
			if masterKey != "" {
				forensicCtx = &api.ForensicContext{
					Enabled:   true,
					MasterKey: masterKey,
					Payload: forensic.AccountabilityPayload{
						Timestamp: uint32(time.Now().Unix()),
						Platform:  platformCode(platform),
					},
				}
			}

			result, err := api.SignImage(buf, raw, rec, uint32(time.Now().Unix()), forensicCtx)
			if err != nil {
				return err
			}

			canonical, err := rec.Canonical()
			if err != nil {
				return err
			}

			out, err := encodeWithBillboard(outPath, buf, quality, summary, canonical, result)
			if err != nil {
				return err
			}
			mode, err := permissions.ParseOctalString(outputMode, permissions.DefaultImagePerms)
			if err != nil {
				return fmt.Errorf("sign: %w", err)
			}
			if err := os.WriteFile(outPath, out, os.FileMode(mode)); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}

			color.New(color.FgGreen, color.Bold).Printf("✅ signed %s\n", outPath)
			fmt.Printf("   meta_hash:    %x\n", result.MetaHash)
			fmt.Printf("   content_hash: %x\n", result.ContentHash)
			fmt.Printf("   locations:    %v\n", result.LocationsEmbedded)
			fmt.Printf("   spread:       %v\n", result.SpreadApplied)
			if result.ForensicAnnotationBase64 != "" {
				fmt.Printf("   forensic:     %s\n", result.ForensicAnnotationBase64)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inPath, "in", "", "Input image path (required)")
	cmd.Flags().StringVar(&outPath, "out", "", "Output image path (required)")
	cmd.Flags().StringVar(&generator, "generator", "elarasign-cli", "Generator identifier")
	cmd.Flags().StringVar(&userID, "user", "", "User identifier, hashed into user_fingerprint (required)")
	cmd.Flags().StringVar(&keyFP, "key-fingerprint", "default", "Signing instance label")
	cmd.Flags().StringVar(&contentType, "content-type", "image", "Content type: image|document|audio|video")
	cmd.Flags().StringVar(&method, "method", "unknown", "Generation method: ai|human|mixed|unknown")
	cmd.Flags().StringVar(&modelUsed, "model", "", "Model identifier, if AI-generated")
	cmd.Flags().StringVar(&characterID, "character", "", "Character/persona identifier")
	cmd.Flags().StringVar(&masterKey, "master-key", "", "64-char hex operator master key; enables the forensic payload")
	cmd.Flags().StringVar(&platform, "platform", "unknown", "Platform code: web|mobile|api|batch|unknown")
	cmd.Flags().IntVar(&quality, "jpeg-quality", 90, "JPEG output quality (1-100), ignored for PNG output")
	cmd.Flags().StringVar(&summary, "summary", "signed by elarasign", "Human-readable PNG billboard summary text")
	cmd.Flags().StringVar(&outputMode, "output-mode", "", "Output file mode, octal (default 644)")

	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func platformCode(name string) forensic.PlatformCode {
	switch strings.ToLower(name) {
	case "web":
		return forensic.PlatformWeb
	case "mobile":
		return forensic.PlatformMobile
	case "api":
		return forensic.PlatformAPI
	case "batch":
		return forensic.PlatformBatch
	default:
		return forensic.PlatformUnknown
	}
}

// encodeWithBillboard re-encodes buf to the container format implied by
// outPath's extension and, for PNG/JPEG, splices in the billboard layer.
func encodeWithBillboard(outPath string, buf *canvas.Buffer, quality int, summary string, canonical []byte, result api.SignResult) ([]byte, error) {
	var body bytes.Buffer
	img := rgbaView(buf)

	switch strings.ToLower(filepath.Ext(outPath)) {
	case ".jpg", ".jpeg":
		if err := jpeg.Encode(&body, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encoding jpeg: %w", err)
		}
		return billboard.WriteJPEG(body.Bytes(), canonical, fmt.Sprintf("%x", result.MetaHash))
	default:
		if err := png.Encode(&body, img); err != nil {
			return nil, fmt.Errorf("encoding png: %w", err)
		}
		return billboard.WritePNG(body.Bytes(), summary, canonical, result.ForensicAnnotationBase64)
	}
}
