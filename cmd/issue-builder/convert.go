// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/issue-builder/internal/container"
	"github.com/pdiddy/issue-builder/internal/convert"
	"github.com/pdiddy/issue-builder/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [pdfs...]",
	Short: "Convert issue PDFs to transcript Markdown through an OCR container",
	Long: `Convert pipes each issue PDF through an OCR container image (docker or
podman) and writes input/{id}/{id}.md, where the issue ID is the PDF file
name with whitespace replaced by dashes. Existing transcripts are skipped
unless --force is given.

With --batch, every PDF in --pdf-dir is converted.`,
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	paths := args
	if batch, _ := cmd.Flags().GetBool("batch"); batch {
		pdfDir := stringSetting(cmd, "pdf-dir")
		found, err := filepath.Glob(filepath.Join(pdfDir, "*.pdf"))
		if err != nil {
			return fmt.Errorf("listing %s: %w", pdfDir, err)
		}
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no PDFs given: pass file paths or --batch")
	}

	ctx := cmd.Context()
	rt, err := container.DetectRuntime(ctx)
	if err != nil {
		return err
	}
	cfg := types.ConversionConfig{
		Image:    stringSetting(cmd, "image"),
		InputDir: stringSetting(cmd, "input-dir"),
	}
	conv, err := convert.NewOCRConverter(ctx, rt, cfg.Image)
	if err != nil {
		return err
	}

	force, _ := cmd.Flags().GetBool("force")
	result := convert.ConvertPaths(ctx, conv, paths, cfg.InputDir, force, os.Stdout)
	if result.HasFailures() {
		return fmt.Errorf("%d PDF(s) failed conversion", result.Failed)
	}
	return nil
}

func init() {
	convertCmd.Flags().String("image", convert.DefaultImage, "OCR container image")
	convertCmd.Flags().String("input-dir", "input", "directory that receives {id}/{id}.md")
	convertCmd.Flags().String("pdf-dir", "data/pdfs", "directory scanned by --batch")
	convertCmd.Flags().Bool("batch", false, "convert every PDF in --pdf-dir")
	convertCmd.Flags().Bool("force", false, "overwrite existing transcripts")

	rootCmd.AddCommand(convertCmd)
}
