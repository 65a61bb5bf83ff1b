// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pdiddy/issue-builder/internal/container"
)

// DefaultImage is the OCR image used when none is configured. It reads a
// PDF on stdin and writes Markdown with headings and image links to stdout.
const DefaultImage = "pdf-ocr:latest"

// OCRConverter converts PDFs by piping them through an OCR container image.
type OCRConverter struct {
	runtime container.Runtime
	image   string
	args    []string
}

// NewOCRConverter creates a converter for image on rt, verifying that the
// image exists locally. An empty image uses DefaultImage.
func NewOCRConverter(ctx context.Context, rt container.Runtime, image string, args ...string) (*OCRConverter, error) {
	if image == "" {
		image = DefaultImage
	}
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("OCR image not available in %s: %w", rt.Name(), err)
	}
	return &OCRConverter{runtime: rt, image: image, args: args}, nil
}

// Convert reads the PDF at pdfPath, pipes it through the OCR container,
// and returns the resulting Markdown text.
func (o *OCRConverter) Convert(ctx context.Context, pdfPath string) (string, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := o.runtime.Run(ctx, o.image, o.args, f, &out); err != nil {
		return "", fmt.Errorf("converting %s: %w", pdfPath, err)
	}

	if strings.TrimSpace(out.String()) == "" {
		return "", fmt.Errorf("OCR produced empty output for %s", pdfPath)
	}
	return out.String(), nil
}
