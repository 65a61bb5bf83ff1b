//go:build mage

package main

import (
	"github.com/magefile/mage/sh"
)

// Convert runs OCR over every PDF in data/pdfs that has no transcript yet.
func Convert() error {
	ensureBuilt()
	return sh.RunV(binPath, "convert", "--batch", "--pdf-dir", "data/pdfs", "--input-dir", "input")
}
