//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Library groups catalog targets.
type Library mg.Namespace

// Store indexes data/issues into the catalog and rewrites data/issues.json.
func (Library) Store() error {
	ensureBuilt()
	return sh.RunV(binPath, "library", "store")
}

// Export writes data/issues.json and index/export.yaml.
func (Library) Export() error {
	ensureBuilt()
	return sh.RunV(binPath, "library", "export", "--yaml")
}
