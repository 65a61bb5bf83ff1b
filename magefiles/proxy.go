//go:build mage

package main

import (
	"github.com/magefile/mage/sh"
)

// Proxy runs the summarization proxy on :9000 with settings from .env.
func Proxy() error {
	ensureBuilt()
	return sh.RunV(binPath, "proxy", "serve", "--addr", ":9000", "--env-file", ".env")
}
