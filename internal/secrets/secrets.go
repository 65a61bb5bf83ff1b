// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the
// key name and the trimmed file contents are the value.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Key files the commands look for.
const (
	// SummarizeAPIKey authenticates build against the summarization endpoint.
	SummarizeAPIKey = "summarize-api-key"
	// UpstreamAPIKey authenticates the proxy against the chat-completion API.
	UpstreamAPIKey = "upstream-api-key"
)

// Keys lists every key file issue-builder reads.
var Keys = []string{SummarizeAPIKey, UpstreamAPIKey}

// Load reads secrets from dir. With keys, only those files are read and
// absent ones are skipped; without keys, every regular non-dot file is a
// secret. A missing directory yields an empty map. Unreadable and empty
// files are skipped, the former with a warning.
func Load(dir string, keys ...string) (map[string]string, error) {
	if len(keys) == 0 {
		names, err := listKeys(dir)
		if err != nil {
			return nil, err
		}
		keys = names
	}

	secrets := make(map[string]string, len(keys))
	for _, key := range keys {
		value, err := readKey(dir, key)
		if err != nil {
			slog.Warn("could not read secret", "key", key, "error", err)
			continue
		}
		if value != "" {
			secrets[key] = value
		}
	}
	return secrets, nil
}

// listKeys returns the names of regular, non-dot files in dir.
func listKeys(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// readKey returns the trimmed contents of dir/key, or "" when the file
// does not exist or is a directory.
func readKey(dir, key string) (string, error) {
	path := filepath.Join(dir, key)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Resolve returns the first non-empty value among explicit, the secret
// named key, and the environment variables in envs.
func Resolve(secrets map[string]string, explicit, key string, envs ...string) string {
	if explicit != "" {
		return explicit
	}
	if v := secrets[key]; v != "" {
		return v
	}
	for _, env := range envs {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return ""
}
