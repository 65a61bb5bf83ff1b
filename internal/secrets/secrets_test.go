// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T) string
		want   map[string]string
		errMsg string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, SummarizeAPIKey, "  sk_abc123  \n")
				writeFile(t, dir, UpstreamAPIKey, "up_xyz789")
				return dir
			},
			want: map[string]string{
				SummarizeAPIKey: "sk_abc123",
				UpstreamAPIKey:  "up_xyz789",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, UpstreamAPIKey, "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{
				UpstreamAPIKey: "valid-key",
			},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, SummarizeAPIKey, "pk_real")
				return dir
			},
			want: map[string]string{
				SummarizeAPIKey: "pk_real",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, UpstreamAPIKey, "ak_123")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				UpstreamAPIKey: "ak_123",
			},
		},
		{
			name: "returns empty map for empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	// Create a file then remove read permission.
	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	// The good file should still be returned; the bad file is skipped with a warning.
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestResolve(t *testing.T) {
	t.Setenv("ISSUE_BUILDER_TEST_KEY", "from-env")
	values := map[string]string{SummarizeAPIKey: "from-file"}

	assert.Equal(t, "flag", Resolve(values, "flag", SummarizeAPIKey, "ISSUE_BUILDER_TEST_KEY"))
	assert.Equal(t, "from-file", Resolve(values, "", SummarizeAPIKey, "ISSUE_BUILDER_TEST_KEY"))
	assert.Equal(t, "from-env", Resolve(values, "", UpstreamAPIKey, "UNSET_VAR_FOR_TEST", "ISSUE_BUILDER_TEST_KEY"))
	assert.Empty(t, Resolve(nil, "", UpstreamAPIKey))
}

func TestLoadKnownKeys(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, SummarizeAPIKey, " sk_abc \n")
	writeFile(t, dir, "unrelated-token", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, UpstreamAPIKey), 0o755))

	got, err := Load(dir, Keys...)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{SummarizeAPIKey: "sk_abc"}, got)

	got, err = Load(filepath.Join(dir, "missing"), Keys...)
	require.NoError(t, err)
	assert.Empty(t, got)
}
