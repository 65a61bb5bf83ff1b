// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecutor records piped runs and answers silent commands from a set.
type fakeExecutor struct {
	onPath   map[string]bool
	succeeds map[string]bool
	pipe     func(name string, args []string, stdin io.Reader, stdout io.Writer) error

	pipedArgs []string
}

func (f *fakeExecutor) LookPath(file string) (string, error) {
	if f.onPath[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (f *fakeExecutor) RunSilent(_ context.Context, name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	if f.succeeds[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func (f *fakeExecutor) RunPiped(_ context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	f.pipedArgs = append([]string{name}, args...)
	if f.pipe != nil {
		return f.pipe(name, args, stdin, stdout)
	}
	return nil
}

func TestDetectRuntime(t *testing.T) {
	tests := []struct {
		name     string
		exec     *fakeExecutor
		wantName string
		wantErr  bool
	}{
		{
			name:     "docker available",
			exec:     &fakeExecutor{onPath: map[string]bool{"docker": true}, succeeds: map[string]bool{"docker info": true}},
			wantName: "docker",
		},
		{
			name:     "podman when docker missing",
			exec:     &fakeExecutor{onPath: map[string]bool{"podman": true}, succeeds: map[string]bool{"podman info": true}},
			wantName: "podman",
		},
		{
			name: "docker daemon down, podman works",
			exec: &fakeExecutor{
				onPath:   map[string]bool{"docker": true, "podman": true},
				succeeds: map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name:    "neither available",
			exec:    &fakeExecutor{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := detectRuntime(context.Background(), tt.exec)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "no container runtime available")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, rt.Name())
		})
	}
}

func TestImageExists(t *testing.T) {
	ctx := context.Background()
	e := &fakeExecutor{succeeds: map[string]bool{
		"docker image inspect ocr:latest": true,
		"podman image exists ocr:latest":  true,
	}}

	assert.NoError(t, newDockerRuntime(e).ImageExists(ctx, "ocr:latest"))
	assert.NoError(t, newPodmanRuntime(e).ImageExists(ctx, "ocr:latest"))

	err := newDockerRuntime(e).ImageExists(ctx, "missing:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing:1")
}

func TestRun(t *testing.T) {
	e := &fakeExecutor{pipe: func(_ string, _ []string, stdin io.Reader, stdout io.Writer) error {
		data, _ := io.ReadAll(stdin)
		_, err := stdout.Write([]byte("# " + string(data)))
		return err
	}}

	var out bytes.Buffer
	err := newPodmanRuntime(e).Run(context.Background(), "ocr:latest", []string{"--lang", "ch"}, strings.NewReader("pdf"), &out)

	require.NoError(t, err)
	assert.Equal(t, "# pdf", out.String())
	assert.Equal(t, []string{"podman", "run", "--rm", "-i", "ocr:latest", "--lang", "ch"}, e.pipedArgs)
}

func TestRun_Failure(t *testing.T) {
	e := &fakeExecutor{pipe: func(string, []string, io.Reader, io.Writer) error {
		return errors.New("exit status 1: out of memory")
	}}

	err := newDockerRuntime(e).Run(context.Background(), "ocr:latest", nil, strings.NewReader(""), io.Discard)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "running docker container ocr:latest")
	assert.Contains(t, err.Error(), "out of memory")
}

func TestTail(t *testing.T) {
	assert.Equal(t, "", tail("  \n", 10))
	assert.Equal(t, "abc", tail(" abc\n", 10))
	assert.Equal(t, "def", tail("abcdef", 3))
}
