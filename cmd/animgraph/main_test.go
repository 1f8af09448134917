package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/animgraph/internal/cli"
)

func writeRunFile(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0600), "failed to set up test file")
	return path
}

func TestRun_Playback(t *testing.T) {
	t.Parallel()

	path := writeRunFile(t, `
character "hero" {
  graph = "locomotion"
  inputs = {
    velocity = [1.5, 0, 0]
  }
}
`)
	out := &bytes.Buffer{}

	err := run(out, []string{"--frames", "3", path})

	require.NoError(t, err)
	require.Contains(t, out.String(), `"msg":"Frame evaluated."`)
	require.Contains(t, out.String(), `"msg":"Playback finished."`)
}

func TestRun_InvalidRunFile(t *testing.T) {
	t.Parallel()

	// Missing closing brace.
	path := writeRunFile(t, `
		character "hero" {
			graph = "locomotion"
	`)
	out := &bytes.Buffer{}

	err := run(out, []string{path})

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load run file")
	require.Contains(t, err.Error(), "failed to parse")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// "-h" makes cli.Parse return shouldExit=true.
	out := &bytes.Buffer{}

	err := run(out, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	err := run(out, []string{"--this-is-not-a-valid-flag"})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}
