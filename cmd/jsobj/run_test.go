package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.js")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

func TestRunScriptsDumpsYAML(t *testing.T) {
	path := writeScript(t, `var o = { a: 1, b: { c: "x" }, get d() { return [1]; } }; print("hi");`)

	var out bytes.Buffer
	cfg := defaultConfig()
	err := runScripts(context.Background(), &out, cfg, cfg.Run, &runOptions{dump: []string{"o"}}, []string{path})
	require.NoError(t, err)
	assert.Equal(t, "hi\n# o\na: 1\nb:\n  c: x\nd:\n  \"0\": 1\n", out.String())
}

func TestRunScriptsDumpsJSON(t *testing.T) {
	path := writeScript(t, `var o = { a: 1, b: { c: "x" } };`)

	var out bytes.Buffer
	cfg := defaultConfig()
	run := cfg.Run
	run.Format = "json"
	run.Depth = 1
	err := runScripts(context.Background(), &out, cfg, run, &runOptions{dump: []string{"o"}}, []string{path})
	require.NoError(t, err)
	assert.JSONEq(t, `{"o": {"a": 1, "b": {"c": "x"}}}`, out.String())
}

func TestRunScriptsErrors(t *testing.T) {
	cfg := defaultConfig()

	path := writeScript(t, `var n = 1; throw new TypeError("bad");`)
	err := runScripts(context.Background(), &bytes.Buffer{}, cfg, cfg.Run, &runOptions{}, []string{path})
	assert.ErrorContains(t, err, "TypeError: bad")

	path = writeScript(t, `var n = 1;`)
	err = runScripts(context.Background(), &bytes.Buffer{}, cfg, cfg.Run, &runOptions{dump: []string{"n"}}, []string{path})
	assert.ErrorContains(t, err, "not an object")

	run := cfg.Run
	run.Format = "xml"
	err = runScripts(context.Background(), &bytes.Buffer{}, cfg, run, &runOptions{dump: []string{"Object"}}, []string{path})
	assert.ErrorContains(t, err, "unknown snapshot format")
}
