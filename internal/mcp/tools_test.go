package mcp

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/datkit/dat"
)

// fakeDatScript answers each dat subcommand with canned output.
const fakeDatScript = `#!/bin/bash
case "$1" in
log)
  echo '{"change":1,"version":"v1","message":"first"}'
  echo '{"change":2,"version":"v2","message":"second"}'
  ;;
datasets)
  echo '{"datasets":["flights","people"]}'
  ;;
forks)
  echo '{"forks":["f1"]}'
  ;;
status)
  echo '{"version":"v2","datasets":2}'
  ;;
diff)
  echo '{"key":"1","versions":[{"n":1},{"n":2}]}'
  echo '{"key":"2","versions":[{"n":3},{"n":4}]}'
  ;;
import)
  data=$(cat)
  echo "{\"version\":\"v3\",\"dataset\":\"$4\",\"bytes\":${#data}}"
  ;;
*)
  echo "unknown command $1" >&2
  exit 1
  ;;
esac
`

func makeTestRepo(t *testing.T) *dat.Repository {
	t.Helper()
	datPath := filepath.Join(t.TempDir(), "dat")
	require.NoError(t, os.WriteFile(datPath, []byte(fakeDatScript), 0o755))
	repo, err := dat.NewRepository(t.TempDir(),
		dat.WithDatPath(datPath),
		dat.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	return repo
}

func TestHandleLog(t *testing.T) {
	handler := handleLog(makeTestRepo(t))

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, NoInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
	require.Len(t, out.Entries, 2)
	first, ok := out.Entries[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "v1", first["version"])
}

func TestHandleCommitHashes(t *testing.T) {
	handler := handleCommitHashes(makeTestRepo(t))

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, NoInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2"}, out.Hashes)
}

func TestHandleDatasetsAndForks(t *testing.T) {
	repo := makeTestRepo(t)

	_, ds, err := handleDatasets(repo)(context.Background(), &mcp.CallToolRequest{}, NoInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"flights", "people"}, ds.Datasets)

	_, forks, err := handleForks(repo)(context.Background(), &mcp.CallToolRequest{}, NoInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"f1"}, forks.Forks)
}

func TestHandleStatus(t *testing.T) {
	repo := makeTestRepo(t)

	_, out, err := handleStatus(repo)(context.Background(), &mcp.CallToolRequest{}, NoInput{})
	require.NoError(t, err)
	assert.Equal(t, repo.Dir(), out.Dir)
	st, ok := out.Status.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "v2", st["version"])
}

func TestHandleDiff(t *testing.T) {
	handler := handleDiff(makeTestRepo(t))

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, DiffInput{From: "v1", To: "v2"})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
	assert.Empty(t, out.Patch)

	_, out, err = handler(context.Background(), &mcp.CallToolRequest{}, DiffInput{From: "v1", Patch: true})
	require.NoError(t, err)
	assert.Contains(t, out.Patch, "--- 1@0")
	assert.Contains(t, out.Patch, "--- 2@0")

	_, _, err = handler(context.Background(), &mcp.CallToolRequest{}, DiffInput{})
	assert.ErrorIs(t, err, dat.ErrMissingRef)
}

func TestHandleImport(t *testing.T) {
	handler := handleImport(makeTestRepo(t))

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, ImportInput{Dataset: "people", Data: "id\n1\n"})
	require.NoError(t, err)
	res, ok := out.Result.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "v3", res["version"])
	assert.Equal(t, "people", res["dataset"])

	_, _, err = handler(context.Background(), &mcp.CallToolRequest{}, ImportInput{Dataset: "people"})
	assert.ErrorIs(t, err, dat.ErrNoImportSource)
}

func TestNewServer(t *testing.T) {
	server := NewServer("test", makeTestRepo(t))
	assert.NotNil(t, server)
}
