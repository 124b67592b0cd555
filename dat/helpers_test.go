package dat_test

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/datkit/dat"
)

// writeFakeDat writes an executable bash script standing in for the dat binary.
func writeFakeDat(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dat")
	script := "#!/bin/bash\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

// recording is where a recording fake dat leaves its arguments, working directory,
// and standard input.
type recording struct {
	dir string
}

func (r recording) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(r.dir, name))
	require.NoError(t, err)
	return string(data)
}

func (r recording) Args(t *testing.T) []string {
	t.Helper()
	return strings.Split(strings.TrimSuffix(r.read(t, "args"), "\n"), "\n")
}

func (r recording) Cwd(t *testing.T) string {
	t.Helper()
	return strings.TrimSpace(r.read(t, "cwd"))
}

func (r recording) Stdin(t *testing.T) string {
	t.Helper()
	return r.read(t, "stdin")
}

func (r recording) Ran() bool {
	_, err := os.Stat(filepath.Join(r.dir, "args"))
	return err == nil
}

// recordingDat returns a fake dat that records how it was called and prints out.
func recordingDat(t *testing.T, out string) (string, recording) {
	t.Helper()
	rec := recording{dir: t.TempDir()}
	body := fmt.Sprintf(`printf '%%s\n' "$@" > '%[1]s/args'
pwd -P > '%[1]s/cwd'
cat > '%[1]s/stdin'
cat <<'DATKIT_EOF'
%[2]s
DATKIT_EOF`, rec.dir, out)
	return writeFakeDat(t, body), rec
}

// printingDat returns a fake dat that prints out and exits with code.
func printingDat(t *testing.T, out string, code int) string {
	t.Helper()
	return writeFakeDat(t, fmt.Sprintf("cat <<'DATKIT_EOF'\n%s\nDATKIT_EOF\nexit %d", out, code))
}

// linesDat returns a fake dat that prints n JSON lines.
func linesDat(t *testing.T, n int) string {
	t.Helper()
	return writeFakeDat(t, fmt.Sprintf(`for i in $(seq 1 %d); do echo "{\"key\":\"k$i\",\"n\":$i}"; done`, n))
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// openRepo opens a repository in a fresh directory using the given fake binary.
func openRepo(t *testing.T, datPath string, opts ...dat.Option) *dat.Repository {
	t.Helper()
	opts = append([]dat.Option{dat.WithDatPath(datPath), dat.WithLogger(quietLogger())}, opts...)
	repo, err := dat.NewRepository(t.TempDir(), opts...)
	require.NoError(t, err)
	return repo
}

// resolved returns path with symlinks evaluated, matching what pwd -P prints.
func resolved(t *testing.T, path string) string {
	t.Helper()
	p, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)
	return p
}

// missingDat is a dat path that never exists.
func missingDat(t *testing.T) string {
	return filepath.Join(t.TempDir(), "no-such-dat")
}
