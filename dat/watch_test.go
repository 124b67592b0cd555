package dat_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/datkit/dat"
)

// logDat is a fake dat whose log is whatever log.ndjson in the repository holds.
func logDat(t *testing.T) string {
	t.Helper()
	return writeFakeDat(t, `cat log.ndjson`)
}

func appendLog(t *testing.T, dir, version string) {
	t.Helper()
	f, err := os.OpenFile(filepath.Join(dir, "log.ndjson"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = fmt.Fprintf(f, "{\"version\":%q}\n", version)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestWatch_ReportsNewCommits(t *testing.T) {
	repo := openRepo(t, logDat(t), dat.WithWatchDebounce(20*time.Millisecond))
	appendLog(t, repo.Dir(), "base")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	errDone := errors.New("done")
	got := make(chan []string, 1)
	result := make(chan error, 1)
	go func() {
		result <- repo.Watch(ctx, func(hashes []string) error {
			got <- hashes
			return errDone
		})
	}()

	// The watcher may not be registered yet, so keep committing until one is seen.
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	var hashes []string
	for n := 1; hashes == nil; n++ {
		select {
		case hashes = <-got:
		case <-ticker.C:
			appendLog(t, repo.Dir(), fmt.Sprintf("v%d", n))
		case <-ctx.Done():
			t.Fatal("no commits reported")
		}
	}

	assert.NotEmpty(t, hashes)
	assert.NotContains(t, hashes, "base", "baseline commits are not reported")
	assert.Equal(t, errDone, <-result)
}

func TestWatch_ReturnsNilOnCancel(t *testing.T) {
	repo := openRepo(t, logDat(t))
	appendLog(t, repo.Dir(), "base")

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		result <- repo.Watch(ctx, func([]string) error { return nil })
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-result:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_BaselineFailure(t *testing.T) {
	repo := openRepo(t, printingDat(t, `{"error":true,"message":"This is not a dat repository"}`, 1))

	err := repo.Watch(context.Background(), func([]string) error { return nil })
	assert.True(t, dat.IsNotARepository(err))
}
