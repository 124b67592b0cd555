package dat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// CommitFunc receives commits that appeared since the last call, oldest first.
type CommitFunc func(hashes []string) error

// storeDir is where dat keeps its data inside a repository.
const storeDir = ".dat"

// Watch blocks, watching the repository for file activity. Once activity has been quiet
// for the debounce period it reads the log and calls fn with the versions it has not
// seen before. The log at the time Watch starts is the baseline and is not reported.
//
// Watch returns nil when ctx ends, or the error fn returns. fn runs on the calling
// goroutine.
func (r *Repository) Watch(ctx context.Context, fn CommitFunc) error {
	seen := make(map[string]struct{})
	baseline, err := r.CommitHashes(ctx)
	if err != nil {
		return err
	}
	for _, h := range baseline {
		seen[h] = struct{}{}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return NewError("watch", fmt.Errorf("fsnotify: %w", err))
	}
	defer watcher.Close()

	for _, path := range r.watchPaths() {
		r.exec.logger.Debug("adding path to dat watcher", slog.String("path", path))
		if err := watcher.Add(path); err != nil {
			return NewError("watch", fmt.Errorf("watch %s: %w", path, err))
		}
	}

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			r.exec.logger.Debug("dat watch event",
				slog.String("path", ev.Name),
				slog.String("op", ev.Op.String()))
			settle = time.After(r.watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.exec.logger.Warn("dat watch error", slog.Any("error", err))

		case <-settle:
			settle = nil
			fresh, err := r.newCommits(ctx, seen)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				r.exec.logger.Warn("dat watch: read log", slog.Any("error", err))
				continue
			}
			if len(fresh) == 0 {
				continue
			}
			if err := fn(fresh); err != nil {
				return err
			}
		}
	}
}

// newCommits returns log versions missing from seen and records them.
func (r *Repository) newCommits(ctx context.Context, seen map[string]struct{}) ([]string, error) {
	hashes, err := r.CommitHashes(ctx)
	if err != nil {
		return nil, err
	}
	var fresh []string
	for _, h := range hashes {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		fresh = append(fresh, h)
	}
	return fresh, nil
}

// watchPaths returns the repository directory and, when present, its store.
func (r *Repository) watchPaths() []string {
	paths := []string{r.dir}
	store := filepath.Join(r.dir, storeDir)
	if info, err := os.Stat(store); err == nil && info.IsDir() {
		paths = append(paths, store)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		r.exec.logger.Warn("dat watch: stat store", slog.String("path", store), slog.Any("error", err))
	}
	return paths
}
