package dat

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/randalmurphal/datkit/ndjson"
)

// Defaults applied by NewRepository.
const (
	DefaultDatPath       = "dat"
	DefaultBatchSize     = 100
	DefaultWatchDebounce = 250 * time.Millisecond
)

// Repository is a dat repository on disk. Every method runs one dat subprocess in the
// repository directory and blocks until it finishes, or until its stream is drained.
//
// A Repository holds no mutable state and is safe for concurrent use.
type Repository struct {
	dir           string
	exec          executor
	classifier    Classifier
	batchSize     int
	watchDebounce time.Duration

	optErr error
}

// Option configures a Repository.
type Option func(*Repository)

// WithDatPath sets the path to the dat binary.
// Default: "dat" (found via PATH).
func WithDatPath(path string) Option {
	return func(r *Repository) { r.exec.path = path }
}

// WithTimeout bounds each dat invocation. Zero means no deadline.
func WithTimeout(d time.Duration) Option {
	return func(r *Repository) { r.exec.timeout = d }
}

// WithEnv adds environment variables to every dat invocation.
// These are merged with the parent environment.
func WithEnv(env map[string]string) Option {
	return func(r *Repository) {
		if r.exec.env == nil {
			r.exec.env = make(map[string]string)
		}
		for k, v := range env {
			r.exec.env[k] = v
		}
	}
}

// WithEnvVar adds a single environment variable.
func WithEnvVar(key, value string) Option {
	return func(r *Repository) {
		if r.exec.env == nil {
			r.exec.env = make(map[string]string)
		}
		r.exec.env[key] = value
	}
}

// WithLogger sets the logger used for command tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.exec.logger = logger
		}
	}
}

// WithClassifier replaces the error record classifier.
func WithClassifier(c Classifier) Option {
	return func(r *Repository) { r.classifier = c }
}

// WithErrorPatterns overrides the message patterns used to recognize the
// not-a-repository and auto-detect errors. An empty pattern keeps the default.
// An invalid pattern makes NewRepository fail.
func WithErrorPatterns(notRepository, autoDetect string) Option {
	return func(r *Repository) {
		c, err := NewClassifier(notRepository, autoDetect)
		if err != nil {
			r.optErr = err
			return
		}
		r.classifier = c
	}
}

// WithBatchSize sets the batch size reported by BatchSize.
func WithBatchSize(n int) Option {
	return func(r *Repository) { r.batchSize = n }
}

// WithWatchDebounce sets how long Watch waits for file activity to settle.
func WithWatchDebounce(d time.Duration) Option {
	return func(r *Repository) { r.watchDebounce = d }
}

// NewRepository returns a handle on the dat repository in dir. The directory is made
// absolute once, here; it need not exist until Init.
func NewRepository(dir string, opts ...Option) (*Repository, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, NewError("open", fmt.Errorf("resolve directory: %w", err))
	}

	r := &Repository{
		dir: abs,
		exec: executor{
			path:   DefaultDatPath,
			logger: slog.Default(),
		},
		classifier:    DefaultClassifier(),
		batchSize:     DefaultBatchSize,
		watchDebounce: DefaultWatchDebounce,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.optErr != nil {
		return nil, NewError("open", r.optErr)
	}
	if r.batchSize <= 0 {
		return nil, NewError("open", fmt.Errorf("%w: %w: %d", ErrInvalidArgument, ErrInvalidBatchSize, r.batchSize))
	}
	return r, nil
}

// Dir returns the absolute repository directory.
func (r *Repository) Dir() string {
	return r.dir
}

// BatchSize returns the configured default batch size.
func (r *Repository) BatchSize() int {
	return r.batchSize
}

// Init creates the directory if needed and initializes a dat repository in it.
func (r *Repository) Init(ctx context.Context) (ndjson.Value, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return ndjson.Value{}, NewError("init", fmt.Errorf("create directory: %w", err))
	}
	return r.single(ctx, "init", initCommand(r.dir))
}

// ImportRequest describes one import. Exactly one of File and Data must be set.
type ImportRequest struct {
	// Dataset is the dataset to import into. Required.
	Dataset string

	// File is a path to the input file. Relative paths are resolved against the
	// current working directory of the calling process, not the repository.
	File string

	// Data is the inline input, piped to dat on standard input.
	// nil means not provided; a non-nil empty slice is rejected.
	Data []byte

	// Key names the field used as the row key. Optional.
	Key string

	// Message is the commit message. Optional.
	Message string
}

// Import imports a file or inline data into a dataset and returns dat's summary record.
func (r *Repository) Import(ctx context.Context, req ImportRequest) (ndjson.Value, error) {
	c, err := r.importCommand(req)
	if err != nil {
		return ndjson.Value{}, NewError("import", err)
	}
	return r.single(ctx, "import", c)
}

func (r *Repository) importCommand(req ImportRequest) (Command, error) {
	hasFile := req.File != ""
	hasData := req.Data != nil
	switch {
	case !hasFile && !hasData:
		return Command{}, ErrNoImportSource
	case hasFile && hasData:
		return Command{}, ErrConflictingImportSource
	case hasData && len(req.Data) == 0:
		return Command{}, ErrEmptyData
	case req.Dataset == "":
		return Command{}, ErrMissingDataset
	}

	if hasData {
		return importCommand("-", req.Data, req), nil
	}
	file, err := filepath.Abs(req.File)
	if err != nil {
		return Command{}, fmt.Errorf("resolve import file: %w", err)
	}
	return importCommand(file, nil, req), nil
}

// Export returns the full export of a dataset as raw text, one JSON record per line.
func (r *Repository) Export(ctx context.Context, dataset string) (string, error) {
	if dataset == "" {
		return "", NewError("export", ErrMissingDataset)
	}
	out, err := r.exec.run(ctx, r.dir, exportCommand(dataset))
	if err != nil {
		return "", NewError("export", err)
	}
	return out, nil
}

// ExportRecords returns the full export of a dataset decoded into records.
func (r *Repository) ExportRecords(ctx context.Context, dataset string) ([]ndjson.Value, error) {
	if dataset == "" {
		return nil, NewError("export", ErrMissingDataset)
	}
	return r.multi(ctx, "export", exportCommand(dataset))
}

// ExportStream starts an export and returns its live output. The caller must Close it.
func (r *Repository) ExportStream(ctx context.Context, dataset string) (*Stream, error) {
	if dataset == "" {
		return nil, NewError("export", ErrMissingDataset)
	}
	s, err := r.exec.start(ctx, r.dir, exportCommand(dataset))
	if err != nil {
		return nil, NewError("export", err)
	}
	return s, nil
}

// ExportInBatches streams an export and calls fn with every size raw lines, then once
// with the remainder. An error from fn stops the export and is returned unchanged.
func (r *Repository) ExportInBatches(ctx context.Context, dataset string, size int, fn ndjson.BatchFunc) error {
	if err := checkBatchSize(size); err != nil {
		return NewError("export", err)
	}
	s, err := r.ExportStream(ctx, dataset)
	if err != nil {
		return err
	}
	return drain("export", ndjson.Batches(s, size, tagged(fn)))
}

// ExportRecordsInBatches is ExportInBatches with each line decoded.
func (r *Repository) ExportRecordsInBatches(ctx context.Context, dataset string, size int, fn ndjson.RecordBatchFunc) error {
	if err := checkBatchSize(size); err != nil {
		return NewError("export", err)
	}
	s, err := r.ExportStream(ctx, dataset)
	if err != nil {
		return err
	}
	return drain("export", ndjson.RecordBatches(s, size, tagged(fn)))
}

// Diff returns the per-key differences between two versions. An empty to compares
// from against the current version.
func (r *Repository) Diff(ctx context.Context, from, to string) ([]ndjson.Value, error) {
	if from == "" {
		return nil, NewError("diff", ErrMissingRef)
	}
	return r.multi(ctx, "diff", diffCommand(from, to))
}

// DiffStream starts a diff and returns its live output. The caller must Close it.
func (r *Repository) DiffStream(ctx context.Context, from, to string) (*Stream, error) {
	if from == "" {
		return nil, NewError("diff", ErrMissingRef)
	}
	s, err := r.exec.start(ctx, r.dir, diffCommand(from, to))
	if err != nil {
		return nil, NewError("diff", err)
	}
	return s, nil
}

// DiffInBatches streams a diff in batches of raw lines.
func (r *Repository) DiffInBatches(ctx context.Context, from, to string, size int, fn ndjson.BatchFunc) error {
	if err := checkBatchSize(size); err != nil {
		return NewError("diff", err)
	}
	s, err := r.DiffStream(ctx, from, to)
	if err != nil {
		return err
	}
	return drain("diff", ndjson.Batches(s, size, tagged(fn)))
}

// DiffRecordsInBatches streams a diff in batches of decoded records.
func (r *Repository) DiffRecordsInBatches(ctx context.Context, from, to string, size int, fn ndjson.RecordBatchFunc) error {
	if err := checkBatchSize(size); err != nil {
		return NewError("diff", err)
	}
	s, err := r.DiffStream(ctx, from, to)
	if err != nil {
		return err
	}
	return drain("diff", ndjson.RecordBatches(s, size, tagged(fn)))
}

// Log returns the commit history, oldest first.
func (r *Repository) Log(ctx context.Context) ([]ndjson.Value, error) {
	return r.multi(ctx, "log", logCommand())
}

// CommitHashes returns the version of every commit, oldest first.
func (r *Repository) CommitHashes(ctx context.Context) ([]string, error) {
	entries, err := r.multi(ctx, "commit_hashes", logCommand())
	if err != nil {
		return nil, err
	}
	hashes := make([]string, 0, len(entries))
	for i, entry := range entries {
		version, ok := entry.GetString("version")
		if !ok {
			return nil, NewError("commit_hashes", fmt.Errorf("%w: log entry %d has no version", ErrMalformedRecord, i))
		}
		hashes = append(hashes, version)
	}
	return hashes, nil
}

// Push sends local commits to remote.
func (r *Repository) Push(ctx context.Context, remote string) (ndjson.Value, error) {
	return r.remote(ctx, "push", remote)
}

// Pull fetches and merges commits from remote.
func (r *Repository) Pull(ctx context.Context, remote string) (ndjson.Value, error) {
	return r.remote(ctx, "pull", remote)
}

// Replicate copies remote into this repository.
func (r *Repository) Replicate(ctx context.Context, remote string) (ndjson.Value, error) {
	return r.remote(ctx, "replicate", remote)
}

func (r *Repository) remote(ctx context.Context, op, remote string) (ndjson.Value, error) {
	if remote == "" {
		return ndjson.Value{}, NewError(op, ErrMissingRemote)
	}
	return r.single(ctx, op, remoteCommand(op, remote))
}

// Datasets returns the names of the datasets in the repository.
func (r *Repository) Datasets(ctx context.Context) ([]string, error) {
	return r.names(ctx, "datasets")
}

// Forks returns the fork identifiers of the repository.
func (r *Repository) Forks(ctx context.Context) ([]string, error) {
	return r.names(ctx, "forks")
}

// Status returns dat's status record for the repository.
func (r *Repository) Status(ctx context.Context) (ndjson.Value, error) {
	return r.single(ctx, "status", listCommand("status"))
}

// names runs a listing command and extracts the string array under the field of the
// same name.
func (r *Repository) names(ctx context.Context, field string) ([]string, error) {
	rec, err := r.single(ctx, field, listCommand(field))
	if err != nil {
		return nil, err
	}
	if rec.Kind() != ndjson.Object {
		return nil, NewError(field, fmt.Errorf("%w: expected an object, got %v", ErrMalformedRecord, rec.Kind()))
	}
	list, ok := rec.Get(field)
	if !ok || list.IsNull() {
		return []string{}, nil
	}
	names, ok := list.StringSlice()
	if !ok {
		return nil, NewError(field, fmt.Errorf("%w: %q is not a list of strings", ErrMalformedRecord, field))
	}
	return names, nil
}

// single runs c and returns its only record.
func (r *Repository) single(ctx context.Context, op string, c Command) (ndjson.Value, error) {
	out, err := r.exec.run(ctx, r.dir, c)
	if err != nil {
		return ndjson.Value{}, NewError(op, err)
	}
	resp, err := r.classifier.Classify(out)
	if err != nil {
		return ndjson.Value{}, NewError(op, err)
	}
	rec, err := resp.Single()
	if err != nil {
		return ndjson.Value{}, NewError(op, err)
	}
	return rec, nil
}

// multi runs c and returns all of its records. A lone error record is still classified.
func (r *Repository) multi(ctx context.Context, op string, c Command) ([]ndjson.Value, error) {
	out, err := r.exec.run(ctx, r.dir, c)
	if err != nil {
		return nil, NewError(op, err)
	}
	resp, err := r.classifier.Classify(out)
	if err != nil {
		return nil, NewError(op, err)
	}
	if resp.Records == nil {
		return []ndjson.Value{}, nil
	}
	return resp.Records, nil
}

// callbackError marks an error returned by a caller's batch callback.
type callbackError struct{ err error }

func (e *callbackError) Error() string { return e.err.Error() }
func (e *callbackError) Unwrap() error { return e.err }

// tagged wraps fn so that its errors can be told apart from stream errors.
func tagged[T any](fn func([]T) error) func([]T) error {
	return func(batch []T) error {
		if err := fn(batch); err != nil {
			return &callbackError{err: err}
		}
		return nil
	}
}

// drain finishes a batched stream. Callback errors are returned unchanged; read,
// decode, and process errors get the operation envelope.
func drain(op string, err error) error {
	if err == nil {
		return nil
	}
	if cb, ok := err.(*callbackError); ok {
		return cb.err
	}
	return NewError(op, err)
}

func checkBatchSize(size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: %w: %d", ErrInvalidArgument, ErrInvalidBatchSize, size)
	}
	return nil
}
