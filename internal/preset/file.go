package preset

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/colliderkit/internal/observe"
)

// maxParallelReads bounds the number of files [ReadAll] parses at once.
const maxParallelReads = 8

// FileOption configures the file operations.
type FileOption func(*fileOptions)

type fileOptions struct {
	metrics *observe.Metrics
}

// WithMetrics records the operation count and duration on m.
func WithMetrics(m *observe.Metrics) FileOption {
	return func(o *fileOptions) { o.metrics = m }
}

func buildFileOptions(opts []FileOption) fileOptions {
	var o fileOptions
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func (o fileOptions) record(ctx context.Context, op string, start time.Time, err error) {
	if o.metrics != nil {
		o.metrics.RecordPreset(ctx, op, start, err)
	}
}

// DefaultFileName returns the name a preset saved at now gets when the
// operator picks no name: the unix timestamp in seconds plus [Suffix].
func DefaultFileName(now time.Time) string {
	return strconv.FormatInt(now.Unix(), 10) + Suffix
}

// SaveFile writes doc to path with [Suffix] appended when missing and
// returns the path written. Parent directories are created. The file is
// replaced atomically.
func SaveFile(ctx context.Context, path string, doc Document, opts ...FileOption) (written string, err error) {
	o := buildFileOptions(opts)
	start := time.Now()
	path = WithSuffix(path)

	ctx, span := observe.StartSpan(ctx, "preset.save")
	defer func() {
		observe.EndSpan(span, &err, attribute.String("preset.path", path), attribute.Int("preset.entities", doc.Len()))
		o.record(ctx, "save", start, err)
	}()

	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("preset: save: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".preset-*")
	if err != nil {
		return "", fmt.Errorf("preset: save: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return "", fmt.Errorf("preset: save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("preset: save: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("preset: save: %w", err)
	}

	observe.Logger(ctx).Info("preset: saved", "path", path, "entities", doc.Len())
	return path, nil
}

// LoadFile reads the document at path. The path is used verbatim.
func LoadFile(ctx context.Context, path string, opts ...FileOption) (doc Document, err error) {
	o := buildFileOptions(opts)
	start := time.Now()

	ctx, span := observe.StartSpan(ctx, "preset.load")
	defer func() {
		observe.EndSpan(span, &err, attribute.String("preset.path", path))
		o.record(ctx, "load", start, err)
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("preset: load: %w", err)
	}
	doc, err = Decode(bytes.NewReader(data))
	if err != nil {
		return Document{}, fmt.Errorf("preset: load %s: %w", path, err)
	}
	return doc, nil
}

// List returns every preset file below dir, sorted. A missing dir yields no
// files and no error.
func List(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}
	matches, err := doublestar.Glob(os.DirFS(dir), "**/*"+Suffix)
	if err != nil {
		return nil, fmt.Errorf("preset: list %s: %w", dir, err)
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = filepath.Join(dir, filepath.FromSlash(m))
	}
	slices.Sort(out)
	return out, nil
}

// Entry is one file read by [ReadAll].
type Entry struct {
	Path string
	Doc  Document
	Err  error
}

// ReadAll reads and decodes paths concurrently. Per-file failures are
// reported in [Entry.Err]; the returned error is only set when ctx is
// cancelled. Entries keep the order of paths.
func ReadAll(ctx context.Context, paths []string, opts ...FileOption) ([]Entry, error) {
	out := make([]Entry, len(paths))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxParallelReads)

	for i, p := range paths {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			doc, err := LoadFile(egCtx, p, opts...)
			out[i] = Entry{Path: p, Doc: doc, Err: err}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("preset: read all: %w", err)
	}
	return out, nil
}
