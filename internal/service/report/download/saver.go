package download

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
)

// Saver hands a finished document over to the user.
type Saver interface {
	Save(ctx context.Context, filename, mimeType string, data []byte) error
}

type Key int

// SaverKey carries a per-request Saver which takes precedence over the generator's own.
const SaverKey Key = 0

// WithSaver returns a context routing saves to s.
func WithSaver(ctx context.Context, s Saver) context.Context {
	return context.WithValue(ctx, SaverKey, s)
}

// FromContext returns the Saver stored in ctx, or fallback when there is none.
func FromContext(ctx context.Context, fallback Saver) Saver {
	if s, ok := ctx.Value(SaverKey).(Saver); ok && s != nil {
		return s
	}
	return fallback
}

// FileSaver writes documents below a root directory.
type FileSaver struct {
	rootDir string
	// written holds the path of the last saved document.
	written string
}

func NewFileSaver(rootDir string) *FileSaver {
	return &FileSaver{rootDir: rootDir}
}

// PathFor returns the full path a document with the given name is written to.
func (f *FileSaver) PathFor(filename string) string {
	return path.Join(f.rootDir, filepath.Base(filename))
}

// LastPath returns the path of the last document written by this saver.
func (f *FileSaver) LastPath() string {
	return f.written
}

func (f *FileSaver) Save(ctx context.Context, filename, _ string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.rootDir != "" {
		if err := os.MkdirAll(f.rootDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", f.rootDir, err)
		}
	}

	target := f.PathFor(filename)
	if err := os.WriteFile(target, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	f.written = target
	return nil
}

// ResponseSaver streams the document back as an HTTP attachment.
type ResponseSaver struct {
	writer    http.ResponseWriter
	committed bool
}

func NewResponseSaver(w http.ResponseWriter) *ResponseSaver {
	return &ResponseSaver{writer: w}
}

func (r *ResponseSaver) Save(_ context.Context, filename, mimeType string, data []byte) error {
	header := r.writer.Header()
	header.Set("Content-Type", mimeType)
	header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(filename)))
	header.Set("Content-Length", strconv.Itoa(len(data)))
	r.writer.WriteHeader(http.StatusOK)
	r.committed = true

	if _, err := r.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write response: %w", err)
	}
	return nil
}

// Committed reports whether the status line was sent. A committed response cannot carry an error reply.
func (r *ResponseSaver) Committed() bool {
	return r.committed
}
