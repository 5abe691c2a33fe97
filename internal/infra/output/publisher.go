package output

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// Publisher writes a set of documents somewhere.
type Publisher interface {
	Publish(ctx context.Context, docs []Document) error
}

// FilePublisher writes documents into a local directory, creating it if needed.
type FilePublisher struct {
	Dir string
}

// Publish writes each document to Dir/<name>. Files are written to a temporary name and
// renamed so readers never see a half-written document.
func (p FilePublisher) Publish(ctx context.Context, docs []Document) error {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(p.Dir, d.Name)
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, d.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", d.Name, err)
		}
		if err := os.Rename(tmp, path); err != nil {
			_ = os.Remove(tmp)
			return fmt.Errorf("rename %s: %w", d.Name, err)
		}
		slog.Info("document written",
			slog.String("path", path),
			slog.Int("bytes", len(d.Data)))
	}
	return nil
}

// MultiPublisher publishes to every destination concurrently.
// The first failure cancels the others and is returned.
type MultiPublisher []Publisher

// Publish implements Publisher.
func (m MultiPublisher) Publish(ctx context.Context, docs []Document) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, p := range m {
		p := p
		eg.Go(func() error {
			return p.Publish(ctx, docs)
		})
	}
	return eg.Wait()
}
