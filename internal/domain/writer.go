package domain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"zigtestgen.dev/pkg/zigtestgen/internal/adapter"
	m "zigtestgen.dev/pkg/zigtestgen/internal/model"
)

const (
	backupDirName    = ".backups"
	backupTimeLayout = "20060102_150405"
	testFilePerm     = 0o644
	testDirPerm      = 0o755
)

// WriteOutcome describes what a Write call did.
type WriteOutcome struct {
	Path    m.Path
	Written bool
	Backup  *m.BackupRecord
}

// Writer persists test files, copying the previous content aside before the
// first overwrite of each file in a run.
type Writer interface {
	Write(ctx context.Context, path m.Path, content string) (WriteOutcome, error)
}

type writer struct {
	adapter.SourceFSAdapter
	now func() time.Time

	mu       sync.Mutex
	backedUp map[m.Path]*m.BackupRecord
}

// NewWriter returns a Writer backed by the given filesystem adapter.
func NewWriter(fsAdapter adapter.SourceFSAdapter) Writer {
	return newWriterWithClock(fsAdapter, time.Now)
}

func newWriterWithClock(fsAdapter adapter.SourceFSAdapter, now func() time.Time) *writer {
	return &writer{
		SourceFSAdapter: fsAdapter,
		now:             now,
		backedUp:        make(map[m.Path]*m.BackupRecord),
	}
}

func (w *writer) Write(ctx context.Context, path m.Path, content string) (WriteOutcome, error) {
	outcome := WriteOutcome{Path: path}

	if err := ctx.Err(); err != nil {
		return outcome, err
	}

	existing, err := w.ReadFile(ctx, path)
	exists := err == nil

	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("Failed to read existing test file", "path", path, "error", err)
		return outcome, fmt.Errorf("%w: read %s: %w", ErrWrite, path, err)
	}

	if exists && bytes.Equal(existing, []byte(content)) {
		return outcome, nil
	}

	if exists {
		record, err := w.backup(ctx, path)
		if err != nil {
			slog.Error("Failed to back up test file", "path", path, "error", err)
			return outcome, fmt.Errorf("%w: backup %s: %w", ErrWrite, path, err)
		}

		outcome.Backup = record
	}

	if err := w.MkdirAll(ctx, m.Path(filepath.Dir(string(path))), testDirPerm); err != nil {
		slog.Error("Failed to create test directory", "path", path, "error", err)
		return outcome, fmt.Errorf("%w: create directory for %s: %w", ErrWrite, path, err)
	}

	if err := w.WriteFile(ctx, path, []byte(content), testFilePerm); err != nil {
		slog.Error("Failed to write test file", "path", path, "backup", outcome.Backup, "error", err)
		return outcome, fmt.Errorf("%w: %s: %w", ErrWrite, path, err)
	}

	outcome.Written = true

	return outcome, nil
}

// backup copies path into the sibling .backups directory once per run.
func (w *writer) backup(ctx context.Context, path m.Path) (*m.BackupRecord, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if record, ok := w.backedUp[path]; ok {
		return record, nil
	}

	stamp := w.now()
	dir := filepath.Join(filepath.Dir(string(path)), backupDirName)

	if err := w.MkdirAll(ctx, m.Path(dir), testDirPerm); err != nil {
		return nil, err
	}

	copyPath, err := w.freeBackupPath(ctx, dir, string(path), stamp)
	if err != nil {
		return nil, err
	}

	if err := w.CopyFile(ctx, path, copyPath); err != nil {
		return nil, err
	}

	record := &m.BackupRecord{Original: path, Timestamp: stamp, Copy: copyPath}
	w.backedUp[path] = record

	slog.Debug("Backed up test file", "path", path, "copy", copyPath)

	return record, nil
}

func (w *writer) freeBackupPath(ctx context.Context, dir, path string, stamp time.Time) (m.Path, error) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext) + "_" + stamp.Format(backupTimeLayout)

	candidate := filepath.Join(dir, stem+ext)
	for n := 1; ; n++ {
		_, err := w.FileInfo(ctx, m.Path(candidate))
		if errors.Is(err, fs.ErrNotExist) {
			return m.Path(candidate), nil
		}

		if err != nil {
			return "", err
		}

		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
	}
}
