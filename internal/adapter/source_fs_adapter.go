// Package adapter contains the infrastructure adapters for the zigtestgen CLI.
package adapter

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	m "zigtestgen.dev/pkg/zigtestgen/internal/model"
)

const (
	zigExt          = ".zig"
	recursiveSuffix = "/..."
	backupDirName   = ".backups"
)

// SourceFSAdapter abstracts the filesystem operations the domain layer relies
// on, so workflows can be tested without touching the disk.
//
//nolint:interfacebloat // A richer interface keeps workflow logic decoupled from os/fs.
type SourceFSAdapter interface {
	// Get resolves path arguments (`dir`, `dir/...` or `file.zig`) into the
	// Zig source modules they name. Test directories and backups are skipped,
	// as are paths matching any exclude regex.
	Get(ctx context.Context, roots []m.Path, testsDir string, exclude ...string) ([]m.File, error)

	// Walk traverses root. When recursive is false only root itself is listed.
	Walk(ctx context.Context, root m.Path, recursive bool, fn FilepathWalkFunc) error

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(ctx context.Context, path m.Path) ([]byte, error)

	// HashFile returns the SHA-256 fingerprint of the file at path.
	HashFile(ctx context.Context, path m.Path) (string, error)

	// TestFilePath returns the conventional test file path of a source module:
	// <dir>/<testsDir>/<prefix><name>.
	TestFilePath(ctx context.Context, sourcePath m.Path, testsDir, prefix string) m.Path

	// FileInfo returns metadata for a path.
	FileInfo(ctx context.Context, path m.Path) (os.FileInfo, error)

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(ctx context.Context, path m.Path, perm os.FileMode) error

	// WriteFile writes content to a file with the given permissions.
	WriteFile(ctx context.Context, path m.Path, content []byte, perm os.FileMode) error

	// CopyFile copies src to dst byte for byte.
	CopyFile(ctx context.Context, src, dst m.Path) error

	// RelPath returns the relative path from base to target.
	RelPath(ctx context.Context, base, target m.Path) (m.Path, error)

	// JoinPath joins path elements into a single path.
	JoinPath(ctx context.Context, elem ...string) m.Path
}

// FilepathWalkFunc mirrors the callback shape used by filepath.Walk.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// LocalSourceFSAdapter implements SourceFSAdapter on the local disk.
type LocalSourceFSAdapter struct{}

// NewLocalSourceFSAdapter constructs a LocalSourceFSAdapter instance ready to
// be wired into the workflow.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{}
}

// Get resolves roots into source modules sorted by path.
func (a *LocalSourceFSAdapter) Get(ctx context.Context, roots []m.Path, testsDir string, exclude ...string) ([]m.File, error) {
	excludes, err := compileExcludes(exclude)
	if err != nil {
		return nil, err
	}

	if len(roots) == 0 {
		roots = []m.Path{"."}
	}

	seen := make(map[string]struct{})

	var files []m.File

	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rootStr, recursive := splitRecursive(string(root))

		info, err := os.Stat(rootStr)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", rootStr, err)
		}

		if !info.IsDir() {
			if filepath.Ext(rootStr) != zigExt {
				return nil, fmt.Errorf("%s is not a .zig file", rootStr)
			}

			files = a.appendFile(ctx, files, seen, rootStr, rootStr, excludes)

			continue
		}

		err = a.Walk(ctx, m.Path(rootStr), recursive, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if info.IsDir() {
				if path != rootStr && skipDir(info.Name(), testsDir) {
					return filepath.SkipDir
				}

				return nil
			}

			if filepath.Ext(path) != zigExt {
				return nil
			}

			files = a.appendFile(ctx, files, seen, rootStr, path, excludes)

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", rootStr, err)
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].FullPath < files[j].FullPath })

	return files, nil
}

func (a *LocalSourceFSAdapter) appendFile(ctx context.Context, files []m.File, seen map[string]struct{}, root, path string, excludes []*regexp.Regexp) []m.File {
	if matchesAny(path, excludes) {
		return files
	}

	full, err := filepath.Abs(path)
	if err != nil {
		full = path
	}

	if _, ok := seen[full]; ok {
		return files
	}

	seen[full] = struct{}{}

	short := path
	if rel, err := filepath.Rel(root, path); err == nil && rel != "." {
		short = rel
	}

	hash, err := a.HashFile(ctx, m.Path(path))
	if err != nil {
		hash = ""
	}

	return append(files, m.File{ShortPath: m.Path(short), FullPath: m.Path(full), Hash: hash})
}

// Walk iterates over files under root, optionally descending into subdirectories.
func (a *LocalSourceFSAdapter) Walk(ctx context.Context, root m.Path, recursive bool, fn FilepathWalkFunc) error {
	rootStr := string(root)

	return filepath.Walk(rootStr, func(path string, info os.FileInfo, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			return fn(path, info, err)
		}

		if info.IsDir() && !recursive && path != rootStr {
			return filepath.SkipDir
		}

		return fn(path, info, nil)
	})
}

// ReadFile loads file contents from disk.
func (a *LocalSourceFSAdapter) ReadFile(_ context.Context, path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// HashFile returns the SHA-256 hash of the file at the provided path.
func (a *LocalSourceFSAdapter) HashFile(_ context.Context, path m.Path) (string, error) {
	f, err := os.Open(string(path))
	if err != nil {
		return "", err
	}

	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// TestFilePath returns <dir>/<testsDir>/<prefix><base> for a source path.
func (a *LocalSourceFSAdapter) TestFilePath(_ context.Context, sourcePath m.Path, testsDir, prefix string) m.Path {
	source := string(sourcePath)

	return m.Path(filepath.Join(filepath.Dir(source), testsDir, prefix+filepath.Base(source)))
}

// FileInfo returns os.FileInfo metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(_ context.Context, path m.Path) (os.FileInfo, error) {
	return os.Stat(string(path))
}

// MkdirAll creates path and any missing parents.
func (a *LocalSourceFSAdapter) MkdirAll(_ context.Context, path m.Path, perm os.FileMode) error {
	return os.MkdirAll(string(path), perm)
}

// WriteFile writes content to a file with the given permissions.
func (a *LocalSourceFSAdapter) WriteFile(_ context.Context, path m.Path, content []byte, perm os.FileMode) error {
	return os.WriteFile(string(path), content, perm)
}

// CopyFile copies a single file, keeping the source permissions.
func (a *LocalSourceFSAdapter) CopyFile(_ context.Context, src, dst m.Path) error {
	// #nosec G304 - src is a test file discovered by the workflow
	sourceFile, err := os.Open(string(src))
	if err != nil {
		return err
	}

	defer func() { _ = sourceFile.Close() }()

	info, err := sourceFile.Stat()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(string(dst)), 0o750); err != nil {
		return err
	}

	// #nosec G304 - dst is an internal backup path
	destFile, err := os.OpenFile(string(dst), os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		_ = destFile.Close()
		return err
	}

	return destFile.Close()
}

// RelPath returns the relative path from base to target.
func (a *LocalSourceFSAdapter) RelPath(_ context.Context, base, target m.Path) (m.Path, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", err
	}

	return m.Path(rel), nil
}

// JoinPath joins path elements into a single path.
func (a *LocalSourceFSAdapter) JoinPath(_ context.Context, elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}

func splitRecursive(root string) (string, bool) {
	if root == "..." {
		return ".", true
	}

	if strings.HasSuffix(root, recursiveSuffix) {
		trimmed := strings.TrimSuffix(root, recursiveSuffix)
		if trimmed == "" {
			trimmed = "/"
		}

		return trimmed, true
	}

	return root, false
}

func skipDir(name, testsDir string) bool {
	if name == backupDirName || name == testsDir {
		return true
	}

	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func compileExcludes(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))

	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}

		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}

		compiled = append(compiled, re)
	}

	return compiled, nil
}

func matchesAny(path string, patterns []*regexp.Regexp) bool {
	slashed := filepath.ToSlash(path)
	for _, re := range patterns {
		if re.MatchString(slashed) {
			return true
		}
	}

	return false
}
