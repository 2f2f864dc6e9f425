package scan

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidyfs/tidyfs/pkg/models"
)

// Options controls which files a scan yields
type Options struct {
	// Recursive descends into subdirectories; otherwise only the root
	// level is scanned
	Recursive bool

	// IncludeHidden yields dot-files and descends into dot-directories
	IncludeHidden bool

	// FollowSymlinks resolves symlinked regular files to their targets.
	// Symlinked directories are never traversed.
	FollowSymlinks bool

	// IgnorePatterns suppress matching paths, unioned with the root
	// ignore file
	IgnorePatterns []string

	// Filters restrict the yielded set, combined with logical AND
	Filters Filters
}

// Scanner enumerates candidate files under root paths. Unreadable entries
// are skipped and reported, never fatal; only regular files are yielded.
type Scanner struct {
	opts   Options
	ignore *IgnoreMatcher
}

// NewScanner creates a scanner for the given options.
func NewScanner(opts Options) *Scanner {
	return &Scanner{
		opts:   opts,
		ignore: NewIgnoreMatcher(opts.IgnorePatterns),
	}
}

// Scan walks a single root and returns descriptors in traversal order.
// The root ignore file, when present, extends the configured patterns
// for this root only.
func (s *Scanner) Scan(ctx context.Context, root string) ([]models.FileDescriptor, *models.ScanReport, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to access root: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("root is not a directory: %s", root)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve root: %w", err)
	}

	ignore := s.ignore
	if filePatterns, err := LoadIgnoreFile(absRoot); err == nil && len(filePatterns) > 0 {
		ignore = NewIgnoreMatcher(append(filePatterns, s.opts.IgnorePatterns...))
	}

	report := &models.ScanReport{}
	var files []models.FileDescriptor

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			report.Skipped = append(report.Skipped, models.FileFailure{
				Path:      path,
				Reason:    err.Error(),
				Timestamp: time.Now(),
			})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(absRoot, path)
		if relErr != nil {
			rel = d.Name()
		}

		if d.IsDir() {
			if path == absRoot {
				report.DirsScanned++
				return nil
			}
			if !s.opts.Recursive {
				return fs.SkipDir
			}
			if !s.opts.IncludeHidden && isHidden(d.Name()) {
				return fs.SkipDir
			}
			if ignore.Match(rel) {
				return fs.SkipDir
			}
			report.DirsScanned++
			return nil
		}

		if !s.opts.IncludeHidden && isHidden(d.Name()) {
			return nil
		}
		if ignore.Match(rel) {
			return nil
		}

		fi, skip := s.statEntry(path, d, report)
		if skip {
			return nil
		}

		desc := newDescriptor(absRoot, path, rel, fi)
		if !s.opts.Filters.Match(&desc) {
			return nil
		}
		if !s.opts.Filters.MatchContent(path) {
			return nil
		}

		files = append(files, desc)
		report.FilesScanned++
		return nil
	})

	if walkErr != nil {
		return nil, nil, fmt.Errorf("failed to scan %s: %w", root, walkErr)
	}

	return files, report, nil
}

// ScanAll walks multiple roots and concatenates their results in root order.
func (s *Scanner) ScanAll(ctx context.Context, roots []string) ([]models.FileDescriptor, *models.ScanReport, error) {
	report := &models.ScanReport{}
	var files []models.FileDescriptor

	for _, root := range roots {
		rootFiles, rootReport, err := s.Scan(ctx, root)
		if err != nil {
			return nil, nil, err
		}
		files = append(files, rootFiles...)
		report.Merge(rootReport)
	}

	return files, report, nil
}

// statEntry resolves file info for a directory entry, handling symlinks
// per options. The second return is true when the entry must be skipped.
func (s *Scanner) statEntry(path string, d fs.DirEntry, report *models.ScanReport) (fs.FileInfo, bool) {
	if d.Type()&fs.ModeSymlink != 0 {
		if !s.opts.FollowSymlinks {
			return nil, true
		}
		fi, err := os.Stat(path)
		if err != nil || fi.IsDir() {
			if err != nil {
				report.Skipped = append(report.Skipped, models.FileFailure{
					Path:      path,
					Reason:    err.Error(),
					Timestamp: time.Now(),
				})
			}
			return nil, true
		}
		return fi, false
	}

	if !d.Type().IsRegular() {
		return nil, true
	}

	fi, err := d.Info()
	if err != nil {
		report.Skipped = append(report.Skipped, models.FileFailure{
			Path:      path,
			Reason:    err.Error(),
			Timestamp: time.Now(),
		})
		return nil, true
	}
	return fi, false
}

// newDescriptor builds the immutable snapshot for a regular file.
func newDescriptor(root, path, rel string, fi fs.FileInfo) models.FileDescriptor {
	name := filepath.Base(path)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))

	return models.FileDescriptor{
		Path:         path,
		RelativePath: filepath.ToSlash(rel),
		Name:         name,
		Size:         fi.Size(),
		ModTime:      fi.ModTime(),
		Extension:    ext,
		MIME:         guessMIME(ext),
	}
}

// guessMIME maps an extension to a MIME type, empty when unknown.
func guessMIME(ext string) string {
	if ext == "" {
		return ""
	}
	typ := mime.TypeByExtension("." + ext)
	if typ == "" {
		return ""
	}
	// Strip parameters such as "; charset=utf-8"
	if base, _, found := strings.Cut(typ, ";"); found {
		return strings.TrimSpace(base)
	}
	return typ
}

// isHidden reports whether a name is a dot-file.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
