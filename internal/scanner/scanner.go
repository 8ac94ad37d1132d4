// Package scanner finds trace fixtures under a directory tree. It respects
// .gpxignore files with gitignore-style patterns.
package scanner

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// FileInfo represents a discovered fixture.
type FileInfo struct {
	Path     string // Relative path from root, slash separated
	FullPath string // Absolute path
	Size     int64  // File size in bytes
}

// Options configures the scanner behavior.
type Options struct {
	SkipHidden      bool     // Skip hidden files and directories (starting with .)
	DefaultExcludes []string // Directory names never entered
	IgnoreFileName  string   // Name of the ignore file (default: .gpxignore)
	Extensions      []string // File extensions to collect
}

// DefaultOptions returns scanner options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		SkipHidden:      true,
		DefaultExcludes: []string{".git", "node_modules", "vendor", "_examples"},
		IgnoreFileName:  ".gpxignore",
		Extensions:      []string{".yaml", ".yml"},
	}
}

// Scanner provides fixture discovery.
type Scanner struct {
	opts Options
}

// New creates a new Scanner with the given options.
func New(opts Options) *Scanner {
	return &Scanner{opts: opts}
}

// Scan walks the directory at root and returns the fixtures found, sorted by
// path. Ignore files are read from every directory on the way down and
// their patterns apply to that directory's subtree.
func (s *Scanner) Scan(root string) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path: %w", err)
	}

	var (
		files    []FileInfo
		patterns []scopedPattern
	)
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped
			return nil
		}
		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		if rel == "." {
			patterns = s.loadIgnorePatterns(path, "", patterns)
			return nil
		}
		rel = filepath.ToSlash(rel)

		if s.opts.SkipHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if s.isDefaultExcluded(d.Name()) || ignored(rel+"/", patterns) {
				return filepath.SkipDir
			}
			patterns = s.loadIgnorePatterns(path, rel+"/", patterns)
			return nil
		}

		if !d.Type().IsRegular() || !s.wanted(path) || ignored(rel, patterns) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, FileInfo{Path: rel, FullPath: path, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	slices.SortFunc(files, func(a, b FileInfo) int { return strings.Compare(a.Path, b.Path) })
	return files, nil
}

func (s *Scanner) wanted(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(s.opts.Extensions, ext)
}

func (s *Scanner) isDefaultExcluded(name string) bool {
	for _, exclude := range s.opts.DefaultExcludes {
		if strings.EqualFold(name, exclude) {
			return true
		}
	}
	return false
}

// scopedPattern is a pattern from the ignore file of dir, a slash-terminated
// path relative to the scan root ("" for the root itself).
type scopedPattern struct {
	dir string
	IgnorePattern
}

// loadIgnorePatterns appends the patterns of the ignore file in path, whose
// root-relative form is dir.
func (s *Scanner) loadIgnorePatterns(path, dir string, patterns []scopedPattern) []scopedPattern {
	if s.opts.IgnoreFileName == "" {
		return patterns
	}
	file, err := os.Open(filepath.Join(path, s.opts.IgnoreFileName))
	if err != nil {
		return patterns
	}
	defer file.Close()

	sc := bufio.NewScanner(file)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, scopedPattern{dir: dir, IgnorePattern: ParseIgnorePattern(line)})
	}
	return patterns
}

// ignored applies patterns in order, so a later negation re-includes a path
// an earlier pattern excluded. A pattern only sees paths below its own
// directory, relative to it.
func ignored(rel string, patterns []scopedPattern) bool {
	out := false
	for _, p := range patterns {
		sub, ok := strings.CutPrefix(rel, p.dir)
		if !ok {
			continue
		}
		if p.Match(sub) {
			out = !p.IsNegation()
		}
	}
	return out
}

// Scan scans a directory with default options.
func Scan(root string) ([]FileInfo, error) {
	return New(DefaultOptions()).Scan(root)
}
