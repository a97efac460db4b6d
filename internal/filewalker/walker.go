package filewalker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"i18n-extract/internal/parser"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog/log"
)

// Walker traverses directories and dispatches files to the correct parser.
type Walker struct {
	parsers []parser.Parser
	include []glob.Glob
	ignore  []glob.Glob
}

// NewWalker creates a Walker. Patterns are matched against slash-separated
// paths relative to the walked root; `**` crosses directories. An empty
// include list accepts every file a parser can handle.
func NewWalker(parsers []parser.Parser, include, ignore []string) (*Walker, error) {
	w := &Walker{parsers: parsers}

	var err error
	if w.include, err = compile(include); err != nil {
		return nil, fmt.Errorf("compile include patterns: %w", err)
	}
	if w.ignore, err = compile(ignore); err != nil {
		return nil, fmt.Errorf("compile ignore patterns: %w", err)
	}
	return w, nil
}

func compile(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// FileEntry represents a discovered file ready for processing.
type FileEntry struct {
	Path string
	// Label is the path relative to the walked root, slash separated.
	Label  string
	Ext    string
	Parser parser.Parser
}

// Walk discovers all supported files under the given roots, in lexical order
// per root. A root may also name a single file.
func (w *Walker) Walk(roots ...string) ([]FileEntry, error) {
	var entries []FileEntry
	for _, root := range roots {
		found, err := w.walkRoot(root)
		if err != nil {
			return nil, err
		}
		entries = append(entries, found...)
	}
	return entries, nil
}

func (w *Walker) walkRoot(root string) ([]FileEntry, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		entry, ok := w.dispatch(absRoot, filepath.ToSlash(filepath.Clean(root)))
		if !ok {
			return nil, fmt.Errorf("no parser for %s", root)
		}
		return []FileEntry{entry}, nil
	}

	var entries []FileEntry

	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}
		if path == absRoot {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if matchesAny(w.ignore, rel+"/**") {
				return filepath.SkipDir
			}
			return nil
		}

		if matchesAny(w.ignore, rel) {
			return nil
		}
		if len(w.include) > 0 && !matchesAny(w.include, rel) {
			return nil
		}

		if entry, ok := w.dispatch(path, rel); ok {
			entries = append(entries, entry)
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	log.Info().Int("count", len(entries)).Str("root", absRoot).Msg("Discovered files")
	return entries, nil
}

func (w *Walker) dispatch(path, label string) (FileEntry, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, p := range w.parsers {
		if p.CanParse(ext) {
			return FileEntry{
				Path:   path,
				Label:  label,
				Ext:    ext,
				Parser: p,
			}, true
		}
	}
	return FileEntry{}, false
}

func matchesAny(globs []glob.Glob, path string) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}
