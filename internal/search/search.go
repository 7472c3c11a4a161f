// Package search locates game data files under the data directory.
//
// A name like "doom2", "DOOM2.WAD" or "iwads/doom2.wad" is matched against
// every entry below the search roots. Entries are scored on stem, case,
// extension and parent directories; the first entry with the highest score
// wins.
package search

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when no entry scores above the threshold.
var ErrNotFound = errors.New("file not found")

// minScore is the lowest score that counts as a match. An extension match
// alone scores 1.
const minScore = 2

// Extensions accepted for PWADs and dehacked patches.
var (
	WADExtensions = []string{"wad", "pk3", "pk7", "pke", "zip"}
	DehExtensions = []string{"deh", "bex"}
)

// Predicate filters candidate entries before scoring.
type Predicate func(path string, d fs.DirEntry) bool

// Any accepts every entry.
func Any(string, fs.DirEntry) bool { return true }

// Loadable accepts WAD archives, dehacked patches and directories.
func Loadable(path string, d fs.DirEntry) bool {
	return d.IsDir() || LoadableFile(path, d)
}

// LoadableFile accepts WAD archives and dehacked patches.
func LoadableFile(path string, d fs.DirEntry) bool {
	if d.IsDir() {
		return false
	}
	ext := Ext(path)
	return slices.Contains(WADExtensions, ext) || slices.Contains(DehExtensions, ext)
}

// Ext returns the lower-cased extension of path without the dot.
func Ext(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// IsDeh reports whether path is a dehacked patch.
func IsDeh(path string) bool {
	return slices.Contains(DehExtensions, Ext(path))
}

// Find returns the best match for name below roots, trying each root in
// order and stopping at the first one with a match. An absolute name is
// searched for by stem in its own parent directory only.
func Find(name string, roots []string, keep Predicate) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("find: empty name")
	}
	if filepath.IsAbs(name) {
		roots = []string{filepath.Dir(name)}
		name = stem(filepath.Base(name))
	}
	t := newTarget(name)
	for _, root := range roots {
		if root == "" {
			continue
		}
		log.Debug().Str("name", name).Str("dir", root).Msg("searching")
		if best, ok := walk(root, t, keep); ok {
			log.Debug().Str("name", name).Str("path", best).Msg("found")
			return best, nil
		}
	}
	return "", fmt.Errorf("find %q in %s: %w", name, strings.Join(roots, ", "), ErrNotFound)
}

func walk(root string, t target, keep Predicate) (string, bool) {
	var (
		best      string
		bestScore int
	)
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
				return nil
			}
			log.Debug().Err(err).Str("path", path).Msg("stopping search")
			return fs.SkipAll
		}
		if path == root || !keep(path, d) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		s := t.score(rel, d.IsDir())
		if (best == "" && s >= minScore) || (best != "" && s > bestScore) {
			best, bestScore = path, s
		}
		return nil
	})
	return best, best != ""
}

type target struct {
	stem   string
	ext    string
	hasExt bool
	dirs   []string
}

func newTarget(name string) target {
	clean := filepath.Clean(name)
	base := filepath.Base(clean)
	t := target{stem: stem(base)}
	if e := filepath.Ext(base); e != "" && e != base {
		t.ext = strings.TrimPrefix(e, ".")
		t.hasExt = true
	}
	if dir := filepath.Dir(clean); dir != "." {
		t.dirs = splitDirs(dir)
	}
	return t
}

// score rates the entry at rel (relative to the search root).
func (t target) score(rel string, isDir bool) int {
	base := filepath.Base(rel)
	entryStem := stem(base)
	entryExt := strings.TrimPrefix(filepath.Ext(base), ".")
	if entryExt == base {
		entryExt = ""
	}

	stemsEq := strings.EqualFold(entryStem, t.stem)
	stemsCaseEq := entryStem == t.stem
	extMatch := !t.hasExt || strings.EqualFold(t.ext, entryExt)

	s := 0
	if stemsEq {
		s += 2
	}
	if stemsCaseEq {
		s += 5
	}
	if extMatch {
		s++
		if stemsEq {
			s += 10
		}
		if stemsCaseEq {
			s += 5
		}
	}
	if isDir {
		s /= 2
	}
	if stemsEq && t.parentsMatch(rel) {
		s += 20
	}
	return s
}

// parentsMatch reports whether the directories in the searched name are the
// trailing directories of rel. A bare name always matches.
func (t target) parentsMatch(rel string) bool {
	if len(t.dirs) == 0 {
		return true
	}
	dir := filepath.Dir(rel)
	if dir == "." {
		return false
	}
	have := splitDirs(dir)
	if len(have) < len(t.dirs) {
		return false
	}
	have = have[len(have)-len(t.dirs):]
	for i := range t.dirs {
		if !strings.EqualFold(have[i], t.dirs[i]) {
			return false
		}
	}
	return true
}

func stem(base string) string {
	e := filepath.Ext(base)
	if e == base {
		return base
	}
	return strings.TrimSuffix(base, e)
}

func splitDirs(dir string) []string {
	return strings.Split(filepath.ToSlash(dir), "/")
}
