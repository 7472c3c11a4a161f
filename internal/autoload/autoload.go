// Package autoload reads autoloads.yaml, the list of PWADs loaded on every
// launch, per engine, or per IWAD.
package autoload

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// FileName is the autoloads file kept next to config.kdl.
const FileName = "autoloads.yaml"

// Template is written when no autoloads file exists yet.
const Template = `# PWADs you always want to load.
universal: []

# PWADs loaded only with a given engine, keyed by engine name.
engines:
  example: [bar.pk3]

# PWADs loaded only with a given IWAD. Keys match the IWAD file name,
# ignoring case, with or without extension.
iwads:
  doom2.wad: [foo.wad]
`

// Autoloads is the parsed file.
type Autoloads struct {
	Universal []string            `yaml:"universal"`
	Engines   map[string][]string `yaml:"engines"`
	IWADs     map[string][]string `yaml:"iwads"`
}

// Path returns the autoloads path inside configDir.
func Path(configDir string) string {
	return filepath.Join(configDir, FileName)
}

// Load reads path, writing the template first if the file does not exist.
func Load(path string) (*Autoloads, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if werr := os.WriteFile(path, []byte(Template), 0o644); werr != nil {
			return nil, fmt.Errorf("create %s: %w", path, werr)
		}
		log.Info().Str("path", path).Msg("created autoloads template")
		b, err = []byte(Template), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	a, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// Parse decodes an autoloads document. Unknown keys are rejected.
func Parse(b []byte) (*Autoloads, error) {
	var a Autoloads
	if len(bytes.TrimSpace(b)) == 0 {
		return &a, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("parse autoloads: %w", err)
	}
	return &a, nil
}

// Resolve returns the universal entries, then the entries for engine, then
// the entries for iwad. Empty entries are skipped.
func (a *Autoloads) Resolve(engine, iwad string) []string {
	if a == nil {
		return nil
	}
	out := appendNonEmpty(nil, a.Universal)
	out = appendNonEmpty(out, a.Engines[engine])
	for _, k := range slices.Sorted(maps.Keys(a.IWADs)) {
		if matchIWAD(k, iwad) {
			out = appendNonEmpty(out, a.IWADs[k])
		}
	}
	log.Debug().Str("engine", engine).Str("iwad", iwad).Int("count", len(out)).Msg("autoloads resolved")
	return out
}

func appendNonEmpty(dst, src []string) []string {
	for _, s := range src {
		if strings.TrimSpace(s) != "" {
			dst = append(dst, s)
		}
	}
	return dst
}

// matchIWAD compares file names case-insensitively. When either side has no
// extension only the stems are compared.
func matchIWAD(key, iwad string) bool {
	kb, ks := nameParts(key)
	ib, is := nameParts(iwad)
	if kb == "" || ib == "" {
		return false
	}
	if kb == ib {
		return true
	}
	if kb == ks || ib == is {
		return ks == is
	}
	return false
}

func nameParts(p string) (base, stem string) {
	base = strings.ToLower(filepath.Base(strings.TrimSpace(p)))
	if base == "." || base == "/" {
		return "", ""
	}
	return base, strings.TrimSuffix(base, filepath.Ext(base))
}
