package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/doomlaunch/internal/kdoc"
	"github.com/hyperifyio/doomlaunch/internal/opt"
	"github.com/hyperifyio/doomlaunch/internal/platform"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Resolver reads the per-user config file.
type Resolver struct {
	Dirs platform.Dirs
}

// NewResolver returns a Resolver over dirs.
func NewResolver(dirs platform.Dirs) *Resolver {
	return &Resolver{Dirs: dirs}
}

// Paths returns the config and example paths, creating the configuration
// directory if needed.
func (r *Resolver) Paths() (Paths, error) {
	dir, err := r.Dirs.ConfigDir()
	if err != nil {
		return Paths{}, &Error{Kind: KindIO, Msg: "locate config directory", Err: err}
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return Paths{}, &Error{Kind: KindIO, Path: dir, Msg: "create config directory", Err: err}
	}
	return PathsIn(dir), nil
}

// Read loads and validates config.kdl. On first run it writes the skeleton
// and example files and returns a KindBootstrap error.
func (r *Resolver) Read() (Config, error) {
	paths, err := r.Paths()
	if err != nil {
		return Config{}, err
	}
	log.Debug().Str("path", paths.Config).Msg("reading config")

	f, err := os.Open(paths.Config)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, bootstrap(paths)
		}
		return Config{}, &Error{Kind: KindIO, Path: paths.Config, Msg: "open config", Err: err}
	}
	defer f.Close()

	doc, err := kdoc.Parse(f)
	if err != nil {
		return Config{}, &Error{Kind: KindParse, Path: paths.Config, Err: err}
	}

	cfg, err := Resolve(doc, paths, r.Dirs.DataDir)
	if err != nil {
		var cerr *Error
		if errors.As(err, &cerr) && cerr.refreshExample {
			if werr := writeFile(paths.Example, Example); werr != nil {
				log.Warn().Err(werr).Str("path", paths.Example).Msg("could not refresh example config")
			}
		}
		return Config{}, err
	}
	log.Debug().
		Str("default_engine", cfg.DefaultEngine).
		Str("dir", cfg.Dir).
		Int("engines", len(cfg.Engines)).
		Msg("config resolved")
	return cfg, nil
}

func bootstrap(paths Paths) error {
	if err := writeFile(paths.Config, Skeleton); err != nil {
		return &Error{Kind: KindIO, Path: paths.Config, Msg: "write skeleton config", Err: err}
	}
	if err := writeFile(paths.Example, Example); err != nil {
		return &Error{Kind: KindIO, Path: paths.Example, Msg: "write example config", Err: err}
	}
	log.Info().Str("path", paths.Config).Msg("created skeleton config")
	return &Error{
		Kind:    KindBootstrap,
		Path:    paths.Config,
		Example: paths.Example,
		Msg:     "created a new config file; edit it to set a default engine and list your engines",
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), filePerm)
}

// Resolve validates doc and builds a Config. dataDir is only called when the
// document has no dir node.
func Resolve(doc *kdoc.Document, paths Paths, dataDir func() (string, error)) (Config, error) {
	root := doc.First()
	if root == nil || root.Name != "doom" {
		return Config{}, &Error{
			Kind:    KindStructural,
			Path:    paths.Config,
			Key:     "doom",
			Example: paths.Example,
			Msg:     "expected a top-level `doom` node",
		}
	}

	def, err := defaultEngine(root, paths)
	if err != nil {
		return Config{}, err
	}

	dirOpt, err := optionalString(root, "dir", paths)
	if err != nil {
		return Config{}, err
	}
	dir, err := dirOpt.OrElseErr(dataDir)
	if err != nil {
		return Config{}, &Error{Kind: KindIO, Path: paths.Config, Key: "dir", Msg: "locate data directory", Err: err}
	}

	enginesNode := root.Child("engines")
	if enginesNode == nil {
		return Config{}, &Error{
			Kind:           KindStructural,
			Path:           paths.Config,
			Key:            "engines",
			Example:        paths.Example,
			Msg:            "you must list your engines in an `engines` node",
			refreshExample: true,
		}
	}
	engines := make([]Engine, 0, len(enginesNode.Children))
	for _, n := range enginesNode.Children {
		e, err := resolveEngine(n, paths)
		if err != nil {
			return Config{}, err
		}
		engines = append(engines, e)
	}

	return Config{DefaultEngine: def, Dir: dir, Engines: engines}, nil
}

func defaultEngine(root *kdoc.Node, paths Paths) (string, error) {
	const key = "default-engine"
	msg := "you must specify a default engine with `default-engine \"<name>\"`"
	n := root.Child(key)
	if n == nil {
		return "", &Error{Kind: KindStructural, Path: paths.Config, Key: key, Example: paths.Example, Msg: msg, refreshExample: true}
	}
	s, ok := n.SingleString()
	if !ok || s == "" {
		return "", &Error{Kind: KindTypeMismatch, Path: paths.Config, Key: key, Example: paths.Example, Msg: msg, refreshExample: true}
	}
	return s, nil
}

// optionalString returns the single string argument of the named child, or
// None when the child is absent.
func optionalString(root *kdoc.Node, key string, paths Paths) (opt.Option[string], error) {
	n := root.Child(key)
	if n == nil {
		return opt.None[string](), nil
	}
	s, ok := n.SingleString()
	if !ok {
		return opt.None[string](), &Error{
			Kind: KindTypeMismatch,
			Path: paths.Config,
			Key:  key,
			Msg:  fmt.Sprintf("`%s` must have exactly one string argument", key),
		}
	}
	return opt.Some(s), nil
}

func resolveEngine(n *kdoc.Node, paths Paths) (Engine, error) {
	name := n.Name
	v, ok := n.Prop("path")
	if !ok {
		return Engine{}, &Error{
			Kind: KindMissingProperty,
			Path: paths.Config,
			Key:  name,
			Msg:  fmt.Sprintf("engine %q is missing the required `path` property", name),
		}
	}
	path, ok := v.AsString()
	if !ok {
		return Engine{}, &Error{
			Kind: KindTypeMismatch,
			Path: paths.Config,
			Key:  name,
			Msg:  fmt.Sprintf("engine %q: `path` must be a string, got %s", name, v.Kind()),
		}
	}
	if path == "" {
		return Engine{}, &Error{
			Kind: KindMissingProperty,
			Path: paths.Config,
			Key:  name,
			Msg:  fmt.Sprintf("engine %q has an empty `path` property", name),
		}
	}

	args := []string{}
	switch len(n.Children) {
	case 0:
	case 1:
		c := n.Children[0]
		if c.Name != "args" {
			return Engine{}, &Error{
				Kind: KindStructural,
				Path: paths.Config,
				Key:  name,
				Msg:  fmt.Sprintf("engine %q: unexpected child `%s`, only `args` is allowed", name, c.Name),
			}
		}
		var ok bool
		args, ok = c.Strings()
		if !ok {
			return Engine{}, &Error{
				Kind: KindTypeMismatch,
				Path: paths.Config,
				Key:  name,
				Msg:  fmt.Sprintf("engine %q: `args` values must be strings", name),
			}
		}
	default:
		return Engine{}, &Error{
			Kind: KindStructural,
			Path: paths.Config,
			Key:  name,
			Msg:  fmt.Sprintf("engine %q has too many children, expected at most one `args` node", name),
		}
	}

	return Engine{Name: name, Path: path, Args: args}, nil
}
