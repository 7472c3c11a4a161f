// Package launch builds the engine command line and runs it.
package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/doomlaunch/internal/cli"
	"github.com/hyperifyio/doomlaunch/internal/config"
	"github.com/hyperifyio/doomlaunch/internal/opt"
	"github.com/hyperifyio/doomlaunch/internal/search"
)

// DemoDirName is the directory under the data dir that holds recorded demos.
const DemoDirName = "demo"

// WarpSeparator splits episode and map in a warp spec.
const WarpSeparator = ","

var (
	ErrUnknownEngine = errors.New("unknown engine")
	ErrAborted       = errors.New("launch aborted")
)

// Plan is a ready-to-run engine invocation.
type Plan struct {
	Engine  config.Engine
	Command CommandLine
	// WorkDir is the engine binary's directory, or empty to inherit.
	WorkDir string
	// Dirs must exist before the engine starts.
	Dirs []string
}

// Autoloads supplies PWADs loaded for an engine and IWAD.
type Autoloads interface {
	Resolve(engine, iwad string) []string
}

// Build resolves args.Engine against cfg and assembles the command line.
// The IWAD, autoloads and PWADs are looked up below cfg.Dir; autoloads come
// before the PWADs given on the command line. loads may be nil.
func Build(cfg config.Config, args *cli.Args, loads Autoloads) (*Plan, error) {
	eng, ok := cfg.Engine(args.Engine)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownEngine, args.Engine)
	}
	roots := []string{cfg.Dir}

	iwad, err := search.Find(args.IWAD, roots, search.Any)
	if err != nil {
		return nil, fmt.Errorf("iwad: %w", err)
	}
	if iwad, err = filepath.Abs(iwad); err != nil {
		return nil, fmt.Errorf("iwad: %w", err)
	}

	p := &Plan{Engine: eng, WorkDir: workDir(eng.Path)}
	c := &p.Command
	c.Add(0, eng.Path)
	if len(eng.Args) > 0 {
		c.Add(1, eng.Args...)
	}
	c.Add(1, "-iwad", iwad)

	var wads, dehs []string
	add := func(names []string, keep search.Predicate) error {
		for _, name := range names {
			if strings.TrimSpace(name) == "" {
				continue
			}
			path, err := search.Find(name, roots, keep)
			if err != nil {
				return fmt.Errorf("pwad: %w", err)
			}
			if search.IsDeh(path) {
				dehs = append(dehs, path)
			} else {
				wads = append(wads, path)
			}
		}
		return nil
	}
	if loads != nil {
		if err := add(loads.Resolve(eng.Name, iwad), search.Loadable); err != nil {
			return nil, err
		}
	}
	if err := add(args.PWADs, search.LoadableFile); err != nil {
		return nil, err
	}
	addGroup(c, "-file", wads)
	addGroup(c, "-deh", dehs)

	if lvl, ok := args.Compatibility.Get(); ok {
		c.Add(1, "-complevel", lvl)
	}
	if parts := opt.MapOr(args.Warp, []string(nil), splitWarp); len(parts) > 0 {
		c.Add(1, append([]string{"-warp"}, parts...)...)
	}
	demo := opt.Map(args.Record, func(name string) string { return demoPath(cfg.Dir, name) })
	if path, ok := demo.Get(); ok {
		p.Dirs = append(p.Dirs, filepath.Dir(path))
		c.Add(1, "-record", path)
	}

	log.Debug().
		Str("engine", eng.Name).
		Str("workdir", p.WorkDir).
		Strs("argv", c.Words()).
		Msg("launch plan built")
	return p, nil
}

// addGroup adds flag on its own line followed by one path per line.
func addGroup(c *CommandLine, flag string, paths []string) {
	if len(paths) == 0 {
		return
	}
	c.Add(1, flag)
	for _, p := range paths {
		c.Add(2, p)
	}
}

// String renders the indented preview.
func (p *Plan) String() string { return p.Command.String() }

// Words returns the full argv, binary first.
func (p *Plan) Words() []string { return p.Command.Words() }

func workDir(path string) string {
	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}
	return dir
}

func demoPath(dataDir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dataDir, DemoDirName, name)
}

func splitWarp(s string) []string {
	var out []string
	for _, part := range strings.Split(s, WarpSeparator) {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Confirm writes the prompt to w and waits for a line on r. End of input
// before a newline returns ErrAborted. r is read one byte at a time so
// nothing past the newline is consumed.
func Confirm(r io.Reader, w io.Writer) error {
	fmt.Fprintln(w, "Press enter to launch Doom.")
	var (
		buf  [1]byte
		read int
	)
	for {
		n, err := r.Read(buf[:])
		if n > 0 {
			if buf[0] == '\n' {
				return nil
			}
			read++
		}
		if errors.Is(err, io.EOF) {
			if read == 0 {
				return ErrAborted
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("read confirmation: %w", err)
		}
	}
}

// Runner starts a plan and waits for it to finish.
type Runner interface {
	Run(ctx context.Context, p *Plan) error
}

// ExecRunner runs plans as child processes sharing the given stdio.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (r ExecRunner) Run(ctx context.Context, p *Plan) error {
	words := p.Words()
	if len(words) == 0 {
		return errors.New("empty command line")
	}
	for _, d := range p.Dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", d, err)
		}
	}
	bin := words[0]
	// A relative path would otherwise be resolved inside WorkDir.
	if p.WorkDir != "" && !filepath.IsAbs(bin) {
		abs, err := filepath.Abs(bin)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", bin, err)
		}
		bin = abs
	}
	cmd := exec.CommandContext(ctx, bin, words[1:]...)
	cmd.Dir = p.WorkDir
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	log.Debug().Str("engine", p.Engine.Name).Str("dir", cmd.Dir).Msg("starting engine")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", p.Engine.Name, err)
	}
	return nil
}
