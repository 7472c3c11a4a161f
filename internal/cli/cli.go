// Package cli turns the command line into launch arguments.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/hyperifyio/doomlaunch/internal/opt"
)

// Program is the name shown in usage output.
const Program = "doomlaunch"

// DefaultIWAD is used when -i is not given.
const DefaultIWAD = "doom2.wad"

// Args are the resolved launch parameters.
type Args struct {
	Compatibility opt.Option[string]
	Engine        string
	IWAD          string
	Confirm       bool
	PWADs         []string
	Record        opt.Option[string]
	Render        opt.Option[string]
	Warp          opt.Option[string]
	Verbose       bool
}

// ExitError asks the caller to print Message to stderr and exit with Code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

type flags struct {
	compatibility string
	engine        string
	iwad          string
	noConfirm     bool
	pwads         []string
	record        string
	render        string
	warp          string
	help          bool
	verbose       bool
}

func newFlagSet(f *flags) *pflag.FlagSet {
	fs := pflag.NewFlagSet(Program, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.SortFlags = false

	fs.StringVarP(&f.compatibility, "compatibility", "c", "", "compatibility level passed to the engine as -complevel")
	fs.StringVarP(&f.engine, "engine", "e", "", "engine to launch (default: default-engine from config.kdl)")
	fs.StringVarP(&f.iwad, "iwad", "i", DefaultIWAD, "IWAD to load")
	fs.BoolVarP(&f.noConfirm, "no-confirm", "n", false, "launch without waiting for Enter")
	fs.StringArrayVarP(&f.pwads, "pwads", "p", nil, "PWAD to load; repeat for more, loaded in order")
	fs.StringVarP(&f.record, "record", "r", "", "record a demo with this name")
	fs.StringVarP(&f.render, "render", "R", "", "render a demo with this name")
	fs.StringVarP(&f.warp, "warp", "w", "", "warp to a map, e.g. 1,2 or 15")
	fs.BoolVar(&f.verbose, "verbose", false, "enable debug logging")
	fs.BoolVarP(&f.help, "help", "h", false, "show this help")
	return fs
}

// Usage returns the help text.
func Usage() string {
	fs := newFlagSet(&flags{})
	var b strings.Builder
	fmt.Fprintf(&b, "Usage: %s [flags]\n\nLaunch Doom with a configured engine.\n\nFlags:\n", Program)
	b.WriteString(fs.FlagUsages())
	return b.String()
}

// Parse parses argv (without the program name). On --help it writes the
// usage to stdout and returns shouldExit=true. Usage errors are returned as
// *ExitError. defaultEngine is only called when -e is not given.
func Parse(argv []string, stdout io.Writer, defaultEngine func() (string, error)) (*Args, bool, error) {
	var f flags
	fs := newFlagSet(&f)

	if err := fs.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprint(stdout, Usage())
			return nil, true, nil
		}
		return nil, true, usageError(err.Error())
	}
	if f.help {
		fmt.Fprint(stdout, Usage())
		return nil, true, nil
	}
	if fs.NArg() > 0 {
		return nil, true, usageError(fmt.Sprintf("unexpected argument %q", fs.Arg(0)))
	}

	engine := opt.When(f.engine, fs.Changed("engine"))
	if engine.IsSome() && f.engine == "" {
		return nil, true, usageError("flag --engine needs a non-empty name")
	}
	name, err := engine.OrElseErr(defaultEngine)
	if err != nil {
		return nil, true, err
	}

	pwads := f.pwads
	if pwads == nil {
		pwads = []string{}
	}

	return &Args{
		Compatibility: opt.FromString(f.compatibility),
		Engine:        name,
		IWAD:          f.iwad,
		Confirm:       !f.noConfirm,
		PWADs:         pwads,
		Record:        opt.FromString(f.record),
		Render:        opt.FromString(f.render),
		Warp:          opt.FromString(f.warp),
		Verbose:       f.verbose,
	}, false, nil
}

// Verbose reports whether argv turns on debug logging. It accepts every
// spelling Parse accepts and ignores parse errors, which Parse reports.
func Verbose(argv []string) bool {
	var f flags
	fs := newFlagSet(&f)
	_ = fs.Parse(argv)
	return f.verbose
}

func usageError(msg string) *ExitError {
	return &ExitError{Code: 1, Message: fmt.Sprintf("error: %s\n\n%s", msg, Usage())}
}
