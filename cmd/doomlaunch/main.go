package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/doomlaunch/internal/autoload"
	"github.com/hyperifyio/doomlaunch/internal/cli"
	"github.com/hyperifyio/doomlaunch/internal/config"
	"github.com/hyperifyio/doomlaunch/internal/launch"
	"github.com/hyperifyio/doomlaunch/internal/platform"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	runner := launch.ExecRunner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr, platform.Default(), runner))
}

// run is main without the process exit, so tests can drive it.
func run(ctx context.Context, argv []string, stdin io.Reader, stdout, stderr io.Writer, dirs platform.Dirs, runner launch.Runner) int {
	// The level must be set before the config is read during flag parsing.
	if cli.Verbose(argv) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	resolver := config.NewResolver(dirs)
	var (
		cfg     config.Config
		cfgErr  error
		cfgRead bool
	)
	loadConfig := func() (config.Config, error) {
		if !cfgRead {
			cfg, cfgErr = resolver.Read()
			cfgRead = true
		}
		return cfg, cfgErr
	}

	args, exit, err := cli.Parse(argv, stdout, func() (string, error) {
		c, err := loadConfig()
		return c.DefaultEngine, err
	})
	if err != nil {
		return report(err, stdout, stderr)
	}
	if exit {
		return 0
	}

	cfg, err = loadConfig()
	if err != nil {
		return report(err, stdout, stderr)
	}

	paths, err := resolver.Paths()
	if err != nil {
		return report(err, stdout, stderr)
	}
	al, err := autoload.Load(autoload.Path(filepath.Dir(paths.Config)))
	if err != nil {
		return report(fmt.Errorf("autoloads: %w", err), stdout, stderr)
	}

	if name, ok := args.Render.Get(); ok {
		log.Warn().Str("demo", name).Msg("demo rendering is not supported; ignoring --render")
	}

	plan, err := launch.Build(cfg, args, al)
	if err != nil {
		return report(err, stdout, stderr)
	}
	fmt.Fprint(stdout, plan.String())

	if args.Confirm {
		if err := launch.Confirm(stdin, stdout); err != nil {
			return report(err, stdout, stderr)
		}
	}
	if err := runner.Run(ctx, plan); err != nil {
		return report(err, stdout, stderr)
	}
	return 0
}

// report prints err where the user expects it and returns the exit code.
func report(err error, stdout, stderr io.Writer) int {
	var exitErr *cli.ExitError
	switch {
	case errors.As(err, &exitErr):
		fmt.Fprint(stderr, exitErr.Message)
		return exitErr.Code
	case errors.Is(err, config.ErrBootstrap):
		fmt.Fprintln(stdout, err)
		return 1
	default:
		log.Debug().Err(err).Msg("run failed")
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
}
