package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/doomlaunch/internal/autoload"
	"github.com/hyperifyio/doomlaunch/internal/config"
	"github.com/hyperifyio/doomlaunch/internal/launch"
	"github.com/hyperifyio/doomlaunch/internal/platform"
)

type fakeRunner struct {
	plans []*launch.Plan
	err   error
}

func (f *fakeRunner) Run(_ context.Context, p *launch.Plan) error {
	f.plans = append(f.plans, p)
	return f.err
}

type harness struct {
	dirs   platform.Static
	runner *fakeRunner
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	base := t.TempDir()
	return &harness{
		dirs: platform.Static{
			Config: filepath.Join(base, "config"),
			Data:   filepath.Join(base, "data"),
		},
		runner: &fakeRunner{},
	}
}

func (h *harness) configPath() string {
	return config.PathsIn(h.dirs.Config).Config
}

func (h *harness) writeConfig(t *testing.T, src string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(h.dirs.Config, 0o755))
	require.NoError(t, os.WriteFile(h.configPath(), []byte(src), 0o644))
}

// addData creates empty files below the data directory.
func (h *harness) addData(t *testing.T, names ...string) {
	t.Helper()
	for _, n := range names {
		p := filepath.Join(h.dirs.Data, filepath.FromSlash(n))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}
}

func (h *harness) run(stdin string, argv ...string) int {
	return run(context.Background(), argv, strings.NewReader(stdin), &h.stdout, &h.stderr, h.dirs, h.runner)
}

const validConfig = `doom {
    default-engine "dsda"
    engines {
        dsda path="/opt/dsda/dsda-doom" {
            args "-complevel" "21"
        }
        crispy path="/usr/bin/crispy-doom"
    }
}
`

func TestRun_HelpNeedsNoConfig(t *testing.T) {
	h := newHarness(t)
	code := h.run("", "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, h.stdout.String(), "Usage: doomlaunch")
	assert.Empty(t, h.stderr.String())
	assert.NoFileExists(t, h.configPath())
}

func TestRun_FirstRunBootstrap(t *testing.T) {
	h := newHarness(t)
	code := h.run("")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stdout.String(), "created a new config file")
	assert.Empty(t, h.stderr.String())
	assert.FileExists(t, h.configPath())
	assert.Empty(t, h.runner.plans)
}

func TestRun_ValidationErrorGoesToStderr(t *testing.T) {
	h := newHarness(t)
	h.writeConfig(t, "doom {\n}\n")
	code := h.run("")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "default engine")
	assert.Empty(t, h.stdout.String())
}

func TestRun_UsageError(t *testing.T) {
	h := newHarness(t)
	code := h.run("", "--nope")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "Usage: doomlaunch")
	assert.NoFileExists(t, h.configPath())
}

func TestRun_LaunchesDefaultEngine(t *testing.T) {
	h := newHarness(t)
	h.writeConfig(t, validConfig)
	h.addData(t, "iwads/doom2.wad", "autoload/always.wad", "pwads/sunlust.wad", "pwads/sunlust.deh")
	require.NoError(t, os.WriteFile(autoload.Path(h.dirs.Config), []byte("universal: [always.wad]\n"), 0o644))

	code := h.run("", "-n", "-p", "sunlust.wad", "-p", "sunlust.deh")
	require.Equal(t, 0, code, h.stderr.String())
	require.Len(t, h.runner.plans, 1)
	p := h.runner.plans[0]
	assert.Equal(t, "dsda", p.Engine.Name)
	iwad := filepath.Join(h.dirs.Data, "iwads", "doom2.wad")
	assert.Equal(t, []string{
		"/opt/dsda/dsda-doom", "-complevel", "21",
		"-iwad", iwad,
		"-file",
		filepath.Join(h.dirs.Data, "autoload", "always.wad"),
		filepath.Join(h.dirs.Data, "pwads", "sunlust.wad"),
		"-deh",
		filepath.Join(h.dirs.Data, "pwads", "sunlust.deh"),
	}, p.Words())
	assert.Contains(t, h.stdout.String(), "    -iwad "+iwad)
	assert.NotContains(t, h.stdout.String(), "Press enter")
}

func TestRun_ExplicitEngineAndRecordUnderDataDir(t *testing.T) {
	h := newHarness(t)
	h.writeConfig(t, validConfig)
	h.addData(t, "DOOM2.WAD")

	code := h.run("\n", "-e", "crispy", "-r", "run.lmp")
	require.Equal(t, 0, code, h.stderr.String())
	require.Len(t, h.runner.plans, 1)
	words := h.runner.plans[0].Words()
	assert.Equal(t, "/usr/bin/crispy-doom", words[0])
	assert.Equal(t, filepath.Join(h.dirs.Data, "DOOM2.WAD"), words[2])
	assert.Equal(t, filepath.Join(h.dirs.Data, "demo", "run.lmp"), words[len(words)-1])
	assert.Contains(t, h.stdout.String(), "Press enter to launch Doom.")
}

func TestRun_MissingIWAD(t *testing.T) {
	h := newHarness(t)
	h.writeConfig(t, validConfig)
	code := h.run("", "-n", "-i", "tnt.wad")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), `"tnt.wad"`)
	assert.Empty(t, h.runner.plans)
}

func TestRun_VerboseWithValue(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.WarnLevel) })
	h := newHarness(t)
	h.run("", "--verbose=true", "--help")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	h.run("", "--verbose=false", "--help")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestRun_AutoloadTemplateCreated(t *testing.T) {
	h := newHarness(t)
	h.writeConfig(t, validConfig)
	h.addData(t, "doom2.wad")
	code := h.run("", "-n")
	require.Equal(t, 0, code, h.stderr.String())
	assert.FileExists(t, autoload.Path(h.dirs.Config))
}

func TestRun_UnknownEngine(t *testing.T) {
	h := newHarness(t)
	h.writeConfig(t, validConfig)
	code := h.run("", "-n", "-e", "ghost")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), `unknown engine "ghost"`)
	assert.Empty(t, h.runner.plans)
}

func TestRun_ConfirmAbortedOnEOF(t *testing.T) {
	h := newHarness(t)
	h.writeConfig(t, validConfig)
	h.addData(t, "doom2.wad")
	code := h.run("")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "launch aborted")
	assert.Empty(t, h.runner.plans)
}

func TestRun_RunnerFailure(t *testing.T) {
	h := newHarness(t)
	h.writeConfig(t, validConfig)
	h.addData(t, "doom2.wad")
	h.runner.err = errors.New("engine crashed")
	code := h.run("", "-n")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), "engine crashed")
}

func TestRun_ParseErrorAttributedToFile(t *testing.T) {
	h := newHarness(t)
	h.writeConfig(t, "doom {\n")
	code := h.run("", "-e", "dsda", "-n")
	assert.Equal(t, 1, code)
	assert.Contains(t, h.stderr.String(), h.configPath())
}
