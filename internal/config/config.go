// Package config resolves config.kdl into a validated Config.
//
// The resolver never exits the process. Every failure is returned as an
// *Error whose Kind tells the caller how to report it; first-run bootstrap
// is one of those kinds.
package config

import (
	_ "embed"
	"path/filepath"
)

// File names inside the per-user configuration directory.
const (
	ConfigFileName  = "config.kdl"
	ExampleFileName = "example.kdl"
)

// Skeleton is written to the config path on first run.
const Skeleton = "doom {\n}\n"

// Example is the bundled reference configuration.
//
//go:embed example.kdl
var Example string

// Engine is one launchable executable.
type Engine struct {
	Name string
	Path string
	Args []string
}

// Config is the resolved configuration for one run.
type Config struct {
	DefaultEngine string
	Dir           string
	// Engines keeps declaration order.
	Engines []Engine
}

// Engine returns the first engine named name.
func (c Config) Engine(name string) (Engine, bool) {
	for _, e := range c.Engines {
		if e.Name == name {
			return e, true
		}
	}
	return Engine{}, false
}

// Paths are the files the resolver reads and writes.
type Paths struct {
	Config  string
	Example string
}

// PathsIn returns the config and example paths inside dir.
func PathsIn(dir string) Paths {
	return Paths{
		Config:  filepath.Join(dir, ConfigFileName),
		Example: filepath.Join(dir, ExampleFileName),
	}
}
