package config

import (
	"errors"
	"strings"
)

// Kind classifies a resolution failure.
type Kind int

const (
	KindIO Kind = iota + 1
	KindBootstrap
	KindParse
	KindStructural
	KindTypeMismatch
	KindMissingProperty
)

// Sentinels matched by errors.Is against an *Error of the same Kind.
var (
	ErrIO              = errors.New("config i/o error")
	ErrBootstrap       = errors.New("config bootstrapped")
	ErrParse           = errors.New("config parse error")
	ErrStructural      = errors.New("config structural error")
	ErrTypeMismatch    = errors.New("config type mismatch")
	ErrMissingProperty = errors.New("config missing property")
)

func (k Kind) sentinel() error {
	switch k {
	case KindIO:
		return ErrIO
	case KindBootstrap:
		return ErrBootstrap
	case KindParse:
		return ErrParse
	case KindStructural:
		return ErrStructural
	case KindTypeMismatch:
		return ErrTypeMismatch
	case KindMissingProperty:
		return ErrMissingProperty
	}
	return nil
}

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindBootstrap:
		return "bootstrap"
	case KindParse:
		return "parse"
	case KindStructural:
		return "structural"
	case KindTypeMismatch:
		return "type-mismatch"
	case KindMissingProperty:
		return "missing-property"
	}
	return "unknown"
}

// Error is a config resolution failure.
type Error struct {
	Kind Kind
	// Path is the file the problem is attributed to.
	Path string
	// Key names the offending node, property or engine.
	Key string
	// Example is set when the user should look at the example file.
	Example string
	Msg     string
	Err     error

	// refreshExample asks Read to rewrite the example file.
	refreshExample bool
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	if e.Err != nil {
		if e.Msg != "" {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	if e.Example != "" {
		b.WriteString(" (see ")
		b.WriteString(e.Example)
		b.WriteString(" for an example)")
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}
