// Package opt provides a small optional-value type with lazy fallbacks.
//
// Fallback functions passed to OrElse and OrElseErr run only when the option
// is empty, so an expensive or failing fallback (reading a config file,
// probing the platform) is never touched when a value is already present.
package opt

// Option holds either a value or nothing.
type Option[T any] struct {
	value T
	ok    bool
}

// Some wraps v.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, ok: true}
}

// None returns the empty option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// FromString returns None for the empty string and Some(s) otherwise.
func FromString(s string) Option[string] {
	if s == "" {
		return None[string]()
	}
	return Some(s)
}

// When returns Some(v) if ok, else None.
func When[T any](v T, ok bool) Option[T] {
	if !ok {
		return None[T]()
	}
	return Some(v)
}

// IsSome reports whether a value is present.
func (o Option[T]) IsSome() bool { return o.ok }

// IsNone reports whether the option is empty.
func (o Option[T]) IsNone() bool { return !o.ok }

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.ok
}

// Or returns the value, or def when empty.
func (o Option[T]) Or(def T) T {
	if o.ok {
		return o.value
	}
	return def
}

// OrElse returns the value, or the result of f when empty.
func (o Option[T]) OrElse(f func() T) T {
	if o.ok {
		return o.value
	}
	return f()
}

// OrElseErr is OrElse for fallbacks that can fail.
func (o Option[T]) OrElseErr(f func() (T, error)) (T, error) {
	if o.ok {
		return o.value, nil
	}
	return f()
}

// Map applies f to the value if present.
func Map[T, U any](o Option[T], f func(T) U) Option[U] {
	if !o.ok {
		return None[U]()
	}
	return Some(f(o.value))
}

// MapOr applies f to the value if present, else returns def.
func MapOr[T, U any](o Option[T], def U, f func(T) U) U {
	if !o.ok {
		return def
	}
	return f(o.value)
}
