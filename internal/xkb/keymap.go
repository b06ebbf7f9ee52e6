// Package xkb defines the compiled-keymap interface the shortcut engine
// consumes, along with a reference-counted sharing wrapper and a static
// table-driven implementation for tests and simple frontends.
//
// Keymap compilation and layout negotiation belong to an external
// collaborator; this package only models the query surface the engine needs.
package xkb

import (
	"sync/atomic"

	"waybind/internal/keys"
)

// Keymap is a compiled mapping from keycodes to keysyms across layouts and
// shift levels, plus modifier semantics. Implementations must be immutable
// and safe for concurrent reads.
type Keymap interface {
	// Syms returns the keysyms produced by keycode at the given layout index
	// and shift level. Level 0 is the unshifted level.
	Syms(code keys.Keycode, layout uint32, level int) []keys.Keysym

	// Level returns the shift level selected for keycode by the held
	// modifier mask at the given layout.
	Level(code keys.Keycode, layout uint32, mods keys.Modifiers) int

	// Consumed returns the modifiers consumed when translating keycode
	// under the given mask, e.g. Shift for Shift+2 producing "@".
	Consumed(code keys.Keycode, layout uint32, mods keys.Modifiers) keys.Modifiers

	// Modifier returns the modifier bit driven by keycode, or ModNone if
	// the key is not a modifier key.
	Modifier(code keys.Keycode) keys.Modifiers

	// Layouts returns the number of configured layouts.
	Layouts() uint32

	// LayoutName returns the name of the layout at the given index.
	LayoutName(layout uint32) string

	// Serialize returns the canonical textual form of the keymap.
	// Two keymaps with equal serializations are interchangeable.
	Serialize() string
}

// Equal reports whether two keymaps are structurally equal, by comparing
// their serialized textual forms. Two independently compiled keymaps with
// identical rules compare equal.
func Equal(a, b Keymap) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Serialize() == b.Serialize()
}

// Shared wraps a Keymap with a reference count so grouped keyboards can
// hold the same compiled keymap. The last Release frees the keymap through
// the optional closer.
type Shared struct {
	Keymap

	refs   atomic.Int32
	closer func()
}

// NewShared returns a shared handle with a reference count of one.
// The closer, if non-nil, runs when the last reference is released.
func NewShared(km Keymap, closer func()) *Shared {
	s := &Shared{Keymap: km, closer: closer}
	s.refs.Store(1)
	return s
}

// Retain increments the reference count and returns the handle.
func (s *Shared) Retain() *Shared {
	s.refs.Add(1)
	return s
}

// Release decrements the reference count, freeing the underlying keymap
// when it reaches zero. Releasing a nil handle is a no-op.
func (s *Shared) Release() {
	if s == nil {
		return
	}
	if s.refs.Add(-1) == 0 && s.closer != nil {
		s.closer()
	}
}
