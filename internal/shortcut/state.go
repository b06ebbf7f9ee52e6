// Package shortcut tracks the set of currently-pressed identifiers for one
// interpretation of a keystream. The engine keeps three instances per
// keyboard (keycodes, raw keysyms, translated keysyms) plus a fourth for
// keys forwarded to the client; the generic identifier type guarantees the
// bookkeeping cannot drift between them.
package shortcut

import "waybind/internal/keys"

// Capacity bounds the pressed set. Presses beyond it are silently dropped:
// this is a best-effort tracker, not a source of truth for hardware state.
const Capacity = 32

type entry[T ~uint32] struct {
	id   T
	code keys.Keycode
}

// State is the pressed-identifier set for one interpretation of the
// keystream. The set stays sorted ascending by identifier; one keycode may
// contribute several identifiers (a key can produce multiple keysyms).
// The zero value is ready to use.
type State[T ~uint32] struct {
	pressed []entry[T]

	lastKeycode      keys.Keycode
	lastRawModifiers keys.Modifiers
	currentKey       T
}

// Len returns the number of pressed identifiers.
func (s *State[T]) Len() int {
	return len(s.pressed)
}

// At returns the i-th pressed identifier in sorted order.
func (s *State[T]) At(i int) T {
	return s.pressed[i].id
}

// Current returns the most recently pressed identifier, or zero if the
// last operation was an erase.
func (s *State[T]) Current() T {
	return s.currentKey
}

// Add inserts id at its sorted position, recording the keycode it came
// from. Adds beyond Capacity are dropped, and an identifier that is
// already pressed is not duplicated.
func (s *State[T]) Add(code keys.Keycode, id T) {
	if len(s.pressed) >= Capacity {
		return
	}
	i := 0
	for i < len(s.pressed) && s.pressed[i].id < id {
		i++
	}
	if i < len(s.pressed) && s.pressed[i].id == id {
		s.currentKey = id
		return
	}
	s.pressed = append(s.pressed, entry[T]{})
	copy(s.pressed[i+1:], s.pressed[i:])
	s.pressed[i] = entry[T]{id: id, code: code}
	s.currentKey = id
}

// Erase removes every pressed identifier that originated from code and
// reports whether any was found. The current key is cleared either way.
func (s *State[T]) Erase(code keys.Keycode) bool {
	found := false
	j := 0
	for i := 0; i < len(s.pressed); i++ {
		if s.pressed[i].code == code {
			found = true
			continue
		}
		s.pressed[j] = s.pressed[i]
		j++
	}
	s.pressed = s.pressed[:j]
	s.currentKey = 0
	return found
}

// Update advances the state for one key event carrying identifier id.
//
// A change in the raw modifier mask since the previous call means the last
// pressed key was actually a standalone modifier press; it is erased so
// modifier keys never stay stuck in the set once combined with another key.
//
// On press the identifier is added and the keycode recorded. On release the
// keycode is erased and the return value reports whether it had been
// present, which callers use to decide if the release needs forwarding.
func (s *State[T]) Update(pressed bool, code keys.Keycode, id T, rawMods keys.Modifiers) bool {
	lastWasModifier := rawMods != s.lastRawModifiers
	s.lastRawModifiers = rawMods

	if lastWasModifier && s.lastKeycode != 0 {
		s.Erase(s.lastKeycode)
	}

	if pressed {
		s.Add(code, id)
		s.lastKeycode = code
		return false
	}
	return s.Erase(code)
}
