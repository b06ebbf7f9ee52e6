package xkb

import (
	"fmt"
	"sort"
	"strings"

	"waybind/internal/keys"
)

// Key describes one keycode in a static layout: its keysyms per shift
// level and, for modifier keys, the modifier bit it drives.
type Key struct {
	Levels   [][]keys.Keysym
	Modifier keys.Modifiers
}

// Layout is one named layout of a static keymap.
type Layout struct {
	Name string
	Keys map[keys.Keycode]Key
}

// Static is a table-driven Keymap implementation. It models two shift
// levels: level 1 is selected when Shift is held and the key defines more
// than one level.
type Static struct {
	layouts    []Layout
	serialized string
}

// NewStatic builds a static keymap from the given layouts.
// At least one layout is required.
func NewStatic(layouts ...Layout) *Static {
	s := &Static{layouts: layouts}
	s.serialized = s.dump()
	return s
}

// Syms implements Keymap.
func (s *Static) Syms(code keys.Keycode, layout uint32, level int) []keys.Keysym {
	k, ok := s.key(code, layout)
	if !ok || level < 0 || level >= len(k.Levels) {
		return nil
	}
	return k.Levels[level]
}

// Level implements Keymap. Shift selects level 1 on keys that define it.
func (s *Static) Level(code keys.Keycode, layout uint32, mods keys.Modifiers) int {
	k, ok := s.key(code, layout)
	if !ok {
		return 0
	}
	if mods.Has(keys.ModShift) && len(k.Levels) > 1 {
		return 1
	}
	return 0
}

// Consumed implements Keymap. Shift is consumed by any key with more than
// one level when it is held, mirroring the XKB consumed-modifiers mode.
func (s *Static) Consumed(code keys.Keycode, layout uint32, mods keys.Modifiers) keys.Modifiers {
	k, ok := s.key(code, layout)
	if !ok {
		return keys.ModNone
	}
	if mods.Has(keys.ModShift) && len(k.Levels) > 1 {
		return keys.ModShift
	}
	return keys.ModNone
}

// Modifier implements Keymap.
func (s *Static) Modifier(code keys.Keycode) keys.Modifiers {
	k, ok := s.key(code, 0)
	if !ok {
		return keys.ModNone
	}
	return k.Modifier
}

// Layouts implements Keymap.
func (s *Static) Layouts() uint32 {
	return uint32(len(s.layouts))
}

// LayoutName implements Keymap.
func (s *Static) LayoutName(layout uint32) string {
	if layout >= uint32(len(s.layouts)) {
		return ""
	}
	return s.layouts[layout].Name
}

// Serialize implements Keymap.
func (s *Static) Serialize() string {
	return s.serialized
}

func (s *Static) key(code keys.Keycode, layout uint32) (Key, bool) {
	if layout >= uint32(len(s.layouts)) {
		return Key{}, false
	}
	k, ok := s.layouts[layout].Keys[code]
	return k, ok
}

// dump renders a canonical textual form: layouts in order, keycodes sorted.
func (s *Static) dump() string {
	var b strings.Builder
	for _, l := range s.layouts {
		fmt.Fprintf(&b, "layout %q {\n", l.Name)
		codes := make([]keys.Keycode, 0, len(l.Keys))
		for c := range l.Keys {
			codes = append(codes, c)
		}
		sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
		for _, c := range codes {
			k := l.Keys[c]
			fmt.Fprintf(&b, "  key %d = %v", c, k.Levels)
			if k.Modifier != keys.ModNone {
				fmt.Fprintf(&b, " modifier %s", k.Modifier)
			}
			b.WriteString("\n")
		}
		b.WriteString("}\n")
	}
	return b.String()
}
