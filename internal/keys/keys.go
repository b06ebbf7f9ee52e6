// Package keys defines the identifier types shared by the shortcut engine:
// physical keycodes, layout-resolved keysyms, and modifier masks.
package keys

// Keycode is a hardware-level physical key identifier, layout-independent.
// Values follow the XKB numbering, which is the evdev code plus EvdevOffset.
type Keycode uint32

// Keysym is a symbolic meaning assigned to a keycode under a given layout
// and modifier state (e.g. "a", "@").
type Keysym uint32

// EvdevOffset is added to raw evdev key codes to obtain XKB keycodes.
const EvdevOffset = 8

// FromEvdev converts a raw evdev key code to an XKB keycode.
func FromEvdev(code uint32) Keycode {
	return Keycode(code + EvdevOffset)
}

// Keysyms for the virtual-terminal switch range (XF86Switch_VT_1..12).
const (
	SymSwitchVT1  Keysym = 0x1008fe01
	SymSwitchVT12 Keysym = 0x1008fe0c
)

// Common keysyms used by binding specs and the static keymap.
const (
	SymSpace     Keysym = 0x0020
	SymBackSpace Keysym = 0xff08
	SymTab       Keysym = 0xff09
	SymReturn    Keysym = 0xff0d
	SymEscape    Keysym = 0xff1b
	SymLeft      Keysym = 0xff51
	SymUp        Keysym = 0xff52
	SymRight     Keysym = 0xff53
	SymDown      Keysym = 0xff54
	SymDelete    Keysym = 0xffff
	SymF1        Keysym = 0xffbe
	SymF12       Keysym = 0xffc9
)

// namedSyms maps spec names to keysyms for the names the parser accepts
// beyond single printable characters.
var namedSyms = map[string]Keysym{
	"space":     SymSpace,
	"backspace": SymBackSpace,
	"tab":       SymTab,
	"return":    SymReturn,
	"enter":     SymReturn,
	"escape":    SymEscape,
	"left":      SymLeft,
	"up":        SymUp,
	"right":     SymRight,
	"down":      SymDown,
	"delete":    SymDelete,
}

// SymFromName resolves a keysym spec name. Single printable ASCII characters
// map to their codepoint, "F1".."F12" to the function-key range, and a small
// set of named keys to their XKB values. Returns 0 if the name is unknown.
func SymFromName(name string) Keysym {
	if len(name) == 1 {
		c := name[0]
		if c >= 0x20 && c < 0x7f {
			return Keysym(c)
		}
		return 0
	}
	if sym, ok := namedSyms[lower(name)]; ok {
		return sym
	}
	if n, ok := functionKey(name); ok {
		return SymF1 + Keysym(n-1)
	}
	return 0
}

func functionKey(name string) (int, bool) {
	if len(name) < 2 || len(name) > 3 || (name[0] != 'F' && name[0] != 'f') {
		return 0, false
	}
	n := 0
	for i := 1; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return 0, false
		}
		n = n*10 + int(name[i]-'0')
	}
	if n < 1 || n > 12 {
		return 0, false
	}
	return n, true
}

func lower(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
