package keys

import "strings"

// Modifiers is a bitset of simultaneously-held modifier keys.
// Bit positions match the wlroots/XKB real-modifier order.
type Modifiers uint32

const (
	// ModNone indicates no modifiers.
	ModNone Modifiers = 0

	// ModShift indicates the Shift keys.
	ModShift Modifiers = 1 << iota

	// ModCaps indicates the Caps Lock modifier ("Lock").
	ModCaps

	// ModCtrl indicates the Control keys.
	ModCtrl

	// ModAlt indicates the Alt keys (Mod1).
	ModAlt

	// ModMod2 indicates Mod2, conventionally Num Lock.
	ModMod2

	// ModMod3 indicates Mod3.
	ModMod3

	// ModLogo indicates the Logo/Super keys (Mod4).
	ModLogo

	// ModMod5 indicates Mod5.
	ModMod5
)

// Has returns true if m contains the specified modifier.
func (m Modifiers) Has(mod Modifiers) bool {
	return m&mod != 0
}

// With returns a new mask with the specified modifier added.
func (m Modifiers) With(mod Modifiers) Modifiers {
	return m | mod
}

// Without returns a new mask with the specified modifier removed.
func (m Modifiers) Without(mod Modifiers) Modifiers {
	return m &^ mod
}

// modifierNames pairs spec names with masks. Iteration order is significant:
// canonical XKB names come first so mask-to-name lookups return them.
var modifierNames = []struct {
	name string
	mod  Modifiers
}{
	{"Shift", ModShift},
	{"Lock", ModCaps},
	{"Control", ModCtrl},
	{"Ctrl", ModCtrl},
	{"Mod1", ModAlt},
	{"Alt", ModAlt},
	{"Mod2", ModMod2},
	{"Mod3", ModMod3},
	{"Mod4", ModLogo},
	{"Super", ModLogo},
	{"Mod5", ModMod5},
}

// ModifierByName returns the mask for a modifier spec name, matched
// case-insensitively. Returns ModNone if the name is not recognized.
func ModifierByName(name string) Modifiers {
	for _, m := range modifierNames {
		if strings.EqualFold(m.name, name) {
			return m.mod
		}
	}
	return ModNone
}

// ModifierName returns the canonical name for a single modifier mask,
// or "" if the mask is not a recognized modifier.
func ModifierName(mod Modifiers) string {
	for _, m := range modifierNames {
		if m.mod == mod {
			return m.name
		}
	}
	return ""
}

// ModifierNameList returns the canonical names of every modifier set in mask.
func ModifierNameList(mask Modifiers) []string {
	var names []string
	for _, m := range modifierNames {
		if mask.Has(m.mod) {
			names = append(names, m.name)
			mask ^= m.mod
		}
	}
	return names
}

// String returns the mask as a "+"-joined list of canonical names.
func (m Modifiers) String() string {
	if m == ModNone {
		return ""
	}
	return strings.Join(ModifierNameList(m), "+")
}
