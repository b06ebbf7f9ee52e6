package binding

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"waybind/internal/keys"
)

// ParseKeysymSpec parses a keysym combination spec like "Mod4+Shift+Return"
// into a modifier mask and a sorted list of keysyms. At least one
// non-modifier key is required.
func ParseKeysymSpec(spec string) (keys.Modifiers, []uint32, error) {
	mods, parts, err := splitSpec(spec)
	if err != nil {
		return 0, nil, err
	}

	ids := make([]uint32, 0, len(parts))
	for _, p := range parts {
		sym := keys.SymFromName(p)
		if sym == 0 {
			return 0, nil, fmt.Errorf("unknown key %q in binding %q", p, spec)
		}
		ids = append(ids, uint32(sym))
	}
	if len(ids) == 0 {
		return 0, nil, fmt.Errorf("binding %q has no keys", spec)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return mods, ids, nil
}

// ParseKeycodeSpec parses a keycode combination spec like "Mod4+24" into a
// modifier mask and a sorted list of XKB keycodes.
func ParseKeycodeSpec(spec string) (keys.Modifiers, []uint32, error) {
	mods, parts, err := splitSpec(spec)
	if err != nil {
		return 0, nil, err
	}

	ids := make([]uint32, 0, len(parts))
	for _, p := range parts {
		code, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return 0, nil, fmt.Errorf("invalid keycode %q in binding %q", p, spec)
		}
		ids = append(ids, uint32(code))
	}
	if len(ids) == 0 {
		return 0, nil, fmt.Errorf("binding %q has no keys", spec)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return mods, ids, nil
}

// splitSpec separates the modifier tokens of a "+"-joined spec from the
// remaining key tokens.
func splitSpec(spec string) (keys.Modifiers, []string, error) {
	if strings.TrimSpace(spec) == "" {
		return 0, nil, fmt.Errorf("empty binding spec")
	}

	var mods keys.Modifiers
	var rest []string
	for _, part := range strings.Split(spec, "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			return 0, nil, fmt.Errorf("empty token in binding %q", spec)
		}
		// Single characters are always keys; "s" must not become Shift.
		if len(part) > 1 {
			if m := keys.ModifierByName(part); m != keys.ModNone {
				mods = mods.With(m)
				continue
			}
		}
		rest = append(rest, part)
	}
	return mods, rest, nil
}
