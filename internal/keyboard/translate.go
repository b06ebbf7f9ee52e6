package keyboard

import "waybind/internal/keys"

// translatedSyms returns the keysyms for a keycode with layout and level
// translation applied, alongside the modifier mask with layout-consumed
// modifiers cleared. On a US layout, Alt+Shift+2 comes back as "@" with
// only Alt still set.
func (k *Keyboard) translatedSyms(code keys.Keycode) ([]keys.Keysym, keys.Modifiers) {
	mods := k.modifiers
	if k.keymap == nil {
		return nil, mods
	}
	layout := k.effectiveLayout
	level := k.keymap.Level(code, layout, mods)
	syms := k.keymap.Syms(code, layout, level)
	consumed := k.keymap.Consumed(code, layout, mods)
	return syms, mods &^ consumed
}

// rawSyms returns the keysyms at level 0 of the active layout, ignoring
// held modifiers, with the full modifier mask. This is what lets a
// binding written as Alt+Shift+2 still match.
func (k *Keyboard) rawSyms(code keys.Keycode) ([]keys.Keysym, keys.Modifiers) {
	mods := k.modifiers
	if k.keymap == nil {
		return nil, mods
	}
	return k.keymap.Syms(code, k.effectiveLayout, 0), mods
}

// updateModifiers folds a modifier key event into the depressed mask and
// reports whether the mask changed.
func (k *Keyboard) updateModifiers(code keys.Keycode, pressed bool) bool {
	if k.keymap == nil {
		return false
	}
	bit := k.keymap.Modifier(code)
	if bit == keys.ModNone {
		return false
	}
	old := k.modifiers
	if pressed {
		k.modifiers = k.modifiers.With(bit)
	} else {
		k.modifiers = k.modifiers.Without(bit)
	}
	return k.modifiers != old
}
