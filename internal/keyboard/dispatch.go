package keyboard

import (
	"waybind/internal/binding"
	"waybind/internal/keys"
)

// HandleKey processes one raw key event through the full decision chain:
// shortcut-state updates, release-binding resolution, press-binding
// resolution with repeat arming, compositor fallback bindings, and
// balanced forwarding to the focused client.
func (k *Keyboard) HandleKey(ev KeyEvent) {
	table := k.host.Bindings()
	if table == nil {
		table = &binding.Table{}
	}
	locked := k.host.Locked()

	code := keys.FromEvdev(ev.Code)

	// Modifier bookkeeping happens before matching so the event's own
	// modifier press or release is visible to it, as the input stack's
	// state update would be.
	if k.updateModifiers(code, ev.Pressed) && !k.grouped {
		k.host.ForwardModifiers(k.info.Identifier, k.modifiers)
	}

	rawSyms, rawMods := k.rawSyms(code)
	translatedSyms, translatedMods := k.translatedSyms(code)
	codeMods := k.modifiers

	// Update all three shortcut states regardless of match outcome.
	k.stateKeycodes.Update(ev.Pressed, code, code, codeMods)
	for _, sym := range rawSyms {
		k.stateSymsRaw.Update(ev.Pressed, code, sym, codeMods)
	}
	for _, sym := range translatedSyms {
		k.stateSymsTranslated.Update(ev.Pressed, code, sym, codeMods)
	}

	handled := false

	// Identify the active release binding across all interpretations.
	released := k.resolve(table, codeMods, rawMods, translatedMods, true, locked)

	// Execute the stored held binding once it is no longer active.
	if k.heldBinding != nil && released != k.heldBinding && !ev.Pressed {
		k.host.Execute(k.heldBinding)
		handled = true
	}
	if released != k.heldBinding {
		k.heldBinding = nil
	}
	if released != nil && ev.Pressed {
		k.heldBinding = released
	}

	// Identify the active press binding.
	var pressed *binding.Binding
	if ev.Pressed {
		pressed = k.resolve(table, codeMods, rawMods, translatedMods, false, locked)
	}

	// Arm (or clear) key repeat before executing: the binding may tear
	// down this keyboard, so the timer must be settled first.
	if pressed != nil && k.repeatDelay > 0 {
		k.repeatBinding = pressed
		if err := k.repeatTimer.Update(k.repeatDelay); err != nil {
			k.log.Debug().Err(err).Msg("failed to set key repeat timer")
		}
	} else if k.repeatBinding != nil {
		k.DisarmRepeat()
	}

	if pressed != nil {
		k.host.Execute(pressed)
		handled = true
	}

	// Keyboards in a group only handle device-specific bindings; the
	// group aggregate covers everything else, including forwarding.
	if !handled && k.grouped {
		return
	}

	// Compositor bindings: translated keysyms first, then raw.
	if !handled && ev.Pressed {
		handled = k.host.CompositorBinding(translatedSyms, translatedMods)
	}
	if !handled && ev.Pressed {
		handled = k.host.CompositorBinding(rawSyms, rawMods)
	}

	// Forward to the focused client, keeping press/release pairs
	// balanced: a press is forwarded unless a binding consumed it, and a
	// release is forwarded only if its press was.
	if !handled || !ev.Pressed {
		pressedSent := k.statePressedSent.Update(ev.Pressed, code, code, 0)
		if pressedSent || ev.Pressed {
			k.host.ForwardKey(k.info.Identifier, ev)
		}
	}
}

// resolve runs the binding resolver once per interpretation, accumulating
// the best match across keycodes, raw keysyms, and translated keysyms.
func (k *Keyboard) resolve(table *binding.Table,
	codeMods, rawMods, translatedMods keys.Modifiers,
	release, locked bool) *binding.Binding {
	q := binding.Query{
		Release:    release,
		Locked:     locked,
		Input:      k.info.Identifier,
		ExactInput: k.grouped,
		Group:      k.effectiveLayout,
	}

	var best *binding.Binding
	q.Modifiers = codeMods
	best = binding.FindBest(k.log, &k.stateKeycodes, table.Keycode, best, q)
	q.Modifiers = rawMods
	best = binding.FindBest(k.log, &k.stateSymsRaw, table.Keysym, best, q)
	q.Modifiers = translatedMods
	best = binding.FindBest(k.log, &k.stateSymsTranslated, table.Keysym, best, q)
	return best
}
