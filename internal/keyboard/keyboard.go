// Package keyboard implements the per-device shortcut state machine: it
// tracks the keystream under three interpretations, resolves bindings for
// presses, holds, releases, and repeats, and decides what gets forwarded
// to the focused client.
package keyboard

import (
	"time"

	"github.com/rs/zerolog"

	"waybind/internal/binding"
	"waybind/internal/keys"
	"waybind/internal/loop"
	"waybind/internal/shortcut"
	"waybind/internal/xkb"
)

// Default repeat parameters, used until configuration overrides them.
const (
	DefaultRepeatRate  = 25
	DefaultRepeatDelay = 600 * time.Millisecond
)

// KeyEvent is one raw physical key event as delivered by the input stack.
type KeyEvent struct {
	// TimeMsec is the event timestamp in milliseconds.
	TimeMsec uint32

	// Code is the raw evdev key code.
	Code uint32

	// Pressed is true for key-down, false for key-up.
	Pressed bool
}

// DeviceInfo identifies the physical (or synthetic) device behind a
// keyboard.
type DeviceInfo struct {
	Identifier string
}

// Host is the seat-side surface a keyboard dispatches through. The
// keyboard never owns binding tables, command execution, or the client
// connection; it only reports decisions.
type Host interface {
	// Bindings returns the current binding table snapshot.
	Bindings() *binding.Table

	// Locked reports whether seat input is exclusively claimed elsewhere.
	Locked() bool

	// Execute runs a matched binding's command.
	Execute(b *binding.Binding)

	// ForwardKey delivers a raw key event to the focused client.
	ForwardKey(device string, ev KeyEvent)

	// ForwardModifiers delivers the current modifier mask to the focused
	// client.
	ForwardModifiers(device string, mods keys.Modifiers)

	// CompositorBinding tries fixed compositor-level bindings (such as
	// virtual-terminal switching) against the given keysyms. It returns
	// true if one handled the event.
	CompositorBinding(syms []keys.Keysym, mods keys.Modifiers) bool

	// LayoutChanged reports that a keyboard's effective layout changed.
	LayoutChanged(device, layout string)
}

// Keyboard is the shortcut-matching state for one device. All methods
// must be called from the event-loop goroutine.
type Keyboard struct {
	log  zerolog.Logger
	host Host
	info DeviceInfo

	keymap          *xkb.Shared
	effectiveLayout uint32
	modifiers       keys.Modifiers
	grouped         bool

	stateKeycodes       shortcut.State[keys.Keycode]
	stateSymsRaw        shortcut.State[keys.Keysym]
	stateSymsTranslated shortcut.State[keys.Keysym]
	statePressedSent    shortcut.State[keys.Keycode]

	heldBinding   *binding.Binding
	repeatBinding *binding.Binding
	repeatTimer   loop.TimerSource
	repeatRate    int32
	repeatDelay   time.Duration
}

// New creates a keyboard for the given device. The keyboard owns a repeat
// timer source created from sched; Destroy releases it.
func New(host Host, info DeviceInfo, sched loop.Scheduler, log zerolog.Logger) *Keyboard {
	k := &Keyboard{
		log:         log.With().Str("device", info.Identifier).Logger(),
		host:        host,
		info:        info,
		repeatRate:  DefaultRepeatRate,
		repeatDelay: DefaultRepeatDelay,
	}
	k.repeatTimer = sched.AddTimer(k.handleRepeat)
	return k
}

// Identifier returns the device identifier.
func (k *Keyboard) Identifier() string {
	return k.info.Identifier
}

// Keymap returns the keyboard's shared keymap handle, or nil before
// configuration.
func (k *Keyboard) Keymap() *xkb.Shared {
	return k.keymap
}

// SetKeymap installs a keymap, taking ownership of the caller's
// reference. The previous keymap is released and the effective layout and
// modifier state reset.
func (k *Keyboard) SetKeymap(km *xkb.Shared) {
	k.keymap.Release()
	k.keymap = km
	k.effectiveLayout = 0
	k.modifiers = keys.ModNone
}

// SetGrouped marks whether this keyboard is a member of a keyboard group.
// Members only fire bindings with an exact device target and never
// forward events; the group aggregate does both on their behalf.
func (k *Keyboard) SetGrouped(grouped bool) {
	k.grouped = grouped
}

// Grouped reports group membership.
func (k *Keyboard) Grouped() bool {
	return k.grouped
}

// SetRepeatInfo sets the key-repeat rate (per second) and initial delay.
// Rate or delay changes take effect on the next timer expiry.
func (k *Keyboard) SetRepeatInfo(rate int32, delay time.Duration) {
	k.repeatRate = rate
	k.repeatDelay = delay
}

// EffectiveLayout returns the active layout group index.
func (k *Keyboard) EffectiveLayout() uint32 {
	return k.effectiveLayout
}

// SetLayout switches the active layout group and notifies the host when
// it actually changes.
func (k *Keyboard) SetLayout(layout uint32) {
	if layout == k.effectiveLayout || k.keymap == nil {
		return
	}
	if layout >= k.keymap.Layouts() {
		return
	}
	k.effectiveLayout = layout
	k.host.LayoutChanged(k.info.Identifier, k.keymap.LayoutName(layout))
}

// Modifiers returns the currently depressed modifier mask.
func (k *Keyboard) Modifiers() keys.Modifiers {
	return k.modifiers
}

// DisarmRepeat cancels any armed key repeat. Always legal, including
// during teardown.
func (k *Keyboard) DisarmRepeat() {
	k.repeatBinding = nil
	if err := k.repeatTimer.Update(0); err != nil {
		k.log.Debug().Err(err).Msg("failed to disarm key repeat timer")
	}
}

// handleRepeat runs on each repeat-timer expiry. The next tick is queued
// before the binding runs, so a binding that cancels repetition takes
// effect on the next tick rather than the current one.
func (k *Keyboard) handleRepeat() {
	if k.repeatBinding == nil {
		return
	}
	if k.repeatRate > 0 {
		if err := k.repeatTimer.Update(time.Second / time.Duration(k.repeatRate)); err != nil {
			k.log.Debug().Err(err).Msg("failed to update key repeat timer")
		}
	}
	k.host.Execute(k.repeatBinding)
}

// Destroy disarms the repeat timer before releasing any state a pending
// expiry could observe, then drops the keymap reference.
func (k *Keyboard) Destroy() {
	k.DisarmRepeat()
	k.repeatTimer.Remove()
	k.keymap.Release()
	k.keymap = nil
	k.heldBinding = nil
}
