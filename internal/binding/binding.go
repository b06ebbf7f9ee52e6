// Package binding defines configured keybindings and the resolver that
// matches them against shortcut state. Bindings are read-only to the
// engine; tables are immutable snapshots handed in by the configuration
// subsystem.
package binding

import (
	"strconv"
	"strings"

	"waybind/internal/keys"
)

// InputAny is the wildcard device target.
const InputAny = "*"

// GroupAny means the binding applies regardless of the active layout group.
const GroupAny = ^uint32(0)

// Binding is one configured rule mapping a key combination plus context to
// a command. The command text is opaque to this engine.
type Binding struct {
	// Keys are the required identifiers (keycodes or keysyms depending on
	// which table the binding lives in), sorted ascending.
	Keys []uint32

	// Modifiers must match the event's modifier mask exactly.
	Modifiers keys.Modifiers

	// OnRelease makes the binding fire when its combination is released.
	OnRelease bool

	// OnLock keeps the binding usable while seat input is exclusively
	// claimed elsewhere.
	OnLock bool

	// Input is the target device identifier, or InputAny.
	Input string

	// Group restricts the binding to a layout group index, or GroupAny.
	Group uint32

	// Order is the creation order, used for deterministic tie-breaking
	// and conflict diagnostics.
	Order int

	// Command is the action text, executed by a collaborator.
	Command string
}

// String renders the binding for diagnostics, e.g. "Mod4+Shift [2 keys] -> exec foo".
func (b *Binding) String() string {
	var sb strings.Builder
	if b.Modifiers != keys.ModNone {
		sb.WriteString(b.Modifiers.String())
		sb.WriteString("+")
	}
	sb.WriteString("[" + strconv.Itoa(len(b.Keys)) + " keys] -> ")
	sb.WriteString(b.Command)
	return sb.String()
}

// Table is an immutable snapshot of the configured bindings, split by
// identifier interpretation. Slice order is creation order.
type Table struct {
	// Keycode bindings match against physical keycodes.
	Keycode []*Binding

	// Keysym bindings match against raw and translated keysyms.
	Keysym []*Binding
}

// Empty reports whether the table holds no bindings.
func (t *Table) Empty() bool {
	return t == nil || (len(t.Keycode) == 0 && len(t.Keysym) == 0)
}
