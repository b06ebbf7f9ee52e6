package binding

import (
	"github.com/rs/zerolog"

	"waybind/internal/keys"
	"waybind/internal/shortcut"
)

// Query carries the per-event context a resolution runs under.
type Query struct {
	// Modifiers is the modifier mask for this interpretation of the event.
	Modifiers keys.Modifiers

	// Release selects release-triggered bindings.
	Release bool

	// Locked is true while seat input is exclusively claimed elsewhere;
	// only OnLock bindings remain usable.
	Locked bool

	// Input is the identifier of the device the event came from.
	Input string

	// ExactInput requires the binding's target to name the device
	// exactly. Set for keyboards that belong to a group, so wildcard
	// bindings fire once via the group aggregate instead of once per
	// member device.
	ExactInput bool

	// Group is the active layout group index.
	Group uint32
}

// FindBest scans bindings in table order for the best match against the
// shortcut state and returns it, or current when nothing better is found.
//
// Callers accumulate across interpretations: the result of one call is
// passed as current to the next, so a match under any interpretation can
// win while the same tie-break rules apply across all of them.
//
// A binding is eligible when its modifier mask equals the query mask
// exactly, its release flag matches, it is at least as lock-permissive as
// the query requires, its layout group (if set) equals the active group,
// and its input matches the device (wildcard targets are excluded when the
// query demands an exact input). It matches when the pressed set equals
// its key list position for position, or when it wants a single key equal
// to the newest press.
//
// Among several matches the earlier-configured binding wins unless the
// candidate is strictly more specific: exact device target first, then
// matching layout group, then matching lock state. Two equally specific
// matches are a configuration conflict and are logged. A binding matching
// the device, lock state, and group perfectly ends the scan.
func FindBest[T ~uint32](log zerolog.Logger, state *shortcut.State[T],
	table []*Binding, current *Binding, q Query) *Binding {
	for _, b := range table {
		if q.Modifiers != b.Modifiers ||
			q.Release != b.OnRelease ||
			(q.Locked && !b.OnLock) ||
			(b.Group != GroupAny && b.Group != q.Group) ||
			(b.Input != q.Input && (b.Input != InputAny || q.ExactInput)) {
			continue
		}

		match := false
		if state.Len() == len(b.Keys) {
			match = true
			for i, want := range b.Keys {
				if want != uint32(state.At(i)) {
					match = false
					break
				}
			}
		} else if len(b.Keys) == 1 {
			// No exact multi-key match; try single-key bindings against
			// the newest press even while unrelated keys are held.
			match = uint32(state.Current()) == b.Keys[0]
		}
		if !match {
			continue
		}

		if current != nil {
			if current == b {
				continue
			}

			currentInput := current.Input == q.Input
			currentGroupSet := current.Group != GroupAny
			candidateInput := b.Input == q.Input
			candidateGroupSet := b.Group != GroupAny

			if currentInput == candidateInput &&
				current.OnLock == b.OnLock &&
				currentGroupSet == candidateGroupSet {
				log.Debug().
					Int("binding", current.Order).
					Int("conflict", b.Order).
					Msg("encountered conflicting bindings")
				continue
			}

			if currentInput && !candidateInput {
				continue // Prefer the correct input
			}

			if currentInput == candidateInput && current.Group == q.Group {
				continue // Prefer correct group for matching inputs
			}

			if currentInput == candidateInput &&
				currentGroupSet == candidateGroupSet &&
				current.OnLock == q.Locked {
				continue // Prefer correct lock state for matching input+group
			}
		}

		current = b
		if current.Input == q.Input &&
			current.OnLock == q.Locked &&
			current.Group == q.Group {
			return current // Perfect match, quit searching
		}
	}

	return current
}
