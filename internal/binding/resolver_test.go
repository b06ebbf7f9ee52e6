package binding

import (
	"testing"

	"github.com/rs/zerolog"

	"waybind/internal/keys"
	"waybind/internal/shortcut"
)

var nop = zerolog.Nop()

// press builds a shortcut state by pressing the given identifiers in
// order, using the identifier value as its own keycode.
func press(ids ...uint32) *shortcut.State[keys.Keysym] {
	var s shortcut.State[keys.Keysym]
	for _, id := range ids {
		s.Update(true, keys.Keycode(id), keys.Keysym(id), 0)
	}
	return &s
}

func query() Query {
	return Query{Input: "kbd0", Group: 0}
}

func TestSingleKeyMatchesNewestPress(t *testing.T) {
	bindA := &Binding{Keys: []uint32{'a'}, Input: InputAny, Group: GroupAny, Order: 0}
	table := []*Binding{bindA}

	if got := FindBest(nop, press('a'), table, nil, query()); got != bindA {
		t.Errorf("FindBest = %v, want binding a", got)
	}

	// Still fires while an unrelated key is held, as long as a is the
	// newest press.
	if got := FindBest(nop, press('x', 'a'), table, nil, query()); got != bindA {
		t.Errorf("FindBest with x held = %v, want binding a", got)
	}

	// Does not fire when another key was pressed after a.
	if got := FindBest(nop, press('a', 'x'), table, nil, query()); got != nil {
		t.Errorf("FindBest = %v, want nil when a is not newest", got)
	}
}

func TestMultiKeyShadowsSingleKey(t *testing.T) {
	bindA := &Binding{Keys: []uint32{'a'}, Input: InputAny, Group: GroupAny, Order: 0}
	bindAB := &Binding{Keys: []uint32{'a', 'b'}, Input: InputAny, Group: GroupAny, Order: 1}
	table := []*Binding{bindA, bindAB}

	// a alone: single-key binding fires.
	if got := FindBest(nop, press('a'), table, nil, query()); got != bindA {
		t.Errorf("FindBest(a) = %v, want binding a", got)
	}

	// a and b held: the exact two-key match wins; the single-key binding
	// no longer matches because b is the newest press.
	if got := FindBest(nop, press('a', 'b'), table, nil, query()); got != bindAB {
		t.Errorf("FindBest(a+b) = %v, want binding a+b", got)
	}
}

func TestModifierMaskMustMatchExactly(t *testing.T) {
	b := &Binding{Keys: []uint32{'q'}, Modifiers: keys.ModLogo, Input: InputAny, Group: GroupAny}
	table := []*Binding{b}

	q := query()
	q.Modifiers = keys.ModLogo
	if got := FindBest(nop, press('q'), table, nil, q); got != b {
		t.Errorf("FindBest = %v, want binding", got)
	}

	// Superset of the required mask does not match.
	q.Modifiers = keys.ModLogo | keys.ModShift
	if got := FindBest(nop, press('q'), table, nil, q); got != nil {
		t.Errorf("FindBest with extra modifier = %v, want nil", got)
	}

	// Subset does not match either.
	q.Modifiers = keys.ModNone
	if got := FindBest(nop, press('q'), table, nil, q); got != nil {
		t.Errorf("FindBest without modifier = %v, want nil", got)
	}
}

func TestReleaseFlagFiltering(t *testing.T) {
	pressBind := &Binding{Keys: []uint32{'a'}, Input: InputAny, Group: GroupAny, Order: 0}
	releaseBind := &Binding{Keys: []uint32{'a'}, OnRelease: true, Input: InputAny, Group: GroupAny, Order: 1}
	table := []*Binding{pressBind, releaseBind}

	q := query()
	if got := FindBest(nop, press('a'), table, nil, q); got != pressBind {
		t.Errorf("press query = %v, want press binding", got)
	}
	q.Release = true
	if got := FindBest(nop, press('a'), table, nil, q); got != releaseBind {
		t.Errorf("release query = %v, want release binding", got)
	}
}

func TestLockedFiltering(t *testing.T) {
	normal := &Binding{Keys: []uint32{'a'}, Input: InputAny, Group: GroupAny, Order: 0}
	locked := &Binding{Keys: []uint32{'a'}, OnLock: true, Input: InputAny, Group: GroupAny, Order: 1}
	table := []*Binding{normal, locked}

	q := query()
	q.Locked = true
	if got := FindBest(nop, press('a'), table, nil, q); got != locked {
		t.Errorf("locked query = %v, want lock-usable binding", got)
	}

	// Unlocked input keeps the first (unlocked) binding despite the
	// lock-usable one also matching.
	q.Locked = false
	if got := FindBest(nop, press('a'), table, nil, q); got != normal {
		t.Errorf("unlocked query = %v, want unlocked binding", got)
	}
}

func TestExactInputPreferredOverWildcard(t *testing.T) {
	wildcard := &Binding{Keys: []uint32{'a'}, Input: InputAny, Group: GroupAny, Order: 0}
	exact := &Binding{Keys: []uint32{'a'}, Input: "kbd0", Group: GroupAny, Order: 1}
	table := []*Binding{wildcard, exact}

	if got := FindBest(nop, press('a'), table, nil, query()); got != exact {
		t.Errorf("FindBest = %v, want exact-input binding", got)
	}

	// Scan order must not matter for this preference.
	table = []*Binding{exact, wildcard}
	if got := FindBest(nop, press('a'), table, nil, query()); got != exact {
		t.Errorf("FindBest (reordered) = %v, want exact-input binding", got)
	}
}

func TestExactInputRequiredForGroupMembers(t *testing.T) {
	wildcard := &Binding{Keys: []uint32{'a'}, Input: InputAny, Group: GroupAny, Order: 0}
	exact := &Binding{Keys: []uint32{'a'}, Input: "kbd0", Group: GroupAny, Order: 1}
	table := []*Binding{wildcard, exact}

	q := query()
	q.ExactInput = true
	if got := FindBest(nop, press('a'), table, nil, q); got != exact {
		t.Errorf("FindBest = %v, want exact-input binding", got)
	}

	// With only a wildcard available, a group member matches nothing.
	q.Input = "kbd1"
	if got := FindBest(nop, press('a'), table, nil, q); got != nil {
		t.Errorf("FindBest = %v, want nil for group member vs wildcard", got)
	}
}

func TestGroupFiltering(t *testing.T) {
	group1 := &Binding{Keys: []uint32{'a'}, Input: InputAny, Group: 1, Order: 0}
	anyGroup := &Binding{Keys: []uint32{'a'}, Input: InputAny, Group: GroupAny, Order: 1}
	table := []*Binding{group1, anyGroup}

	q := query()
	q.Group = 1
	if got := FindBest(nop, press('a'), table, nil, q); got != group1 {
		t.Errorf("group 1 query = %v, want group-specific binding", got)
	}

	q.Group = 0
	if got := FindBest(nop, press('a'), table, nil, q); got != anyGroup {
		t.Errorf("group 0 query = %v, want group-agnostic binding", got)
	}
}

func TestConflictKeepsFirstByOrder(t *testing.T) {
	first := &Binding{Keys: []uint32{'a'}, Input: InputAny, Group: GroupAny, Order: 0}
	second := &Binding{Keys: []uint32{'a'}, Input: InputAny, Group: GroupAny, Order: 1}
	table := []*Binding{first, second}

	if got := FindBest(nop, press('a'), table, nil, query()); got != first {
		t.Errorf("FindBest = %v, want first equally-specific binding", got)
	}
}

func TestAccumulationAcrossInterpretations(t *testing.T) {
	symBind := &Binding{Keys: []uint32{'a'}, Input: InputAny, Group: GroupAny, Order: 0}
	exactCode := &Binding{Keys: []uint32{38}, Input: "kbd0", Group: GroupAny, Order: 1}

	// First interpretation (keysyms) finds the wildcard binding.
	current := FindBest(nop, press('a'), []*Binding{symBind}, nil, query())
	if current != symBind {
		t.Fatalf("first pass = %v, want keysym binding", current)
	}

	// Second interpretation (keycodes) upgrades to the exact-input match.
	var codeState shortcut.State[keys.Keycode]
	codeState.Update(true, 38, 38, 0)
	current = FindBest(nop, &codeState, []*Binding{exactCode}, current, query())
	if current != exactCode {
		t.Errorf("second pass = %v, want exact keycode binding", current)
	}
}

func TestAlreadyChosenBindingIsSkipped(t *testing.T) {
	b := &Binding{Keys: []uint32{'a'}, Input: InputAny, Group: GroupAny, Order: 0}
	table := []*Binding{b}

	got := FindBest(nop, press('a'), table, b, query())
	if got != b {
		t.Errorf("FindBest = %v, want same binding", got)
	}
}
