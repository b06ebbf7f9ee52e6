// Package group clusters keyboards that share a structurally equal keymap.
// Each group owns a synthetic aggregate keyboard that carries the shared
// shortcut state, so a chord split across two physical devices in the same
// group still matches.
package group

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"waybind/internal/keyboard"
	"waybind/internal/xkb"
)

// Policy selects how keyboards are assigned to groups.
type Policy int

const (
	// PolicyNone disables grouping entirely.
	PolicyNone Policy = iota

	// PolicyKeymap groups keyboards whose compiled keymaps are
	// structurally equal.
	PolicyKeymap
)

// String returns the configuration name of the policy.
func (p Policy) String() string {
	switch p {
	case PolicyNone:
		return "none"
	case PolicyKeymap:
		return "smart"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy maps a configuration string to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "none":
		return PolicyNone, nil
	case "", "smart":
		return PolicyKeymap, nil
	default:
		return PolicyNone, fmt.Errorf("group: unknown grouping policy %q", s)
	}
}

// Group is one set of keyboards sharing a keymap, plus the aggregate
// keyboard that matches shortcuts on their combined keystream.
type Group struct {
	id        uuid.UUID
	keymap    *xkb.Shared
	members   map[string]struct{}
	aggregate *keyboard.Keyboard
}

// Identifier returns the synthetic device identifier of the group's
// aggregate keyboard.
func (g *Group) Identifier() string {
	return "group:" + g.id.String()
}

// Aggregate returns the group's aggregate keyboard.
func (g *Group) Aggregate() *keyboard.Keyboard {
	return g.aggregate
}

// Size returns the number of member keyboards.
func (g *Group) Size() int {
	return len(g.members)
}

// Has reports whether the identified keyboard is a member.
func (g *Group) Has(identifier string) bool {
	_, ok := g.members[identifier]
	return ok
}

// AggregateFactory creates the aggregate keyboard for a new group. The
// seat supplies it so aggregates dispatch through the same host and event
// loop as physical keyboards.
type AggregateFactory func(identifier string) *keyboard.Keyboard

// Registry tracks all keyboard groups on a seat.
type Registry struct {
	log     zerolog.Logger
	policy  Policy
	factory AggregateFactory
	groups  []*Group
}

// NewRegistry creates an empty registry.
func NewRegistry(policy Policy, factory AggregateFactory, log zerolog.Logger) *Registry {
	return &Registry{
		log:     log.With().Str("component", "group").Logger(),
		policy:  policy,
		factory: factory,
	}
}

// Policy returns the active grouping policy.
func (r *Registry) Policy() Policy {
	return r.policy
}

// SetPolicy switches the grouping policy. Switching to PolicyNone
// dissolves every group; the returned identifiers are the members that
// lost their group and must be marked ungrouped by the caller.
func (r *Registry) SetPolicy(p Policy) []string {
	if p == r.policy {
		return nil
	}
	r.policy = p
	if p != PolicyNone {
		return nil
	}
	var orphaned []string
	for _, g := range r.groups {
		for id := range g.members {
			orphaned = append(orphaned, id)
		}
		r.destroy(g)
	}
	r.groups = nil
	return orphaned
}

// Add places the identified keyboard into the group matching its keymap,
// creating the group if needed. It returns nil when grouping is disabled.
// A keyboard already in a group is moved if its keymap no longer matches.
func (r *Registry) Add(identifier string, km *xkb.Shared) *Group {
	if r.policy == PolicyNone || km == nil {
		r.Remove(identifier)
		return nil
	}
	if g := r.GroupOf(identifier); g != nil {
		if xkb.Equal(g.keymap, km) {
			return g
		}
		r.Remove(identifier)
	}

	for _, g := range r.groups {
		if xkb.Equal(g.keymap, km) {
			g.members[identifier] = struct{}{}
			r.log.Debug().
				Str("device", identifier).
				Str("group", g.Identifier()).
				Msg("keyboard joined group")
			return g
		}
	}

	g := &Group{
		id:      uuid.New(),
		keymap:  km.Retain(),
		members: map[string]struct{}{identifier: {}},
	}
	g.aggregate = r.factory(g.Identifier())
	g.aggregate.SetKeymap(km.Retain())
	r.groups = append(r.groups, g)
	r.log.Debug().
		Str("device", identifier).
		Str("group", g.Identifier()).
		Msg("created keyboard group")
	return g
}

// Remove takes the identified keyboard out of its group, destroying the
// group once its last member leaves. It reports whether the keyboard was
// grouped.
func (r *Registry) Remove(identifier string) bool {
	for i, g := range r.groups {
		if _, ok := g.members[identifier]; !ok {
			continue
		}
		delete(g.members, identifier)
		if len(g.members) == 0 {
			r.groups = append(r.groups[:i], r.groups[i+1:]...)
			r.destroy(g)
		}
		return true
	}
	return false
}

// GroupOf returns the group containing the identified keyboard, or nil.
func (r *Registry) GroupOf(identifier string) *Group {
	for _, g := range r.groups {
		if _, ok := g.members[identifier]; ok {
			return g
		}
	}
	return nil
}

// Groups returns the current groups. The slice must not be mutated.
func (r *Registry) Groups() []*Group {
	return r.groups
}

// Close destroys every group regardless of membership.
func (r *Registry) Close() {
	for _, g := range r.groups {
		r.destroy(g)
	}
	r.groups = nil
}

func (r *Registry) destroy(g *Group) {
	r.log.Debug().Str("group", g.Identifier()).Msg("destroying keyboard group")
	g.aggregate.Destroy()
	g.keymap.Release()
	g.keymap = nil
}
