// Package seat owns the keyboards of one seat: device lifecycle, keymap
// compilation and grouping, binding-table snapshots, command execution,
// and delivery of unmatched events to the focused client.
package seat

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"waybind/internal/binding"
	"waybind/internal/config"
	"waybind/internal/group"
	"waybind/internal/keyboard"
	"waybind/internal/keys"
	"waybind/internal/loop"
	"waybind/internal/notify"
	"waybind/internal/xkb"
)

// Executor runs the command text of a fired binding.
type Executor interface {
	Execute(command string) error
}

// Client is the focused client surface unmatched input is forwarded to.
type Client interface {
	SendKey(device string, ev keyboard.KeyEvent)
	SendModifiers(device string, mods keys.Modifiers)
}

// Session switches virtual terminals for compositor-level bindings.
type Session interface {
	ChangeVT(vt uint) error
}

// Options configures a new seat. Scheduler and Executor are required;
// a nil Client drops forwarded events and a nil Session disables VT
// switching.
type Options struct {
	Scheduler loop.Scheduler
	Executor  Executor
	Client    Client
	Session   Session
	Compiler  xkb.Compiler
	Notifier  *notify.Notifier
	Config    *config.Config
	Log       zerolog.Logger
}

// Seat manages the keyboards attached to one seat. All methods must run
// on the event-loop goroutine.
type Seat struct {
	log      zerolog.Logger
	sched    loop.Scheduler
	exec     Executor
	client   Client
	session  Session
	compiler xkb.Compiler
	notifier *notify.Notifier

	cfg    *config.Config
	table  *binding.Table
	locked bool

	groups    *group.Registry
	keyboards map[string]*keyboard.Keyboard

	// activeDevice is the identifier events are currently dispatched
	// under, so binding notifications name the right input.
	activeDevice string
}

// New creates a seat and applies the initial configuration.
func New(opts Options) (*Seat, error) {
	if opts.Scheduler == nil {
		return nil, errors.New("seat: scheduler is required")
	}
	if opts.Executor == nil {
		return nil, errors.New("seat: executor is required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	table, err := cfg.BuildTable()
	if err != nil {
		return nil, fmt.Errorf("seat: %w", err)
	}
	compiler := opts.Compiler
	if compiler == nil {
		compiler = xkb.StaticCompiler{}
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.New(opts.Log)
	}

	s := &Seat{
		log:       opts.Log.With().Str("component", "seat").Logger(),
		sched:     opts.Scheduler,
		exec:      opts.Executor,
		client:    opts.Client,
		session:   opts.Session,
		compiler:  compiler,
		notifier:  notifier,
		cfg:       cfg,
		table:     table,
		keyboards: map[string]*keyboard.Keyboard{},
	}
	s.groups = group.NewRegistry(cfg.GroupingPolicy(), s.newAggregate, s.log)
	return s, nil
}

func (s *Seat) newAggregate(identifier string) *keyboard.Keyboard {
	return keyboard.New(s, keyboard.DeviceInfo{Identifier: identifier}, s.sched, s.log)
}

// AddDevice attaches a keyboard device and configures it.
func (s *Seat) AddDevice(info keyboard.DeviceInfo) error {
	if _, ok := s.keyboards[info.Identifier]; ok {
		return fmt.Errorf("seat: device %q already attached", info.Identifier)
	}
	kb := keyboard.New(s, info, s.sched, s.log)
	s.keyboards[info.Identifier] = kb
	s.log.Info().Str("device", info.Identifier).Msg("keyboard attached")
	s.configure(kb)
	s.notifier.DeviceAdded(info.Identifier)
	return nil
}

// RemoveDevice detaches a keyboard device, tearing down its group
// membership and repeat state.
func (s *Seat) RemoveDevice(identifier string) error {
	kb, ok := s.keyboards[identifier]
	if !ok {
		return fmt.Errorf("seat: unknown device %q", identifier)
	}
	s.groups.Remove(identifier)
	kb.Destroy()
	delete(s.keyboards, identifier)
	s.log.Info().Str("device", identifier).Msg("keyboard detached")
	s.notifier.DeviceRemoved(identifier)
	return nil
}

// Keyboard returns the keyboard for a device identifier, or nil.
func (s *Seat) Keyboard(identifier string) *keyboard.Keyboard {
	return s.keyboards[identifier]
}

// HandleKey dispatches one raw key event from the identified device. For
// grouped keyboards the event also runs through the group's aggregate,
// which carries the shared shortcut state and does the forwarding.
func (s *Seat) HandleKey(identifier string, ev keyboard.KeyEvent) {
	kb, ok := s.keyboards[identifier]
	if !ok {
		s.log.Warn().Str("device", identifier).Msg("key event from unknown device")
		return
	}
	s.activeDevice = identifier
	kb.HandleKey(ev)
	if g := s.groups.GroupOf(identifier); g != nil {
		s.activeDevice = g.Identifier()
		g.Aggregate().HandleKey(ev)
	}
}

// SetLocked marks seat input as exclusively claimed elsewhere. While
// locked, only bindings configured for lock state fire.
func (s *Seat) SetLocked(locked bool) {
	s.locked = locked
}

// Reconfigure applies a new configuration: binding table, grouping
// policy, and per-device settings.
func (s *Seat) Reconfigure(cfg *config.Config) error {
	table, err := cfg.BuildTable()
	if err != nil {
		return fmt.Errorf("seat: %w", err)
	}
	s.cfg = cfg
	s.table = table

	for _, id := range s.groups.SetPolicy(cfg.GroupingPolicy()) {
		if kb, ok := s.keyboards[id]; ok {
			kb.SetGrouped(false)
		}
	}
	for _, kb := range s.keyboards {
		s.configure(kb)
	}
	return nil
}

// SetBindings replaces the binding table directly, bypassing the
// configuration file. Used by IPC-style runtime changes.
func (s *Seat) SetBindings(table *binding.Table) {
	if table == nil {
		table = &binding.Table{}
	}
	s.table = table
}

// configure compiles and installs a device's keymap, regroups it, and
// applies repeat settings. Compilation falls back from the configured
// rules to the defaults; if both fail the previous keymap stays active.
func (s *Seat) configure(kb *keyboard.Keyboard) {
	id := kb.Identifier()
	in := s.cfg.InputFor(id)

	rules := xkb.RuleNames{
		Layout:  in.XKBLayout,
		Variant: in.XKBVariant,
		Options: in.XKBOptions,
	}
	km, err := s.compiler.Compile(rules)
	if err != nil {
		s.log.Error().Err(err).Str("device", id).
			Msg("keymap compilation failed, falling back to defaults")
		km, err = s.compiler.Compile(xkb.RuleNames{})
	}
	if err != nil {
		s.log.Error().Err(err).Str("device", id).
			Msg("default keymap compilation failed, keeping previous keymap")
	} else if kb.Keymap() != nil && xkb.Equal(kb.Keymap(), km) {
		// Structurally identical keymap; keep the installed one so group
		// membership and layout state survive.
	} else {
		kb.SetKeymap(xkb.NewShared(km, nil))
		s.notifier.KeymapChanged(id)
	}

	g := s.groups.Add(id, kb.Keymap())
	kb.SetGrouped(g != nil)

	kb.SetRepeatInfo(in.RepeatRateOrDefault(), in.RepeatDelay())
}

// Close detaches every keyboard and destroys all groups.
func (s *Seat) Close() {
	for id, kb := range s.keyboards {
		s.groups.Remove(id)
		kb.Destroy()
		delete(s.keyboards, id)
	}
	s.groups.Close()
}

// Bindings implements keyboard.Host.
func (s *Seat) Bindings() *binding.Table {
	return s.table
}

// Locked implements keyboard.Host.
func (s *Seat) Locked() bool {
	return s.locked
}

// Execute implements keyboard.Host. Command failures are logged, not
// propagated; a failing binding must not stall input dispatch.
func (s *Seat) Execute(b *binding.Binding) {
	s.log.Debug().
		Str("binding", b.String()).
		Str("device", s.activeDevice).
		Msg("running binding")
	s.notifier.BindingTriggered(s.activeDevice, b)
	if err := s.exec.Execute(b.Command); err != nil {
		s.log.Error().Err(err).Str("command", b.Command).Msg("binding command failed")
	}
}

// ForwardKey implements keyboard.Host.
func (s *Seat) ForwardKey(device string, ev keyboard.KeyEvent) {
	if s.client != nil {
		s.client.SendKey(device, ev)
	}
}

// ForwardModifiers implements keyboard.Host.
func (s *Seat) ForwardModifiers(device string, mods keys.Modifiers) {
	if s.client != nil {
		s.client.SendModifiers(device, mods)
	}
}

// CompositorBinding implements keyboard.Host. The only fixed compositor
// bindings are the virtual-terminal switch keysyms, honored regardless of
// held modifiers.
func (s *Seat) CompositorBinding(syms []keys.Keysym, _ keys.Modifiers) bool {
	if s.session == nil {
		return false
	}
	for _, sym := range syms {
		if sym < keys.SymSwitchVT1 || sym > keys.SymSwitchVT12 {
			continue
		}
		vt := uint(sym-keys.SymSwitchVT1) + 1
		if err := s.session.ChangeVT(vt); err != nil {
			s.log.Error().Err(err).Uint("vt", vt).Msg("VT switch failed")
		}
		return true
	}
	return false
}

// LayoutChanged implements keyboard.Host.
func (s *Seat) LayoutChanged(device, layout string) {
	s.notifier.LayoutChanged(device, layout)
}
