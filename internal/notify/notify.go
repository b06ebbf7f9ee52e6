// Package notify publishes engine events as JSON payloads to subscribers,
// in the shape IPC clients expect: an "input" event for device changes and
// a "binding" event when a configured binding fires.
package notify

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/tidwall/sjson"

	"waybind/internal/binding"
	"waybind/internal/keys"
)

// Change values carried by input events.
const (
	ChangeAdded      = "added"
	ChangeRemoved    = "removed"
	ChangeKeymap     = "xkb_keymap"
	ChangeLayout     = "xkb_layout"
	ChangeRepeatInfo = "repeat_info"
)

// Notifier fans engine events out to subscribers. Safe for concurrent use.
type Notifier struct {
	log zerolog.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]func(payload []byte)
}

// New creates a notifier with no subscribers.
func New(log zerolog.Logger) *Notifier {
	return &Notifier{
		log:  log.With().Str("component", "notify").Logger(),
		subs: map[int]func([]byte){},
	}
}

// Subscribe registers fn for every future event and returns a cancel
// function. Payloads are owned by the notifier; subscribers must not
// mutate them.
func (n *Notifier) Subscribe(fn func(payload []byte)) (cancel func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

func (n *Notifier) publish(payload []byte) {
	n.mu.Lock()
	subs := make([]func([]byte), 0, len(n.subs))
	for _, fn := range n.subs {
		subs = append(subs, fn)
	}
	n.mu.Unlock()

	n.log.Trace().RawJSON("event", payload).Msg("publishing event")
	for _, fn := range subs {
		fn(payload)
	}
}

// DeviceAdded publishes an input event for a new device.
func (n *Notifier) DeviceAdded(identifier string) {
	n.publish(inputEvent(ChangeAdded, identifier))
}

// DeviceRemoved publishes an input event for a removed device.
func (n *Notifier) DeviceRemoved(identifier string) {
	n.publish(inputEvent(ChangeRemoved, identifier))
}

// KeymapChanged publishes an input event after a device's keymap changed.
func (n *Notifier) KeymapChanged(identifier string) {
	n.publish(inputEvent(ChangeKeymap, identifier))
}

// LayoutChanged publishes an input event carrying the new active layout
// name.
func (n *Notifier) LayoutChanged(identifier, layout string) {
	p := inputEvent(ChangeLayout, identifier)
	p, _ = sjson.SetBytes(p, "input.xkb_active_layout_name", layout)
	n.publish(p)
}

// RepeatInfoChanged publishes an input event after repeat settings changed.
func (n *Notifier) RepeatInfoChanged(identifier string) {
	n.publish(inputEvent(ChangeRepeatInfo, identifier))
}

// BindingTriggered publishes a binding event for a fired binding.
func (n *Notifier) BindingTriggered(device string, b *binding.Binding) {
	p := []byte(`{}`)
	p, _ = sjson.SetBytes(p, "event", "binding")
	p, _ = sjson.SetBytes(p, "change", "run")
	p, _ = sjson.SetBytes(p, "binding.command", b.Command)
	p, _ = sjson.SetBytes(p, "binding.input", device)
	p, _ = sjson.SetBytes(p, "binding.release", b.OnRelease)
	mods := keys.ModifierNameList(b.Modifiers)
	if mods == nil {
		mods = []string{}
	}
	p, _ = sjson.SetBytes(p, "binding.event_state_mask", mods)
	ids := b.Keys
	if ids == nil {
		ids = []uint32{}
	}
	p, _ = sjson.SetBytes(p, "binding.keys", ids)
	n.publish(p)
}

func inputEvent(change, identifier string) []byte {
	p := []byte(`{}`)
	p, _ = sjson.SetBytes(p, "event", "input")
	p, _ = sjson.SetBytes(p, "change", change)
	p, _ = sjson.SetBytes(p, "input.identifier", identifier)
	p, _ = sjson.SetBytes(p, "input.type", "keyboard")
	return p
}
