package xkb

import (
	"testing"

	"waybind/internal/keys"
)

func TestStaticTranslation(t *testing.T) {
	km := USKeymap()
	keyA := keys.FromEvdev(30)
	key2 := keys.FromEvdev(3)

	tests := []struct {
		name  string
		code  keys.Keycode
		mods  keys.Modifiers
		want  keys.Keysym
		level int
	}{
		{"a unshifted", keyA, keys.ModNone, 'a', 0},
		{"a shifted", keyA, keys.ModShift, 'A', 1},
		{"2 unshifted", key2, keys.ModNone, '2', 0},
		{"2 shifted", key2, keys.ModShift, '@', 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level := km.Level(tt.code, 0, tt.mods)
			if level != tt.level {
				t.Errorf("Level = %d, want %d", level, tt.level)
			}
			syms := km.Syms(tt.code, 0, level)
			if len(syms) != 1 || syms[0] != tt.want {
				t.Errorf("Syms = %v, want [%#x]", syms, tt.want)
			}
		})
	}
}

func TestStaticConsumed(t *testing.T) {
	km := USKeymap()
	key2 := keys.FromEvdev(3)

	// Shift is consumed translating Shift+2 into "@".
	got := km.Consumed(key2, 0, keys.ModShift|keys.ModAlt)
	if got != keys.ModShift {
		t.Errorf("Consumed = %v, want ModShift", got)
	}

	// Nothing consumed without Shift held.
	if got := km.Consumed(key2, 0, keys.ModAlt); got != keys.ModNone {
		t.Errorf("Consumed = %v, want ModNone", got)
	}

	// Single-level keys consume nothing.
	if got := km.Consumed(keys.FromEvdev(1), 0, keys.ModShift); got != keys.ModNone {
		t.Errorf("Consumed(Esc) = %v, want ModNone", got)
	}
}

func TestStaticModifier(t *testing.T) {
	km := USKeymap()
	if got := km.Modifier(keys.FromEvdev(42)); got != keys.ModShift {
		t.Errorf("Modifier(LeftShift) = %v, want ModShift", got)
	}
	if got := km.Modifier(keys.FromEvdev(125)); got != keys.ModLogo {
		t.Errorf("Modifier(LeftMeta) = %v, want ModLogo", got)
	}
	if got := km.Modifier(keys.FromEvdev(30)); got != keys.ModNone {
		t.Errorf("Modifier(A) = %v, want ModNone", got)
	}
}

func TestEqualIsStructural(t *testing.T) {
	a := USKeymap()
	b := USKeymap()
	if a == b {
		t.Fatal("test requires two distinct instances")
	}
	if !Equal(a, b) {
		t.Error("independently built identical keymaps should compare equal")
	}
	if Equal(a, DEKeymap()) {
		t.Error("US and DE keymaps should differ")
	}
	if Equal(a, nil) {
		t.Error("keymap should not equal nil")
	}
	if !Equal(nil, nil) {
		t.Error("nil keymaps should compare equal")
	}
}

func TestSharedRefCount(t *testing.T) {
	freed := false
	s := NewShared(USKeymap(), func() { freed = true })

	s.Retain()
	s.Release()
	if freed {
		t.Fatal("closer ran while references remain")
	}
	s.Release()
	if !freed {
		t.Fatal("closer did not run on last release")
	}

	var nilShared *Shared
	nilShared.Release() // must not panic
}

func TestStaticCompiler(t *testing.T) {
	c := StaticCompiler{}

	km, err := c.Compile(RuleNames{})
	if err != nil {
		t.Fatalf("Compile(default) error = %v", err)
	}
	if km.LayoutName(0) != "English (US)" {
		t.Errorf("LayoutName = %q, want %q", km.LayoutName(0), "English (US)")
	}

	if _, err := c.Compile(RuleNames{Layout: "xx"}); err == nil {
		t.Error("Compile(unknown) should fail")
	}
}
