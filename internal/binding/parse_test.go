package binding

import (
	"testing"

	"waybind/internal/keys"
)

func TestParseKeysymSpec(t *testing.T) {
	tests := []struct {
		spec     string
		wantMods keys.Modifiers
		wantKeys []uint32
		wantErr  bool
	}{
		{"Mod4+Return", keys.ModLogo, []uint32{uint32(keys.SymReturn)}, false},
		{"Mod4+Shift+q", keys.ModLogo | keys.ModShift, []uint32{'q'}, false},
		{"a", keys.ModNone, []uint32{'a'}, false},
		// Multi-key chords come back sorted by keysym.
		{"b+a", keys.ModNone, []uint32{'a', 'b'}, false},
		// A single character is always a key, never a modifier alias.
		{"s", keys.ModNone, []uint32{'s'}, false},
		{"Ctrl+Alt+F2", keys.ModCtrl | keys.ModAlt, []uint32{uint32(keys.SymF1) + 1}, false},
		{"Mod4+NoSuchKey", 0, nil, true},
		{"Mod4", 0, nil, true}, // modifiers only, no key
		{"", 0, nil, true},
		{"a++b", 0, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			mods, ids, err := ParseKeysymSpec(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if mods != tt.wantMods {
				t.Errorf("mods = %v, want %v", mods, tt.wantMods)
			}
			if len(ids) != len(tt.wantKeys) {
				t.Fatalf("keys = %v, want %v", ids, tt.wantKeys)
			}
			for i := range ids {
				if ids[i] != tt.wantKeys[i] {
					t.Errorf("keys = %v, want %v", ids, tt.wantKeys)
					break
				}
			}
		})
	}
}

func TestParseKeycodeSpec(t *testing.T) {
	mods, ids, err := ParseKeycodeSpec("Mod1+38+24")
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if mods != keys.ModAlt {
		t.Errorf("mods = %v, want Alt", mods)
	}
	if len(ids) != 2 || ids[0] != 24 || ids[1] != 38 {
		t.Errorf("keys = %v, want sorted [24 38]", ids)
	}

	if _, _, err := ParseKeycodeSpec("Mod1+notanumber"); err == nil {
		t.Error("expected error for non-numeric keycode")
	}
}
