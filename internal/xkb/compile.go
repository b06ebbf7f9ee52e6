package xkb

import (
	"fmt"

	"waybind/internal/keys"
)

// RuleNames selects a keymap to compile, mirroring the XKB rule-names
// tuple. Empty fields fall back to defaults.
type RuleNames struct {
	Layout  string
	Variant string
	Options string
}

// Compiler compiles rule names into a keymap. The real implementation
// belongs to an external collaborator; StaticCompiler serves tests and
// simple frontends.
type Compiler interface {
	Compile(rules RuleNames) (Keymap, error)
}

// StaticCompiler compiles the built-in static layouts.
type StaticCompiler struct{}

// Compile implements Compiler. An empty layout name compiles the default
// US layout.
func (StaticCompiler) Compile(rules RuleNames) (Keymap, error) {
	switch rules.Layout {
	case "", "us":
		return USKeymap(), nil
	case "de":
		return DEKeymap(), nil
	default:
		return nil, fmt.Errorf("xkb: unknown layout %q", rules.Layout)
	}
}

// evdev key codes used by the built-in layouts.
const (
	codeEsc        = 1
	codeBackspace  = 14
	codeTab        = 15
	codeEnter      = 28
	codeLeftCtrl   = 29
	codeLeftShift  = 42
	codeRightShift = 54
	codeLeftAlt    = 56
	codeSpace      = 57
	codeCapsLock   = 58
	codeRightCtrl  = 97
	codeRightAlt   = 100
	codeLeftMeta   = 125
	codeRightMeta  = 126
)

var letterRows = []struct {
	base rune
	row  string
	code uint32
}{
	{0, "qwertyuiop", 16},
	{0, "asdfghjkl", 30},
	{0, "zxcvbnm", 44},
}

var digitShift = []rune{')', '!', '@', '#', '$', '%', '^', '&', '*', '('}

func usKeys() map[keys.Keycode]Key {
	m := map[keys.Keycode]Key{
		keys.FromEvdev(codeEsc):       {Levels: [][]keys.Keysym{{keys.SymEscape}}},
		keys.FromEvdev(codeBackspace): {Levels: [][]keys.Keysym{{keys.SymBackSpace}}},
		keys.FromEvdev(codeTab):       {Levels: [][]keys.Keysym{{keys.SymTab}}},
		keys.FromEvdev(codeEnter):     {Levels: [][]keys.Keysym{{keys.SymReturn}}},
		keys.FromEvdev(codeSpace):     {Levels: [][]keys.Keysym{{keys.SymSpace}}},

		keys.FromEvdev(codeLeftShift):  {Modifier: keys.ModShift},
		keys.FromEvdev(codeRightShift): {Modifier: keys.ModShift},
		keys.FromEvdev(codeLeftCtrl):   {Modifier: keys.ModCtrl},
		keys.FromEvdev(codeRightCtrl):  {Modifier: keys.ModCtrl},
		keys.FromEvdev(codeLeftAlt):    {Modifier: keys.ModAlt},
		keys.FromEvdev(codeRightAlt):   {Modifier: keys.ModAlt},
		keys.FromEvdev(codeLeftMeta):   {Modifier: keys.ModLogo},
		keys.FromEvdev(codeRightMeta):  {Modifier: keys.ModLogo},
		keys.FromEvdev(codeCapsLock):   {Modifier: keys.ModCaps},
	}

	for _, row := range letterRows {
		for i, r := range row.row {
			m[keys.FromEvdev(row.code+uint32(i))] = Key{Levels: [][]keys.Keysym{
				{keys.Keysym(r)},
				{keys.Keysym(r - 'a' + 'A')},
			}}
		}
	}

	// Digit row: evdev codes 2..11 are 1..9,0.
	for i := 0; i < 10; i++ {
		digit := rune('1' + i)
		if i == 9 {
			digit = '0'
		}
		m[keys.FromEvdev(uint32(2+i))] = Key{Levels: [][]keys.Keysym{
			{keys.Keysym(digit)},
			{keys.Keysym(digitShift[digit-'0'])},
		}}
	}

	// Function keys F1..F10 (59..68), F11 (87), F12 (88).
	for i := 0; i < 10; i++ {
		m[keys.FromEvdev(uint32(59+i))] = Key{Levels: [][]keys.Keysym{{keys.SymF1 + keys.Keysym(i)}}}
	}
	m[keys.FromEvdev(87)] = Key{Levels: [][]keys.Keysym{{keys.SymF1 + 10}}}
	m[keys.FromEvdev(88)] = Key{Levels: [][]keys.Keysym{{keys.SymF1 + 11}}}

	return m
}

// USKeymap returns the built-in US layout.
func USKeymap() *Static {
	return NewStatic(Layout{Name: "English (US)", Keys: usKeys()})
}

// DEKeymap returns a minimal German layout: the US table with Y and Z
// swapped. Enough to exercise keymap-inequality paths.
func DEKeymap() *Static {
	m := usKeys()
	y := keys.FromEvdev(21)
	z := keys.FromEvdev(44)
	m[y], m[z] = m[z], m[y]
	return NewStatic(Layout{Name: "German", Keys: m})
}
