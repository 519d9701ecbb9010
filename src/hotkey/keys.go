package hotkey

import (
	"fmt"
	"strings"

	"interactive-scraper/src/messages"
)

// Kind distinguishes key presses from key releases.
type Kind int

const (
	Press Kind = iota + 1
	Release
)

func (k Kind) String() string {
	switch k {
	case Press:
		return "Press"
	case Release:
		return "Release"
	default:
		return "Unknown"
	}
}

// RawEvent is a single key transition as reported by the OS hook.
// Code is a libuiohook virtual keycode, identical across platforms.
type RawEvent struct {
	Kind Kind
	Code uint16
}

// Key is the decoder's view of a physical key.
type Key int

const (
	KeyOther Key = iota
	KeyModifier
	KeyS
	KeyA
	KeyH
	KeyEsc
)

func (k Key) String() string {
	switch k {
	case KeyModifier:
		return "Modifier"
	case KeyS:
		return "S"
	case KeyA:
		return "A"
	case KeyH:
		return "H"
	case KeyEsc:
		return "Esc"
	default:
		return "Other"
	}
}

var commandKeys = []struct {
	name  string
	key   Key
	event messages.AppEvent
}{
	{"s", KeyS, messages.InitializeGadget},
	{"a", KeyA, messages.GetSelected},
	{"h", KeyH, messages.GetHelp},
	{"esc", KeyEsc, messages.Quit},
}

// Keymap classifies keycodes into the chord modifier, the command keys and everything else.
type Keymap struct {
	modifier string
	keys     map[uint16]Key
}

// NewKeymap builds the keymap for the given chord modifier ("Alt", "Ctrl", "Shift", "Win").
// Left and right variants of the modifier both count.
func NewKeymap(modifier string) (Keymap, error) {
	name, err := parseModifier(modifier)
	if err != nil {
		return Keymap{}, err
	}

	km := Keymap{modifier: name, keys: make(map[uint16]Key)}
	for _, code := range keyNameToKeycodes(name) {
		km.keys[code] = KeyModifier
	}
	for _, ck := range commandKeys {
		for _, code := range keyNameToKeycodes(ck.name) {
			km.keys[code] = ck.key
		}
	}
	return km, nil
}

// Classify maps a keycode to a Key. Unknown codes are KeyOther.
func (km Keymap) Classify(code uint16) Key {
	if k, ok := km.keys[code]; ok {
		return k
	}
	return KeyOther
}

// Chord renders a human readable chord such as "Alt+S".
func (km Keymap) Chord(k Key) string {
	return displayName(km.modifier) + "+" + k.String()
}

func commandFor(k Key) (messages.AppEvent, bool) {
	for _, ck := range commandKeys {
		if ck.key == k {
			return ck.event, true
		}
	}
	return 0, false
}

// parseModifier normalizes a modifier name like "Alt" or "Super".
func parseModifier(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "alt", "option":
		return "alt", nil
	case "ctrl", "control":
		return "ctrl", nil
	case "shift":
		return "shift", nil
	case "win", "cmd", "super", "meta":
		return "cmd", nil
	default:
		return "", fmt.Errorf("unsupported chord modifier %q (use Alt, Ctrl, Shift or Win)", name)
	}
}

func displayName(modifier string) string {
	switch modifier {
	case "alt":
		return "Alt"
	case "ctrl":
		return "Ctrl"
	case "shift":
		return "Shift"
	case "cmd":
		return "Win"
	default:
		return modifier
	}
}

// keyNameToKeycodes maps a key name to libuiohook virtual keycodes (VC_*).
// Modifiers return both the left and right variants.
func keyNameToKeycodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))

	switch keyName {
	// Modifier keys
	case "ctrl":
		return []uint16{0x001D, 0x0E1D} // VC_CONTROL_L, VC_CONTROL_R
	case "alt":
		return []uint16{0x0038, 0x0E38} // VC_ALT_L, VC_ALT_R
	case "shift":
		return []uint16{0x002A, 0x0036} // VC_SHIFT_L, VC_SHIFT_R
	case "cmd":
		return []uint16{0x0E5B, 0x0E5C} // VC_META_L, VC_META_R

	// Command keys
	case "s":
		return []uint16{0x001F}
	case "a":
		return []uint16{0x001E}
	case "h":
		return []uint16{0x0023}
	case "esc", "escape":
		return []uint16{0x0001} // VC_ESCAPE

	default:
		return nil
	}
}
