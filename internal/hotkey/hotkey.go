package hotkey

import (
	"fmt"
	"strings"
)

// Modifier flags and virtual-key codes per the Win32 RegisterHotKey
// contract. Declared here, outside the windows build tag, so parsing is
// testable everywhere.
const (
	modAlt     = 0x0001
	modControl = 0x0002
	modShift   = 0x0004
	modWin     = 0x0008
)

var keyCodes = map[string]uint{
	"space":     0x20,
	"enter":     0x0D,
	"tab":       0x09,
	"escape":    0x1B,
	"esc":       0x1B,
	"backspace": 0x08,
	"insert":    0x2D,
	"delete":    0x2E,
	"home":      0x24,
	"end":       0x23,
	"pageup":    0x21,
	"pagedown":  0x22,
	"up":        0x26,
	"down":      0x28,
	"left":      0x25,
	"right":     0x27,
	"f1":        0x70, "f2": 0x71, "f3": 0x72, "f4": 0x73,
	"f5": 0x74, "f6": 0x75, "f7": 0x76, "f8": 0x77,
	"f9": 0x78, "f10": 0x79, "f11": 0x7A, "f12": 0x7B,
}

// parseHotkey turns a "ctrl+shift+space" style string into the Win32
// modifier mask and virtual-key code. The last segment is the key;
// everything before it must be a modifier.
func parseHotkey(spec string) (mod uint, vk uint, err error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(spec)), "+")
	if len(parts) == 0 || parts[0] == "" {
		return 0, 0, fmt.Errorf("empty hotkey")
	}

	for _, part := range parts[:len(parts)-1] {
		switch strings.TrimSpace(part) {
		case "ctrl", "control":
			mod |= modControl
		case "shift":
			mod |= modShift
		case "alt":
			mod |= modAlt
		case "win", "super", "meta":
			mod |= modWin
		default:
			return 0, 0, fmt.Errorf("unknown modifier %q in hotkey %q", part, spec)
		}
	}

	key := strings.TrimSpace(parts[len(parts)-1])
	if code, ok := keyCodes[key]; ok {
		return mod, code, nil
	}
	if len(key) == 1 {
		c := key[0]
		switch {
		case c >= 'a' && c <= 'z':
			return mod, uint(c - 'a' + 'A'), nil
		case c >= '0' && c <= '9':
			return mod, uint(c), nil
		}
	}
	return 0, 0, fmt.Errorf("unknown key %q in hotkey %q", key, spec)
}
