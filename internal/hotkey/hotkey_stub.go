//go:build !windows

package hotkey

import "fmt"

// Register validates spec but cannot bind a global hotkey on this
// platform; the UI toggle button remains the only trigger.
func Register(spec string, handler func()) error {
	if _, _, err := parseHotkey(spec); err != nil {
		return err
	}
	return fmt.Errorf("global hotkeys are not supported on this platform")
}

// Stop is a no-op where no hotkey can be registered.
func Stop() {}
