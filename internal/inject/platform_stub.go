//go:build !windows

package inject

import (
	"errors"

	"whisperkey/internal/domain"
)

// Platform is a no-op on platforms without focus-restore support. The
// transcript still lands on the clipboard; only the synthetic paste is
// unavailable.
type Platform struct{}

func NewPlatform() *Platform {
	return &Platform{}
}

func (p *Platform) CaptureActiveWindow() domain.WindowHandle {
	return 0
}

func (p *Platform) RestoreActiveWindow(handle domain.WindowHandle) error {
	return nil
}

func (p *Platform) SendPaste() error {
	return errors.New("synthetic paste is not supported on this platform")
}
