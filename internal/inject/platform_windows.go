//go:build windows

package inject

import (
	"fmt"
	"syscall"

	"github.com/micmonay/keybd_event"

	"whisperkey/internal/domain"
)

var (
	user32                       = syscall.NewLazyDLL("user32.dll")
	kernel32                     = syscall.NewLazyDLL("kernel32.dll")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procSetForegroundWindow      = user32.NewProc("SetForegroundWindow")
	procAttachThreadInput        = user32.NewProc("AttachThreadInput")
	procGetWindowThreadProcessID = user32.NewProc("GetWindowThreadProcessId")
	procGetCurrentThreadID       = kernel32.NewProc("GetCurrentThreadId")
)

// Platform implements the Windows focus and keystroke primitives.
type Platform struct{}

func NewPlatform() *Platform {
	return &Platform{}
}

func (p *Platform) CaptureActiveWindow() domain.WindowHandle {
	hwnd, _, _ := procGetForegroundWindow.Call()
	return domain.WindowHandle(hwnd)
}

// RestoreActiveWindow brings handle back to the foreground. Windows
// refuses SetForegroundWindow from a background thread, so the calling
// thread's input queue is attached to the target window's thread for
// the duration of the call.
func (p *Platform) RestoreActiveWindow(handle domain.WindowHandle) error {
	if handle == 0 {
		return nil
	}

	targetThread, _, _ := procGetWindowThreadProcessID.Call(uintptr(handle), 0)
	currentThread, _, _ := procGetCurrentThreadID.Call()

	attached := false
	if targetThread != 0 && targetThread != currentThread {
		ok, _, _ := procAttachThreadInput.Call(currentThread, targetThread, 1)
		attached = ok != 0
	}
	if attached {
		defer procAttachThreadInput.Call(currentThread, targetThread, 0)
	}

	ok, _, _ := procSetForegroundWindow.Call(uintptr(handle))
	if ok == 0 {
		return fmt.Errorf("SetForegroundWindow rejected handle %#x", uintptr(handle))
	}
	return nil
}

func (p *Platform) SendPaste() error {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return fmt.Errorf("init key bonding: %w", err)
	}
	kb.HasCTRL(true)
	kb.SetKeys(keybd_event.VK_V)
	if err := kb.Launching(); err != nil {
		return fmt.Errorf("send ctrl+v: %w", err)
	}
	return nil
}
