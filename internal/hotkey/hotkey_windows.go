//go:build windows

package hotkey

import (
	"fmt"
	"runtime"
	"sync"
	"syscall"
	"time"
	"unsafe"
)

var (
	user32                 = syscall.NewLazyDLL("user32.dll")
	kernel32               = syscall.NewLazyDLL("kernel32.dll")
	procRegisterHotKey     = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey   = user32.NewProc("UnregisterHotKey")
	procGetMessageW        = user32.NewProc("GetMessageW")
	procPostThreadMessageW = user32.NewProc("PostThreadMessageW")
	procGetCurrentThreadID = kernel32.NewProc("GetCurrentThreadId")
)

const (
	hotkeyID  = 1
	wmHotkey  = 0x0312
	wmQuit    = 0x0012
	noRepeats = 0x4000 // MOD_NOREPEAT: holding the combo fires once
)

var (
	loopMu   sync.Mutex
	loopTID  uintptr
	loopDone bool
)

type msg struct {
	HWND   uintptr
	UINT   uintptr
	WPARAM uintptr
	LPARAM uintptr
	DWORD  uint32
	POINT  struct{ X, Y int32 }
}

// Register binds spec as a global hotkey and invokes handler on every
// press. The message loop needs a stable OS thread, so registration and
// GetMessageW run on one locked goroutine; registration failure is
// reported synchronously. If Stop raced a slow registration, the late
// registration unbinds itself immediately.
func Register(spec string, handler func()) error {
	mod, vk, err := parseHotkey(spec)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		runtime.LockOSThread()

		ok, _, callErr := procRegisterHotKey.Call(0, hotkeyID, uintptr(mod|noRepeats), uintptr(vk))
		if ok == 0 {
			errCh <- fmt.Errorf("RegisterHotKey %q: %v", spec, callErr)
			return
		}

		tid, _, _ := procGetCurrentThreadID.Call()
		loopMu.Lock()
		if loopDone {
			loopMu.Unlock()
			procUnregisterHotKey.Call(0, hotkeyID)
			errCh <- fmt.Errorf("hotkey registration aborted by shutdown")
			return
		}
		loopTID = tid
		loopMu.Unlock()
		errCh <- nil

		defer func() {
			procUnregisterHotKey.Call(0, hotkeyID)
			loopMu.Lock()
			loopTID = 0
			loopMu.Unlock()
		}()

		var m msg
		for {
			ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
			if int32(ret) <= 0 {
				return
			}
			if m.UINT == wmHotkey && m.WPARAM == hotkeyID {
				handler()
			}
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		return fmt.Errorf("hotkey registration timed out for %q", spec)
	}
}

// Stop unbinds the hotkey and ends the message loop. Safe to call
// before, after, or without a successful Register.
func Stop() {
	loopMu.Lock()
	loopDone = true
	tid := loopTID
	loopMu.Unlock()

	if tid != 0 {
		procPostThreadMessageW.Call(tid, wmQuit, 0, 0)
	}
}
