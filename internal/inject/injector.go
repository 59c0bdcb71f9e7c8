package inject

import (
	"context"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"

	"whisperkey/internal/domain"
	"whisperkey/internal/ports"
)

// clipboardWriter is the seam over the system clipboard.
type clipboardWriter func(text string) error

// Injector places the final transcript on the clipboard, restores the
// window that was focused when recording started, and issues a
// synthetic paste. Each step is best-effort: a failed focus restore
// still pastes (the user may have refocused by hand), but a failed
// clipboard write skips the paste so stale clipboard contents are not
// injected.
type Injector struct {
	platform  ports.Platform
	writeClip clipboardWriter
	autoPaste bool
	log       *slog.Logger
}

func New(platform ports.Platform, autoPaste bool, log *slog.Logger) *Injector {
	return &Injector{
		platform:  platform,
		writeClip: clipboard.WriteAll,
		autoPaste: autoPaste,
		log:       log,
	}
}

func (i *Injector) Inject(ctx context.Context, text string, focus domain.WindowHandle) {
	if !i.autoPaste || strings.TrimSpace(text) == "" {
		return
	}
	if err := ctx.Err(); err != nil {
		return
	}

	if err := i.writeClip(text); err != nil {
		i.log.Warn("clipboard write failed, skipping paste", "error", err)
		return
	}

	if focus != 0 {
		if err := i.platform.RestoreActiveWindow(focus); err != nil {
			i.log.Warn("focus restore failed", "error", err)
		}
	}

	if err := i.platform.SendPaste(); err != nil {
		i.log.Warn("synthetic paste failed, text remains on clipboard", "error", err)
	}
}
