package notify

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

// Notifier shows desktop toast notifications. Failures are logged and
// dropped: a missed toast must never break the dictation flow.
type Notifier struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Notifier {
	return &Notifier{log: log}
}

func (n *Notifier) Notify(title, message string) {
	if err := beeep.Notify(title, message, ""); err != nil {
		n.log.Warn("desktop notification failed", "title", title, "error", err)
	}
}
