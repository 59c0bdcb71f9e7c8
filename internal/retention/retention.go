package retention

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Manager disposes of working WAV files and ages out retained
// recordings. With a non-positive retention window every working file
// is deleted outright and the recordings directory is never touched.
type Manager struct {
	dir  string
	days int
	log  *slog.Logger

	now func() time.Time
}

func NewManager(dir string, days int, log *slog.Logger) *Manager {
	return &Manager{
		dir:  dir,
		days: days,
		log:  log,
		now:  time.Now,
	}
}

// CleanupWorkingFile removes the ephemeral working WAV, or moves it
// into the recordings directory when retention is enabled.
func (m *Manager) CleanupWorkingFile(path string) {
	if path == "" {
		return
	}

	if m.days <= 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			m.log.Warn("failed to delete working file", "path", path, "error", err)
		}
		return
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		m.log.Warn("failed to create recordings dir, deleting working file", "dir", m.dir, "error", err)
		_ = os.Remove(path)
		return
	}

	name := fmt.Sprintf("rec_%s_%s.wav", m.now().Format("20060102_150405"), uuid.NewString()[:8])
	dest := filepath.Join(m.dir, name)
	if err := os.Rename(path, dest); err != nil {
		m.log.Warn("failed to retain recording, deleting working file", "path", path, "error", err)
		_ = os.Remove(path)
		return
	}
	m.log.Debug("recording retained", "path", dest)
}

// Sweep deletes retained recordings older than the retention window.
func (m *Manager) Sweep() {
	if m.days <= 0 {
		return
	}

	matches, err := filepath.Glob(filepath.Join(m.dir, "*.wav"))
	if err != nil {
		m.log.Warn("retention sweep failed", "dir", m.dir, "error", err)
		return
	}

	cutoff := m.now().Add(-time.Duration(m.days) * 24 * time.Hour)
	removed := 0
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				m.log.Warn("failed to remove expired recording", "path", path, "error", err)
				continue
			}
			removed++
		}
	}
	if removed > 0 {
		m.log.Info("retention sweep removed expired recordings", "count", removed, "dir", m.dir)
	}
}
