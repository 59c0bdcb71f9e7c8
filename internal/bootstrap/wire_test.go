package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"whisperkey/internal/domain"
)

func TestBuildSuccess(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	services, err := Build(noopEventSink{})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if services.Controller == nil || services.Pipeline == nil || services.Capture == nil {
		t.Fatalf("incomplete service graph: %+v", services)
	}
	services.Pipeline.Stop()
}

func TestBuildFailsOnInvalidRules(t *testing.T) {
	home := t.TempDir()
	rules := filepath.Join(home, "bad.json")
	if err := os.WriteFile(rules, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	t.Setenv("HOME", home)
	t.Setenv("WHISPERKEY_RULES_FILE", rules)

	if _, err := Build(noopEventSink{}); err == nil {
		t.Fatalf("expected build error due to invalid rules")
	}
}

type noopEventSink struct{}

func (noopEventSink) RecordingStateChanged(_ bool, _ domain.StateReason) {}
func (noopEventSink) TranscriptReady(_, _ string)                       {}
func (noopEventSink) PipelineError(_ domain.ErrorCode, _ string)        {}
