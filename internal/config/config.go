package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const defaultAIPrompt = "You are a text corrector. You are given the transcript of a voice recording. " +
	"Your only task is to fix grammar, punctuation and typos. Return ONLY the corrected text; " +
	"do not add anything, do not answer the content, do not comment. Keep the original meaning and style."

// Config is the read-only snapshot consumed once per recording cycle.
type Config struct {
	Hotkey           string
	Language         string
	SilenceThreshold time.Duration
	AutoPaste        bool
	Microphone       string
	WorkingPath      string
	Rules            RulesConfig
	AI               AIConfig
	Engine           EngineConfig
	Retention        RetentionConfig
	Log              LogConfig
}

type RulesConfig struct {
	Path string
}

type AIConfig struct {
	Enabled     bool
	APIKey      string
	APIBaseURL  string
	Model       string
	Prompt      string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

type EngineConfig struct {
	ModelPath string
	Threads   int
}

type RetentionConfig struct {
	Days int
	Dir  string
}

type LogConfig struct {
	Path string
}

// Load resolves configuration from environment variables and sensible defaults.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, errors.New("could not determine home directory")
	}

	cfg := Config{
		Hotkey:           envOrDefault("WHISPERKEY_HOTKEY", "ctrl+shift+space"),
		Language:         envOrDefault("WHISPERKEY_LANGUAGE", "auto"),
		SilenceThreshold: time.Duration(envOrDefaultInt("WHISPERKEY_SILENCE_THRESHOLD_MS", 500)) * time.Millisecond,
		AutoPaste:        envOrDefaultBool("WHISPERKEY_AUTO_PASTE", true),
		Microphone:       envOrDefault("WHISPERKEY_MICROPHONE", "default"),
		WorkingPath:      envOrDefault("WHISPERKEY_WORKING_FILE", filepath.Join(os.TempDir(), "whisperkey_capture.wav")),
		Rules: RulesConfig{
			Path: envOrDefault("WHISPERKEY_RULES_FILE", filepath.Join(home, ".config", "whisperkey", "replacements.json")),
		},
		AI: AIConfig{
			Enabled: envOrDefaultBool("WHISPERKEY_AI_ENABLED", true),
			APIKey: firstNonEmpty(
				os.Getenv("WHISPERKEY_AI_API_KEY"),
				os.Getenv("OPENAI_API_KEY"),
			),
			APIBaseURL:  envOrDefault("WHISPERKEY_AI_BASE", "https://api.openai.com/v1"),
			Model:       envOrDefault("WHISPERKEY_AI_MODEL", "gpt-4o-mini"),
			Prompt:      envOrDefault("WHISPERKEY_AI_PROMPT", defaultAIPrompt),
			Timeout:     time.Duration(envOrDefaultInt("WHISPERKEY_AI_TIMEOUT_MS", 15000)) * time.Millisecond,
			MaxTokens:   envOrDefaultInt("WHISPERKEY_AI_MAX_TOKENS", 500),
			Temperature: 0.3,
		},
		Engine: EngineConfig{
			ModelPath: envOrDefault("WHISPERKEY_MODEL_PATH", filepath.Join(home, ".cache", "whisperkey", "ggml-tiny.bin")),
			Threads:   envOrDefaultInt("WHISPERKEY_THREADS", 4),
		},
		Retention: RetentionConfig{
			Days: envOrDefaultInt("WHISPERKEY_RETENTION_DAYS", 0),
			Dir:  envOrDefault("WHISPERKEY_RECORDINGS_DIR", filepath.Join(home, "whisperkey", "recordings")),
		},
		Log: LogConfig{
			Path: envOrDefault("WHISPERKEY_LOG_FILE", filepath.Join(home, ".whisperkey", "debug.log")),
		},
	}

	if cfg.SilenceThreshold < 0 {
		cfg.SilenceThreshold = 500 * time.Millisecond
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 15 * time.Second
	}
	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = 500
	}
	if cfg.Engine.Threads <= 0 {
		cfg.Engine.Threads = 4
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
