package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDRESS", "MAX_HISTORY_MESSAGES", "MAX_REPLY_TOKENS", "TOKEN_BUDGET", "OPENAI_MODEL", "DEEPGRAM_MODEL"} {
		os.Unsetenv(k)
	}
	cfg := Load()
	if cfg.HTTPAddress != ":8080" {
		t.Fatalf("expected default http address, got %q", cfg.HTTPAddress)
	}
	if cfg.MaxHistory != 12 || cfg.MaxReplyTokens != 256 || cfg.TokenBudget != 3000 {
		t.Fatalf("unexpected conversation bounds: %+v", cfg)
	}
	if cfg.OpenAIModel == "" || cfg.DeepgramModel == "" {
		t.Fatalf("expected default model ids")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	os.Setenv("HTTP_ADDRESS", ":9999")
	os.Setenv("MAX_HISTORY_MESSAGES", "6")
	defer os.Unsetenv("HTTP_ADDRESS")
	defer os.Unsetenv("MAX_HISTORY_MESSAGES")

	cfg := Load()
	if cfg.HTTPAddress != ":9999" {
		t.Fatalf("http address override: got %q", cfg.HTTPAddress)
	}
	if cfg.MaxHistory != 6 {
		t.Fatalf("max history override: got %d", cfg.MaxHistory)
	}
}

func TestLoad_BadNumberFallsBack(t *testing.T) {
	os.Setenv("TOKEN_BUDGET", "lots")
	defer os.Unsetenv("TOKEN_BUDGET")
	cfg := Load()
	if cfg.TokenBudget != 3000 {
		t.Fatalf("expected fallback budget, got %d", cfg.TokenBudget)
	}
}
