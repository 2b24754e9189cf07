package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mindbook/mindbook/cmd/mindbook/internal/config"
)

func TestLoadFrom_Missing(t *testing.T) {
	cfg, err := config.LoadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Provider != config.ProviderOpenAI {
		t.Fatalf("Provider = %q, want openai default", cfg.Provider)
	}
	if cfg.User != "default" {
		t.Fatalf("User = %q, want default", cfg.User)
	}
}

func TestLoadFrom(t *testing.T) {
	dir := t.TempDir()
	content := `provider: gemini
gemini:
  api_key: g-key
  chat_model: gemini-2.0-flash
user: alice
search_threshold: 0.65
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Provider != config.ProviderGemini {
		t.Fatalf("Provider = %q", cfg.Provider)
	}
	if cfg.Gemini.APIKey != "g-key" {
		t.Fatalf("Gemini.APIKey = %q", cfg.Gemini.APIKey)
	}
	if cfg.User != "alice" {
		t.Fatalf("User = %q", cfg.User)
	}
	if cfg.SearchThreshold != 0.65 {
		t.Fatalf("SearchThreshold = %v", cfg.SearchThreshold)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err == nil {
		t.Fatal("default config must fail validation without an API key")
	}

	cfg.Provider = "other"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown provider must fail validation")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.LoadFrom(dir)
	if err != nil {
		t.Fatal(err)
	}
	cfg.OpenAI.APIKey = "sk-test"
	cfg.User = "bob"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := config.LoadFrom(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got.OpenAI.APIKey != "sk-test" || got.User != "bob" {
		t.Fatalf("round trip = %+v", got)
	}
}

func TestResolveDataDir(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.LoadFrom(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.ResolveDataDir(); got != filepath.Join(dir, "data") {
		t.Fatalf("ResolveDataDir = %q", got)
	}

	cfg.DataDir = "/tmp/elsewhere"
	if got := cfg.ResolveDataDir(); got != "/tmp/elsewhere" {
		t.Fatalf("ResolveDataDir = %q", got)
	}
}
