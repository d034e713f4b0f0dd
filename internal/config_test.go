package internal

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Store.Dim != 768 {
		t.Errorf("dim = %d, want 768", cfg.Store.Dim)
	}
	if cfg.Providers.EmbedModel != "nomic-embed-text" || cfg.Providers.ChatModel != "llama3" {
		t.Errorf("provider defaults = %+v", cfg.Providers)
	}
}

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestIngestConfig_UnknownStrategy(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Ingest.ChunkStrategy = "sentences"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown chunk strategy should fail validation")
	}
}

func TestStoreConfig_DimRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Store.Dim = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero dim should fail validation")
	}
}

func TestHTTPConfig_PortBounds(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("out-of-range port should fail validation")
	}
}

func TestResolveWorkspace(t *testing.T) {
	dir := t.TempDir()
	got, err := resolveWorkspace(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != dir {
		t.Errorf("resolved = %q, want %q", got, dir)
	}

	// Empty root resolves under the home directory.
	got, err = resolveWorkspace("")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != workspaceDirName {
		t.Errorf("resolved = %q, want basename %q", got, workspaceDirName)
	}
}
