package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/folio/internal/permission"
	pkgconfig "github.com/starford/folio/pkg/config"
)

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
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Permissions.DefaultLevel != permission.View {
		t.Errorf("default level = %s, want VIEW", cfg.Permissions.DefaultLevel)
	}
}

func TestPermissionsConfig_UnknownLevel(t *testing.T) {
	cfg := PermissionsConfig{DefaultLevel: permission.Level("OWNER")}
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown default level should fail validation")
	}
}

func TestPermissionsConfig_MissingLevel(t *testing.T) {
	cfg := PermissionsConfig{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty default level should fail validation")
	}
}

func TestEventsConfig_KeepAliveTooShort(t *testing.T) {
	cfg := EventsConfig{KeepAlive: 10 * time.Millisecond}
	if err := cfg.Validate(); err == nil {
		t.Fatal("sub-second keepalive should fail validation")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv("FOLIO_TEST_TOKEN", "s3cret")
	data := `app:
  log_level: debug
  http:
    port: 9090
sqlite:
  path: /tmp/folio.db
auth:
  mode: token
  token: ${FOLIO_TEST_TOKEN}
permissions:
  default_level: COMMENT
  overrides_file: ./overrides.yaml
events:
  keep_alive: 30s
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Auth.Token != "s3cret" || !cfg.Auth.AuthEnabled() {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.Permissions.DefaultLevel != permission.Comment {
		t.Errorf("default level = %s", cfg.Permissions.DefaultLevel)
	}
	if cfg.Events.KeepAlive != 30*time.Second {
		t.Errorf("keepalive = %s", cfg.Events.KeepAlive)
	}
	if cfg.App.LogLevel != slog.LevelDebug || cfg.App.HTTP.Address() != ":9090" {
		t.Errorf("app = %+v", cfg.App)
	}
}

func TestLoadConfigFile_UnknownLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("permissions:\n  default_level: ADMIN\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := pkgconfig.Load(path, NewDefaultConfig()); err == nil {
		t.Fatal("unknown default level should fail to load")
	}
}
