package internal

import (
	"strings"
	"testing"
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

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if got, want := cfg.App.HTTP.Address(), ":8080"; got != want {
		t.Errorf("address = %q, want %q", got, want)
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

func TestLocaleConfig_DefaultMustBeEnabled(t *testing.T) {
	cfg := LocaleConfig{Default: "en", Enabled: []string{"fr", "de"}}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("default outside enabled set should fail")
	}
	if !strings.Contains(err.Error(), "enabled set") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLocaleConfig_EmptyEnabledAllowed(t *testing.T) {
	cfg := LocaleConfig{Default: "en"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty enabled set should pass: %v", err)
	}
	codes := cfg.Codes()
	if len(codes) != 1 || codes[0] != "en" {
		t.Errorf("codes = %v, want [en]", codes)
	}
}

func TestLocaleConfig_MissingDefault(t *testing.T) {
	cfg := LocaleConfig{}
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing default locale should fail")
	}
}

func TestImagesConfig_DefaultProviderMustExist(t *testing.T) {
	cfg := ImagesConfig{
		DefaultProvider: "avatars",
		Providers: map[string]ProviderConfig{
			"cdn": {BaseURL: "https://cdn.example.com/"},
		},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("unknown default provider should fail")
	}
	if !strings.Contains(err.Error(), "avatars") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestImagesConfig_EmptyProvidersAllowed(t *testing.T) {
	cfg := ImagesConfig{DefaultProvider: "avatars"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty provider map should pass: %v", err)
	}
}

func TestImagesConfig_ProviderBases(t *testing.T) {
	cfg := ImagesConfig{
		DefaultProvider: "avatars",
		Providers: map[string]ProviderConfig{
			"avatars": {BaseURL: "https://avatars.githubusercontent.com/u/"},
			"cdn":     {BaseURL: "https://cdn.example.com/img/"},
		},
	}
	bases := cfg.ProviderBases()
	if got, want := bases["cdn"], "https://cdn.example.com/img/"; got != want {
		t.Errorf("cdn base = %q, want %q", got, want)
	}
	if len(bases) != 2 {
		t.Errorf("len(bases) = %d, want 2", len(bases))
	}
}

func TestSiteConfig_ThemeEnum(t *testing.T) {
	cfg := SiteConfig{Name: "Ansuz", Theme: "neon"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown theme should fail validation")
	}
	cfg.Theme = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty theme should default: %v", err)
	}
	if cfg.Theme != "system" {
		t.Errorf("theme = %q, want %q", cfg.Theme, "system")
	}
}

func TestHTTPConfig_PortRange(t *testing.T) {
	cfg := HTTPConfig{Port: 0}
	if err := cfg.Validate(); err == nil {
		t.Fatal("port 0 should fail validation")
	}
	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("port above 65535 should fail validation")
	}
}
