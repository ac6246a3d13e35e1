package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Site    SiteConfig        `yaml:"site"`
	Content ContentConfig     `yaml:"content"`
	Locales LocaleConfig      `yaml:"locales"`
	Images  ImagesConfig      `yaml:"images"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.Locales.Validate(); err != nil {
		return err
	}
	if err := c.Images.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SiteConfig holds the site identity rendered into every page.
type SiteConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	BaseURL     string `yaml:"base_url"`
	Theme       string `yaml:"theme"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	if c.Theme == "" {
		c.Theme = "system"
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Theme, validation.In("system", "light", "dark")),
	)
}

// ContentConfig holds the content collection settings.
type ContentConfig struct {
	Dir        string `yaml:"dir"`
	SourceGlob string `yaml:"source_glob"`
	Drafts     bool   `yaml:"drafts"`
	AssetsDir  string `yaml:"assets_dir"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.SourceGlob, validation.Required),
		validation.Field(&c.AssetsDir, validation.Required),
	)
}

// LocaleConfig holds the localization settings.
type LocaleConfig struct {
	Default string   `yaml:"default"`
	Enabled []string `yaml:"enabled"`
	Dir     string   `yaml:"dir"`
}

// Validate validates the locale configuration.
func (c *LocaleConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Default, validation.Required),
	); err != nil {
		return err
	}
	if len(c.Enabled) == 0 {
		return nil
	}
	for _, code := range c.Enabled {
		if code == c.Default {
			return nil
		}
	}
	return fmt.Errorf("locales: default %q is not in the enabled set", c.Default)
}

// Codes returns the enabled locale codes, always including the default.
func (c *LocaleConfig) Codes() []string {
	if len(c.Enabled) == 0 {
		return []string{c.Default}
	}
	return c.Enabled
}

// ProviderConfig holds one named image source.
type ProviderConfig struct {
	BaseURL string `yaml:"base_url"`
}

// ImagesConfig holds the image resolution settings.
type ImagesConfig struct {
	DefaultProvider string                    `yaml:"default_provider"`
	Providers       map[string]ProviderConfig `yaml:"providers"`
}

// Validate validates the images configuration.
func (c *ImagesConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.DefaultProvider, validation.Required),
	); err != nil {
		return err
	}
	if len(c.Providers) == 0 {
		return nil
	}
	if _, ok := c.Providers[c.DefaultProvider]; !ok {
		return fmt.Errorf("images: default provider %q is not configured", c.DefaultProvider)
	}
	return nil
}

// ProviderBases flattens the provider map to name/base pairs.
func (c *ImagesConfig) ProviderBases() map[string]string {
	bases := make(map[string]string, len(c.Providers))
	for name, p := range c.Providers {
		bases[name] = p.BaseURL
	}
	return bases
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Site: SiteConfig{
			Name:        "Ansuz",
			Description: "Content-driven site",
			BaseURL:     "http://localhost:8080",
			Theme:       "system",
		},
		Content: ContentConfig{
			Dir:        "./content",
			SourceGlob: "**/*.md",
			AssetsDir:  "assets",
		},
		Locales: LocaleConfig{
			Default: "en",
			Enabled: []string{"en"},
			Dir:     "./locales",
		},
		Images: ImagesConfig{
			DefaultProvider: "avatars",
		},
		SQLite: SQLiteConfig{
			Path: "./ansuz.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
