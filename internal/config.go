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

// Chunking strategies.
const (
	ChunkStrategyParagraph = "paragraph-pack"
	ChunkStrategyWordCount = "word-count"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Workspace WorkspaceConfig   `yaml:"workspace"`
	Store     StoreConfig       `yaml:"store"`
	Providers ProvidersConfig   `yaml:"providers"`
	Ingest    IngestConfig      `yaml:"ingest"`
	Auth      AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.Providers.Validate(); err != nil {
		return err
	}
	if err := c.Ingest.Validate(); err != nil {
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
	Port int `yaml:"port"`
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

// WorkspaceConfig holds the workspace directory that contains the database
// and the artifacts directory. An empty Root resolves to
// <home>/.research_data at startup.
type WorkspaceConfig struct {
	Root string `yaml:"root"`
}

// StoreConfig holds embedded store configuration. Dim is the embedding
// dimension fixed at schema creation; changing it requires a re-index.
type StoreConfig struct {
	Dim int `yaml:"dim"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dim, validation.Required, validation.Min(1)),
	)
}

// ProvidersConfig holds the default embedding and chat provider settings.
// Gemini is selected per ingest request and carries its key with it, so
// only the optional fallback key lives here (expanded from the environment).
type ProvidersConfig struct {
	OllamaHost   string `yaml:"ollama_host"`
	EmbedModel   string `yaml:"embed_model"`
	ChatModel    string `yaml:"chat_model"`
	GeminiAPIKey string `yaml:"gemini_api_key"`
}

// Validate validates the provider configuration.
func (c *ProvidersConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.OllamaHost, validation.Required),
		validation.Field(&c.EmbedModel, validation.Required),
		validation.Field(&c.ChatModel, validation.Required),
	)
}

// IngestConfig holds chunking configuration for the ingest pipeline.
type IngestConfig struct {
	ChunkStrategy string `yaml:"chunk_strategy"`
	ChunkSize     int    `yaml:"chunk_size"`
	TargetTokens  int    `yaml:"target_tokens"`
}

// Validate validates the ingest configuration.
func (c *IngestConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ChunkStrategy, validation.Required,
			validation.In(ChunkStrategyParagraph, ChunkStrategyWordCount)),
		validation.Field(&c.ChunkSize, validation.Required, validation.Min(1)),
		validation.Field(&c.TargetTokens, validation.Required, validation.Min(1)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
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
				Port: 8484,
			},
		},
		Workspace: WorkspaceConfig{
			Root: "", // resolved to <home>/.research_data at startup
		},
		Store: StoreConfig{
			Dim: 768,
		},
		Providers: ProvidersConfig{
			OllamaHost: "http://localhost:11434",
			EmbedModel: "nomic-embed-text",
			ChatModel:  "llama3",
		},
		Ingest: IngestConfig{
			ChunkStrategy: ChunkStrategyParagraph,
			ChunkSize:     1000,
			TargetTokens:  500,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
