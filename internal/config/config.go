package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

// Config represents the main configuration for complib.
type Config struct {
	BaseDir  string        `toml:"base_dir"`
	LogDir   string        `toml:"log_dir"`
	LogLevel string        `toml:"log_level"` // "debug", "info" (default), "warn" or "error"
	Store    StoreConfig   `toml:"store"`
	Sealing  SealingConfig `toml:"sealing"`
	Figma    FigmaConfig   `toml:"figma"`
	GitHub   GitHubConfig  `toml:"github"`
	Tokens   TokensConfig  `toml:"tokens"`
	Assets   AssetsConfig  `toml:"assets"`
	Server   ServerConfig  `toml:"server"`
}

// StoreConfig represents configuration for the key/value store backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StoreConfig struct {
	Type string `toml:"type"` // "memory", "filesystem", "sqlite", "redis" or "s3"

	// Filesystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`

	// SQLite-specific fields (only used when Type == "sqlite")
	SQLitePath string `toml:"sqlite_path,omitempty"`

	// Redis-specific fields (only used when Type == "redis")
	RedisAddr     string `toml:"redis_addr,omitempty"`
	RedisPassword string `toml:"redis_password,omitempty"`
	RedisDB       int    `toml:"redis_db,omitempty"`
	RedisPrefix   string `toml:"redis_prefix,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket    string `toml:"s3_bucket,omitempty"`
	S3Prefix    string `toml:"s3_prefix,omitempty"`
	S3Region    string `toml:"s3_region,omitempty"`
	S3Endpoint  string `toml:"s3_endpoint,omitempty"` // for S3-compatible servers
	S3AccessKey string `toml:"s3_access_key,omitempty"`
	S3SecretKey string `toml:"s3_secret_key,omitempty"`
}

// SealingConfig holds paths to the age key pair used to seal exports.
type SealingConfig struct {
	Type           string `toml:"type"` // "age" (default) or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// FigmaConfig configures the Figma REST client.
type FigmaConfig struct {
	BaseURL     string `toml:"base_url,omitempty"`
	AccessToken string `toml:"access_token,omitempty"`
	FileID      string `toml:"file_id,omitempty"`
}

// GitHubConfig configures the GitHub REST client and publish target.
type GitHubConfig struct {
	BaseURL string `toml:"base_url,omitempty"`
	Token   string `toml:"token,omitempty"`
	Owner   string `toml:"owner,omitempty"`
	Repo    string `toml:"repo,omitempty"`
	Branch  string `toml:"branch,omitempty"`
}

// TokensConfig locates the design token source and the generated config file.
type TokensConfig struct {
	SourcePath string `toml:"source_path,omitempty"` // YAML or JSON; built-in tokens when empty
	OutputPath string `toml:"output_path"`
}

// AssetsConfig locates downloaded assets.
type AssetsConfig struct {
	Dir string `toml:"dir"`
}

// ServerConfig configures the local browser.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// EnvOverrides are settings that may be supplied through the environment,
// typically secrets that should not live in the config file.
type EnvOverrides struct {
	StoreType   string `envconfig:"STORE_TYPE"`
	LogLevel    string `envconfig:"LOG_LEVEL"`
	FigmaToken  string `envconfig:"FIGMA_TOKEN"`
	GitHubToken string `envconfig:"GITHUB_TOKEN"`
	RedisAddr   string `envconfig:"REDIS_ADDR"`
}

// EnvPrefix is prepended to every EnvOverrides variable name.
const EnvPrefix = "COMPLIB"

// NewConfig creates a new Config rooted at baseDir with a filesystem store.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir:  baseDir,
		LogDir:   filepath.Join(baseDir, "log"),
		LogLevel: "info",
		Store: StoreConfig{
			Type:   "filesystem",
			FSRoot: filepath.Join(baseDir, "store"),
		},
		Sealing: SealingConfig{
			PublicKeyPath:  filepath.Join(baseDir, "keys", "complib.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "complib.key"),
		},
		GitHub: GitHubConfig{Branch: "main"},
		Tokens: TokensConfig{OutputPath: "tailwind.config.js"},
		Assets: AssetsConfig{Dir: filepath.Join("src", "assets")},
		Server: ServerConfig{Addr: "127.0.0.1:4780"},
	}
}

// ApplyEnv overlays any COMPLIB_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	var env EnvOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	if env.StoreType != "" {
		cfg.Store.Type = env.StoreType
	}
	if env.LogLevel != "" {
		cfg.LogLevel = env.LogLevel
	}
	if env.FigmaToken != "" {
		cfg.Figma.AccessToken = env.FigmaToken
	}
	if env.GitHubToken != "" {
		cfg.GitHub.Token = env.GitHubToken
	}
	if env.RedisAddr != "" {
		cfg.Store.RedisAddr = env.RedisAddr
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path and applies
// environment overrides.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Tokens may be in the file, keep it private.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
