package config

import (
	"fmt"
	"os"
)

type Config struct {
	Server   ServerConfig
	Provider ProviderConfig
	Storage  StorageConfig
	Sessions SessionConfig
	Pool     PoolConfig
	Resume   ResumeConfig
	API      APIConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port    int
	MCPPort int
}

type ProviderConfig struct {
	Backend       string // "gemini" or "openai"
	GenerateModel string
	EmbedModel    string
	BaseURL       string // override for tests/proxies; empty uses the default
}

type StorageConfig struct {
	DataDir string
}

type SessionConfig struct {
	// RedisAddr enables the Redis session store; empty keeps sessions
	// in process memory.
	RedisAddr  string
	TTLMinutes int
}

type PoolConfig struct {
	RequestsPerMinute  int
	RequestsPerDay     int
	CooldownSeconds    int
	WaitTimeoutSeconds int
	MaxRetries         int
}

type ResumeConfig struct {
	Path string
}

type APIConfig struct {
	AdminToken string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:    4000,
			MCPPort: 4001,
		},
		Provider: ProviderConfig{
			Backend:       "gemini",
			GenerateModel: "gemini-2.0-flash-exp",
			EmbedModel:    "text-embedding-004",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Sessions: SessionConfig{
			TTLMinutes: 120,
		},
		Pool: PoolConfig{
			RequestsPerMinute:  15,
			RequestsPerDay:     1500,
			CooldownSeconds:    60,
			WaitTimeoutSeconds: 30,
			MaxRetries:         3,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON file backend at
// $XDG_CONFIG_HOME/foliochat/config.json, then applies FOLIOCHAT_*
// environment overrides. Provider credentials are read from the
// environment only (see Credentials) and are never stored in the file.
//
// Load itself never fails on missing credentials; the credential pool
// fails fast at startup instead.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()
	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// maxCredentialSlots bounds the numbered credential scan.
const maxCredentialSlots = 16

// Credentials collects provider API keys from the environment: the
// numbered form (GEMINI_API_KEY_1..N or OPENAI_API_KEY_1..N depending on
// the backend) plus the unnumbered variable. Gaps in the numbering are
// skipped, not treated as the end of the list.
func Credentials(backend string) []string {
	prefix := "GEMINI_API_KEY"
	if backend == "openai" {
		prefix = "OPENAI_API_KEY"
	}

	var keys []string
	if v := os.Getenv(prefix); v != "" {
		keys = append(keys, v)
	}
	for i := 1; i <= maxCredentialSlots; i++ {
		if v := os.Getenv(fmt.Sprintf("%s_%d", prefix, i)); v != "" {
			keys = append(keys, v)
		}
	}
	return keys
}
