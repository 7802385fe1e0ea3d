package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "FOLIOCHAT_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.mcp_port", typ: kInt, env: "FOLIOCHAT_SERVER_MCP_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.MCPPort = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.MCPPort },
	},
	{
		key: "provider.backend", typ: kString, env: "FOLIOCHAT_PROVIDER_BACKEND",
		apply:   func(cfg *Config, v any) { cfg.Provider.Backend = v.(string) },
		extract: func(cfg Config) any { return cfg.Provider.Backend },
	},
	{
		key: "provider.generate_model", typ: kString, env: "FOLIOCHAT_PROVIDER_GENERATE_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Provider.GenerateModel = v.(string) },
		extract: func(cfg Config) any { return cfg.Provider.GenerateModel },
	},
	{
		key: "provider.embed_model", typ: kString, env: "FOLIOCHAT_PROVIDER_EMBED_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Provider.EmbedModel = v.(string) },
		extract: func(cfg Config) any { return cfg.Provider.EmbedModel },
	},
	{
		key: "provider.base_url", typ: kString, env: "FOLIOCHAT_PROVIDER_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Provider.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Provider.BaseURL },
	},
	{
		key: "storage.data_dir", typ: kString, env: "FOLIOCHAT_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "sessions.redis_addr", typ: kString, env: "FOLIOCHAT_SESSIONS_REDIS_ADDR",
		apply:   func(cfg *Config, v any) { cfg.Sessions.RedisAddr = v.(string) },
		extract: func(cfg Config) any { return cfg.Sessions.RedisAddr },
	},
	{
		key: "sessions.ttl_minutes", typ: kInt, env: "FOLIOCHAT_SESSIONS_TTL_MINUTES",
		apply:   func(cfg *Config, v any) { cfg.Sessions.TTLMinutes = v.(int) },
		extract: func(cfg Config) any { return cfg.Sessions.TTLMinutes },
	},
	{
		key: "pool.requests_per_minute", typ: kInt, env: "FOLIOCHAT_POOL_REQUESTS_PER_MINUTE",
		apply:   func(cfg *Config, v any) { cfg.Pool.RequestsPerMinute = v.(int) },
		extract: func(cfg Config) any { return cfg.Pool.RequestsPerMinute },
	},
	{
		key: "pool.requests_per_day", typ: kInt, env: "FOLIOCHAT_POOL_REQUESTS_PER_DAY",
		apply:   func(cfg *Config, v any) { cfg.Pool.RequestsPerDay = v.(int) },
		extract: func(cfg Config) any { return cfg.Pool.RequestsPerDay },
	},
	{
		key: "pool.cooldown_seconds", typ: kInt, env: "FOLIOCHAT_POOL_COOLDOWN_SECONDS",
		apply:   func(cfg *Config, v any) { cfg.Pool.CooldownSeconds = v.(int) },
		extract: func(cfg Config) any { return cfg.Pool.CooldownSeconds },
	},
	{
		key: "pool.wait_timeout_seconds", typ: kInt, env: "FOLIOCHAT_POOL_WAIT_TIMEOUT_SECONDS",
		apply:   func(cfg *Config, v any) { cfg.Pool.WaitTimeoutSeconds = v.(int) },
		extract: func(cfg Config) any { return cfg.Pool.WaitTimeoutSeconds },
	},
	{
		key: "pool.max_retries", typ: kInt, env: "FOLIOCHAT_POOL_MAX_RETRIES",
		apply:   func(cfg *Config, v any) { cfg.Pool.MaxRetries = v.(int) },
		extract: func(cfg Config) any { return cfg.Pool.MaxRetries },
	},
	{
		key: "resume.path", typ: kString, env: "FOLIOCHAT_RESUME_PATH",
		apply:   func(cfg *Config, v any) { cfg.Resume.Path = v.(string) },
		extract: func(cfg Config) any { return cfg.Resume.Path },
	},
	{
		key: "api.admin_token", typ: kString, env: "FOLIOCHAT_API_ADMIN_TOKEN",
		apply:   func(cfg *Config, v any) { cfg.API.AdminToken = v.(string) },
		extract: func(cfg Config) any { return cfg.API.AdminToken },
	},
	{
		key: "log.level", typ: kString, env: "FOLIOCHAT_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
