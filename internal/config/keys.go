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
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "VISTA_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "server.api_token", typ: kString, env: "VISTA_SERVER_API_TOKEN",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Server.APIToken = v.(string) },
		extract: func(cfg Config) any { return cfg.Server.APIToken },
	},
	{
		key: "graph.tenant_id", typ: kString, env: "VISTA_GRAPH_TENANT_ID",
		apply:   func(cfg *Config, v any) { cfg.Graph.TenantID = v.(string) },
		extract: func(cfg Config) any { return cfg.Graph.TenantID },
	},
	{
		key: "graph.client_id", typ: kString, env: "VISTA_GRAPH_CLIENT_ID",
		apply:   func(cfg *Config, v any) { cfg.Graph.ClientID = v.(string) },
		extract: func(cfg Config) any { return cfg.Graph.ClientID },
	},
	{
		key: "graph.client_secret", typ: kString, env: "VISTA_GRAPH_CLIENT_SECRET",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Graph.ClientSecret = v.(string) },
		extract: func(cfg Config) any { return cfg.Graph.ClientSecret },
	},
	{
		key: "graph.site_id", typ: kString, env: "VISTA_GRAPH_SITE_ID",
		apply:   func(cfg *Config, v any) { cfg.Graph.SiteID = v.(string) },
		extract: func(cfg Config) any { return cfg.Graph.SiteID },
	},
	{
		key: "graph.list_id", typ: kString, env: "VISTA_GRAPH_LIST_ID",
		apply:   func(cfg *Config, v any) { cfg.Graph.ListID = v.(string) },
		extract: func(cfg Config) any { return cfg.Graph.ListID },
	},
	{
		key: "cache.data_ttl_seconds", typ: kInt, env: "VISTA_CACHE_DATA_TTL_SECONDS",
		apply:   func(cfg *Config, v any) { cfg.Cache.DataTTLSeconds = v.(int) },
		extract: func(cfg Config) any { return cfg.Cache.DataTTLSeconds },
	},
	{
		key: "rotation.interval_seconds", typ: kInt, env: "VISTA_ROTATION_INTERVAL_SECONDS",
		apply:   func(cfg *Config, v any) { cfg.Rotation.IntervalSeconds = v.(int) },
		extract: func(cfg Config) any { return cfg.Rotation.IntervalSeconds },
	},
	{
		key: "pipeline.due_soon_days", typ: kInt, env: "VISTA_PIPELINE_DUE_SOON_DAYS",
		apply:   func(cfg *Config, v any) { cfg.Pipeline.DueSoonDays = v.(int) },
		extract: func(cfg Config) any { return cfg.Pipeline.DueSoonDays },
	},
	{
		key: "pipeline.minor_client_threshold", typ: kInt, env: "VISTA_PIPELINE_MINOR_CLIENT_THRESHOLD",
		apply:   func(cfg *Config, v any) { cfg.Pipeline.MinorClientThreshold = v.(int) },
		extract: func(cfg Config) any { return cfg.Pipeline.MinorClientThreshold },
	},
	{
		key: "storage.data_dir", typ: kString, env: "VISTA_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "log.level", typ: kString, env: "VISTA_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
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
		if s.env == "" {
			continue
		}
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
