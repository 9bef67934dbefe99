package config

import (
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	Server   ServerConfig
	Graph    GraphConfig
	Cache    CacheConfig
	Rotation RotationConfig
	Pipeline PipelineConfig
	Storage  StorageConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port     int
	APIToken string
}

// GraphConfig identifies the remote list and the app registration used to
// read it.
type GraphConfig struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	SiteID       string
	ListID       string
}

type CacheConfig struct {
	DataTTLSeconds int
}

type RotationConfig struct {
	IntervalSeconds int
}

type PipelineConfig struct {
	DueSoonDays          int
	MinorClientThreshold int
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4600,
		},
		Cache: CacheConfig{
			DataTTLSeconds: 600,
		},
		Rotation: RotationConfig{
			IntervalSeconds: 15,
		},
		Pipeline: PipelineConfig{
			DueSoonDays:          3,
			MinorClientThreshold: 3,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "vistaboard-data"
		}
	}
	return filepath.Join(dir, "vistaboard")
}

// Load reads configuration from the JSON file backend at
// $XDG_CONFIG_HOME/vistaboard/config.json, then applies VISTA_* environment
// overrides. Secrets (Graph client secret, API bearer token) never live in
// the file; they are environment-only.
func Load() (Config, error) {
	return loadWith(newFileBackend(configFilePath()))
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	for _, missing := range []struct {
		value, env string
	}{
		{cfg.Graph.TenantID, "VISTA_GRAPH_TENANT_ID"},
		{cfg.Graph.ClientID, "VISTA_GRAPH_CLIENT_ID"},
		{cfg.Graph.ClientSecret, "VISTA_GRAPH_CLIENT_SECRET"},
		{cfg.Graph.SiteID, "VISTA_GRAPH_SITE_ID"},
		{cfg.Graph.ListID, "VISTA_GRAPH_LIST_ID"},
		{cfg.Server.APIToken, "VISTA_SERVER_API_TOKEN"},
	} {
		if missing.value == "" {
			return Config{}, fmt.Errorf("missing required config: set environment variable %s", missing.env)
		}
	}

	return cfg, nil
}
