package config

import (
	"strings"
	"testing"
)

// mockBackend is an in-memory ConfigBackend for tests.
type mockBackend struct {
	strings map[string]string
	ints    map[string]int
}

func newMockBackend() *mockBackend {
	return &mockBackend{strings: make(map[string]string), ints: make(map[string]int)}
}

func (m *mockBackend) GetString(key string) (string, bool, error) {
	v, ok := m.strings[key]
	return v, ok, nil
}

func (m *mockBackend) GetInt(key string) (int, bool, error) {
	v, ok := m.ints[key]
	return v, ok, nil
}

func (m *mockBackend) SetString(key, val string) error {
	m.strings[key] = val
	return nil
}

func (m *mockBackend) SetInt(key string, val int) error {
	m.ints[key] = val
	return nil
}

func (m *mockBackend) Delete(key string) error {
	delete(m.strings, key)
	delete(m.ints, key)
	return nil
}

func fullBackend() *mockBackend {
	b := newMockBackend()
	b.strings["graph.tenant_id"] = "tenant-1"
	b.strings["graph.client_id"] = "client-1"
	b.strings["graph.site_id"] = "site-1"
	b.strings["graph.list_id"] = "list-1"
	return b
}

func setSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("VISTA_GRAPH_CLIENT_SECRET", "s3cret")
	t.Setenv("VISTA_SERVER_API_TOKEN", "tok3n")
}

func TestLoadDefaults(t *testing.T) {
	setSecrets(t)

	cfg, err := loadWith(fullBackend())
	if err != nil {
		t.Fatalf("loadWith() failed: %v", err)
	}

	if cfg.Server.Port != 4600 {
		t.Errorf("Port = %d, want 4600", cfg.Server.Port)
	}
	if cfg.Cache.DataTTLSeconds != 600 {
		t.Errorf("DataTTLSeconds = %d, want 600", cfg.Cache.DataTTLSeconds)
	}
	if cfg.Rotation.IntervalSeconds != 15 {
		t.Errorf("IntervalSeconds = %d, want 15", cfg.Rotation.IntervalSeconds)
	}
	if cfg.Pipeline.DueSoonDays != 3 || cfg.Pipeline.MinorClientThreshold != 3 {
		t.Errorf("Pipeline = %+v", cfg.Pipeline)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Graph.TenantID != "tenant-1" {
		t.Errorf("TenantID = %q", cfg.Graph.TenantID)
	}
}

func TestLoadBackendOverridesDefaults(t *testing.T) {
	setSecrets(t)
	b := fullBackend()
	b.ints["server.port"] = 5000
	b.ints["rotation.interval_seconds"] = 30

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith() failed: %v", err)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("Port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Rotation.IntervalSeconds != 30 {
		t.Errorf("IntervalSeconds = %d, want 30", cfg.Rotation.IntervalSeconds)
	}
}

func TestLoadEnvOverridesBackend(t *testing.T) {
	setSecrets(t)
	b := fullBackend()
	b.ints["server.port"] = 5000
	t.Setenv("VISTA_SERVER_PORT", "6000")
	t.Setenv("VISTA_LOG_LEVEL", "debug")

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith() failed: %v", err)
	}
	if cfg.Server.Port != 6000 {
		t.Errorf("Port = %d, want env override 6000", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadBadIntEnvKeepsDefault(t *testing.T) {
	setSecrets(t)
	t.Setenv("VISTA_SERVER_PORT", "not-a-number")

	cfg, err := loadWith(fullBackend())
	if err != nil {
		t.Fatalf("loadWith() failed: %v", err)
	}
	if cfg.Server.Port != 4600 {
		t.Errorf("Port = %d, want default kept on parse failure", cfg.Server.Port)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	setSecrets(t)
	b := fullBackend()
	delete(b.strings, "graph.list_id")

	_, err := loadWith(b)
	if err == nil {
		t.Fatal("loadWith() succeeded without graph.list_id")
	}
	if !strings.Contains(err.Error(), "VISTA_GRAPH_LIST_ID") {
		t.Errorf("error %q does not name the missing env var", err)
	}
}

func TestLoadMissingSecret(t *testing.T) {
	t.Setenv("VISTA_GRAPH_CLIENT_SECRET", "s3cret")
	t.Setenv("VISTA_SERVER_API_TOKEN", "")

	_, err := loadWith(fullBackend())
	if err == nil {
		t.Fatal("loadWith() succeeded without the API token")
	}
	if !strings.Contains(err.Error(), "VISTA_SERVER_API_TOKEN") {
		t.Errorf("error %q does not name the missing env var", err)
	}
}

func TestSecretsNeverReadFromBackend(t *testing.T) {
	setSecrets(t)
	b := fullBackend()
	b.strings["graph.client_secret"] = "from-file"
	b.strings["server.api_token"] = "from-file"

	cfg, err := loadWith(b)
	if err != nil {
		t.Fatalf("loadWith() failed: %v", err)
	}
	if cfg.Graph.ClientSecret != "s3cret" || cfg.Server.APIToken != "tok3n" {
		t.Errorf("secrets leaked from the file backend: %+v", cfg)
	}
}

func TestShowAllSkipsSecrets(t *testing.T) {
	cfg := defaults()
	cfg.Server.APIToken = "tok3n"
	cfg.Graph.ClientSecret = "s3cret"

	for _, info := range ShowAll(cfg) {
		if info.Key == "server.api_token" || info.Key == "graph.client_secret" {
			t.Errorf("ShowAll exposed secret key %s", info.Key)
		}
		if info.Value == "tok3n" || info.Value == "s3cret" {
			t.Errorf("ShowAll exposed a secret value under %s", info.Key)
		}
	}
}

func TestValidKeys(t *testing.T) {
	keys := ValidKeys()
	found := make(map[string]bool, len(keys))
	for _, k := range keys {
		found[k] = true
	}
	for _, want := range []string{"server.port", "graph.tenant_id", "cache.data_ttl_seconds", "log.level"} {
		if !found[want] {
			t.Errorf("ValidKeys() missing %s", want)
		}
	}
	if found["server.api_token"] || found["graph.client_secret"] {
		t.Error("ValidKeys() lists secret keys")
	}
}
