package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		Server: ServerConfig{URL: "https://ponto.example.com", TimeoutSeconds: 20},
		Cache:  CacheConfig{Path: "/home/user/.config/ponto_vivo/cache.json"},
		Geo:    GeoConfig{FeedPath: "/home/user/.config/ponto_vivo/position.jsonl", PollIntervalMS: 250},
		Sync:   SyncConfig{DebounceMS: 500, PullSeconds: 20, DocumentKey: "primary"},
		Identity: IdentityConfig{
			OrgID:      "org-principal",
			EmployeeID: "ayra",
			Name:       "Ayra",
			Role:       "staff",
			CanPunch:   true,
		},
	}

	var buf bytes.Buffer
	m := NewManager()

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.Server.URL != original.Server.URL {
		t.Errorf("Server.URL = %q, want %q", got.Server.URL, original.Server.URL)
	}
	if got.Server.TimeoutSeconds != 20 {
		t.Errorf("Server.TimeoutSeconds = %d, want 20", got.Server.TimeoutSeconds)
	}
	if got.Cache.Path != original.Cache.Path {
		t.Errorf("Cache.Path = %q, want %q", got.Cache.Path, original.Cache.Path)
	}
	if got.Geo.PollIntervalMS != 250 {
		t.Errorf("Geo.PollIntervalMS = %d, want 250", got.Geo.PollIntervalMS)
	}
	if got.Sync.DebounceMS != 500 {
		t.Errorf("Sync.DebounceMS = %d, want 500", got.Sync.DebounceMS)
	}
	if got.Identity.EmployeeID != "ayra" {
		t.Errorf("Identity.EmployeeID = %q, want %q", got.Identity.EmployeeID, "ayra")
	}
	if !got.Identity.CanPunch {
		t.Error("Identity.CanPunch = false, want true")
	}
}

func TestManager_Read_RejectsMissingServerURL(t *testing.T) {
	m := NewManager()

	_, err := m.Read(strings.NewReader("[server]\ntimeout_seconds = 10\n"))
	if err == nil {
		t.Fatal("Read() expected validation error for missing server url")
	}
}

func TestManager_Read_RejectsInvalidURL(t *testing.T) {
	m := NewManager()

	_, err := m.Read(strings.NewReader("[server]\nurl = \"not a url\"\n"))
	if err == nil {
		t.Fatal("Read() expected validation error for malformed url")
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig("https://ponto.example.com", "/data/pva")

	if cfg.Server.URL != "https://ponto.example.com" {
		t.Errorf("Server.URL = %q", cfg.Server.URL)
	}
	if cfg.Server.TimeoutSeconds != 15 {
		t.Errorf("Server.TimeoutSeconds = %d, want 15", cfg.Server.TimeoutSeconds)
	}
	if cfg.Cache.Path != filepath.Join("/data/pva", "cache.json") {
		t.Errorf("Cache.Path = %q", cfg.Cache.Path)
	}
	if cfg.Geo.PollIntervalMS != 500 {
		t.Errorf("Geo.PollIntervalMS = %d, want 500", cfg.Geo.PollIntervalMS)
	}
}

func TestInit_RefusesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	cfg := NewConfig("https://ponto.example.com", dir)

	if err := Init(path, cfg); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if err := Init(path, cfg); err == nil {
		t.Fatal("Init() expected error for existing config file")
	}
}

func TestReadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	cfg := NewConfig("https://ponto.example.com", dir)
	cfg.Identity = IdentityConfig{OrgID: "org-principal", EmployeeID: "ayra", Name: "Ayra", Role: "staff", CanPunch: true}

	if err := WriteToFile(path, cfg); err != nil {
		t.Fatalf("WriteToFile() error = %v", err)
	}

	got, err := ReadFromFile(path)
	if err != nil {
		t.Fatalf("ReadFromFile() error = %v", err)
	}
	if got.Identity.OrgID != "org-principal" {
		t.Errorf("Identity.OrgID = %q", got.Identity.OrgID)
	}
}
