package main

import (
	"testing"

	"github.com/mikey-austin/nekotv/internal/nekod"
)

func TestApplyOverridesDefaults(t *testing.T) {
	cfg := nekod.Config{}
	cfg.Modules.EmbeddedMQTT.Enabled = true

	applyOverrides(&cfg, "", "g-1", "", "", "")

	if cfg.Server.TopicBase != "neko/v1" {
		t.Fatalf("topic base = %q", cfg.Server.TopicBase)
	}
	if cfg.Server.Thread != "g-1" {
		t.Fatalf("thread = %q", cfg.Server.Thread)
	}
	if cfg.Server.Feed != "mqtt" {
		t.Fatalf("feed = %q", cfg.Server.Feed)
	}
	if cfg.Server.NodeID == "" {
		t.Fatalf("expected node id default")
	}
	if cfg.Server.Broker != "mqtt://127.0.0.1:1883" {
		t.Fatalf("broker = %q", cfg.Server.Broker)
	}
}

func TestBuildControllerRequiresBackend(t *testing.T) {
	cfg := nekod.Config{}
	if _, err := buildController(cfg, nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestBuildRawDriverUnknown(t *testing.T) {
	if _, err := buildRawDriver(nekod.RawBackendConfig{Driver: "mpv"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestBuildRawDriverVLC(t *testing.T) {
	driver, err := buildRawDriver(nekod.RawBackendConfig{
		Driver:   "vlc",
		BaseURL:  "http://localhost:8080",
		Password: "secret",
	})
	if err != nil {
		t.Fatalf("build driver: %v", err)
	}
	if driver == nil {
		t.Fatalf("expected driver")
	}
}
