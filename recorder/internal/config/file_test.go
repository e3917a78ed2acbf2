package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFile_DefaultsApplied(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recflow.yaml")
	data := `
browser:
  headless: true
recording:
  fill_debounce: 200ms
store:
  path: /tmp/test-flows.db
server:
  addr: :8099
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if !cfg.Browser.Headless {
		t.Error("headless not parsed")
	}
	if cfg.Recording.FillDebounce != 200*time.Millisecond {
		t.Errorf("fill_debounce: got %v", cfg.Recording.FillDebounce)
	}
	if cfg.Recording.ScrollDebounce != 350*time.Millisecond {
		t.Errorf("scroll_debounce default: got %v", cfg.Recording.ScrollDebounce)
	}
	if cfg.Recording.AckTimeout != 3*time.Second {
		t.Errorf("ack_timeout default: got %v", cfg.Recording.AckTimeout)
	}
	if cfg.Recording.Overlay == nil || !*cfg.Recording.Overlay {
		t.Error("overlay should default on")
	}
	if cfg.Store.Path != "/tmp/test-flows.db" {
		t.Errorf("store path: got %q", cfg.Store.Path)
	}
	if cfg.Server.Addr != ":8099" {
		t.Errorf("server addr: got %q", cfg.Server.Addr)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile("/nonexistent/recflow.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyDefaults_ZeroConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Store.Path != "flows.db" {
		t.Errorf("store path default: got %q", cfg.Store.Path)
	}
	if cfg.Recording.BatchInterval != 100*time.Millisecond {
		t.Errorf("batch default: got %v", cfg.Recording.BatchInterval)
	}
}
