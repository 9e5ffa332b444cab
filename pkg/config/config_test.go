package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("TIFFINO_API_BASE_URL", "http://localhost:9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.App.IsDev() {
		t.Fatalf("expected dev default, got %q", cfg.App.Env)
	}
	if cfg.Poll.Interval() != 4*time.Second {
		t.Fatalf("expected 4s poll default, got %v", cfg.Poll.Interval())
	}
	if cfg.API.Timeout() != 0 {
		t.Fatalf("expected transport-default timeout, got %v", cfg.API.Timeout())
	}
	if cfg.DevServer.Addr() != ":9090" {
		t.Fatalf("unexpected devserver addr %q", cfg.DevServer.Addr())
	}
}

func TestLoadRequiresBaseURL(t *testing.T) {
	// t.Setenv registers the restore; the unset makes the key truly absent,
	// which is what trips envconfig's required check.
	t.Setenv("TIFFINO_API_BASE_URL", "")
	os.Unsetenv("TIFFINO_API_BASE_URL")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when base url missing")
	}
}

func TestPollIntervalFloor(t *testing.T) {
	t.Parallel()

	p := PollConfig{IntervalMS: -10}
	if p.Interval() != 4*time.Second {
		t.Fatalf("non-positive interval should fall back to 4s, got %v", p.Interval())
	}
}
