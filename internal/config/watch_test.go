package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pixels.yaml")
	if err := Save(path, DefaultConfig()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, 20*time.Millisecond, func(c *Config) { got <- c })
	}()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)

	cfg := DefaultConfig()
	cfg.Gap = 12
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	select {
	case c := <-got:
		if c.Gap != 12 {
			t.Errorf("expected reloaded gap 12, got %d", c.Gap)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("watch returned %v", err)
	}
}

func TestWatch_IgnoresInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pixels.yaml")
	if err := Save(path, DefaultConfig()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	calls := 0
	go func() {
		time.Sleep(100 * time.Millisecond)
		os.WriteFile(path, []byte("colors: \"\"\n"), 0644)
	}()
	if err := Watch(ctx, path, 20*time.Millisecond, func(*Config) { calls++ }); err != nil {
		t.Fatalf("watch returned %v", err)
	}
	if calls != 0 {
		t.Errorf("expected invalid config to be ignored, got %d reloads", calls)
	}
}

func TestWatch_MissingDir(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "cfg.yaml"), 0, func(*Config) {})
	if err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestWatch_ReloadKeepsReducedMotionEnv(t *testing.T) {
	t.Setenv(ReducedMotionEnv, "1")

	dir := t.TempDir()
	path := filepath.Join(dir, "pixels.yaml")
	if err := Save(path, DefaultConfig()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	go Watch(ctx, path, 20*time.Millisecond, func(c *Config) { got <- c })
	time.Sleep(100 * time.Millisecond)

	cfg := DefaultConfig()
	cfg.Gap = 12
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	select {
	case c := <-got:
		if !c.ReducedMotion {
			t.Fatal("expected reduced motion from the environment after reload")
		}
		opts, err := c.Options()
		if err != nil {
			t.Fatalf("options failed: %v", err)
		}
		if opts.Field.Speed != 0 || !opts.Field.ReducedMotion {
			t.Errorf("expected speed 0 with reduced motion, got %g", opts.Field.Speed)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}
