package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.Port != 8000 {
		t.Errorf("HTTP.Port = %d, want 8000", cfg.HTTP.Port)
	}
	if cfg.Storage.ImagesDir != "data/user_images" {
		t.Errorf("Storage.ImagesDir = %q", cfg.Storage.ImagesDir)
	}
	if cfg.HTTP.ShutdownTimeout() != 10*time.Second {
		t.Errorf("ShutdownTimeout() = %v", cfg.HTTP.ShutdownTimeout())
	}
	if cfg.Redis.Enabled() {
		t.Error("Redis enabled without an address")
	}
	if cfg.TryOn.Model != "gemini-2.5-flash-image" {
		t.Errorf("TryOn.Model = %q", cfg.TryOn.Model)
	}
}

func TestLoadEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERPI_API", "serp-key")
	t.Setenv("IMAGE_API_KEY", "gemini-key")
	t.Setenv("HTTP_PORT", "9001")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Search.APIKey != "serp-key" || cfg.TryOn.APIKey != "gemini-key" {
		t.Errorf("api keys = %q, %q", cfg.Search.APIKey, cfg.TryOn.APIKey)
	}
	if cfg.HTTP.Addr() != ":9001" {
		t.Errorf("Addr() = %q", cfg.HTTP.Addr())
	}
	if got, want := cfg.Kafka.Brokers(), []string{"k1:9092", "k2:9092"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Brokers() = %v, want %v", got, want)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("IMAGES_DIR=/srv/images\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("IMAGES_DIR") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.ImagesDir != "/srv/images" {
		t.Errorf("Storage.ImagesDir = %q", cfg.Storage.ImagesDir)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yml")
	content := "http:\n  port: 7000\nsearch:\n  numresults: 8\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error = %v", path, err)
	}
	if cfg.HTTP.Port != 7000 || cfg.Search.NumResults != 8 {
		t.Errorf("HTTP.Port = %d, Search.NumResults = %d", cfg.HTTP.Port, cfg.Search.NumResults)
	}
}
