package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Database.Driver != "sqlite" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Fatalf("token ttl = %v", cfg.Auth.TokenTTL)
	}
	if !cfg.Seed.Enabled || len(cfg.Seed.Users) != 2 || cfg.Seed.Users[0].Role != "admin" {
		t.Fatalf("seed = %+v", cfg.Seed)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SHOP_SERVER_ADDR", ":9090")
	t.Setenv("SHOP_DATABASE_DRIVER", "memory")
	t.Setenv("SHOP_AUTH_TOKEN_TTL", "30m")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9090" || cfg.Database.Driver != "memory" || cfg.Auth.TokenTTL != 30*time.Minute {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shop.yaml")
	body := []byte("env: development\ndatabase:\n  driver: mysql\n  dsn: shop:shop@tcp(127.0.0.1:3306)/shop?parseTime=true\nseed:\n  enabled: false\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.Driver != "mysql" || cfg.Seed.Enabled {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		Env:      "production",
		Database: DatabaseConfig{Driver: "sqlite", DSN: "shop.db"},
		Auth:     AuthConfig{JWTSecret: devSecret, TokenTTL: time.Hour},
	}
	if err := base.Validate(); err == nil {
		t.Fatal("default secret must be rejected in production")
	}
	base.Auth.JWTSecret = "prod-secret"
	if err := base.Validate(); err != nil {
		t.Fatal(err)
	}
	base.Database.Driver = "oracle"
	if err := base.Validate(); err == nil {
		t.Fatal("unknown driver must be rejected")
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
