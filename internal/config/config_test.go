package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	valid := Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: "/tmp/tento"},
		Card:   CardConfig{RateRPS: 2, RateBurst: 5},
	}

	if err := valid.Validate(); err != nil {
		t.Errorf("valid config should pass: %v", err)
	}

	cases := []struct {
		mutate func(*Config)
		name   string
	}{
		{func(c *Config) { c.App.Environment = "" }, "empty environment"},
		{func(c *Config) { c.App.Environment = "prod" }, "unknown environment"},
		{func(c *Config) { c.Logger.Level = "verbose" }, "unknown log level"},
		{func(c *Config) { c.Data.BasePath = "" }, "empty data path"},
		{func(c *Config) { c.Card.RateRPS = 0 }, "zero rate"},
		{func(c *Config) { c.Card.RateBurst = -1 }, "negative burst"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := Config{Data: DataConfig{BasePath: "/var/lib/tento"}}

	if got := cfg.DatabasePath(); got != filepath.Join("/var/lib/tento", "tento.db") {
		t.Errorf("unexpected database path: %s", got)
	}
	if got := cfg.CardCachePath(); got != filepath.Join("/var/lib/tento", "cache", "cards") {
		t.Errorf("unexpected cache path: %s", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got, err := expandPath("~/tento/data", "")
	if err != nil {
		t.Fatalf("expandPath: %v", err)
	}
	want := filepath.Join(home, "tento", "data")
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	got, err = expandPath("", "/default/path")
	if err != nil {
		t.Fatalf("expandPath: %v", err)
	}
	if got != "/default/path" {
		t.Errorf("expected default, got %s", got)
	}
}

func TestSplitOrigins(t *testing.T) {
	got := splitOrigins("https://tento.so, http://localhost:3000 ,")
	if len(got) != 2 {
		t.Fatalf("expected 2 origins, got %v", got)
	}
	if got[0] != "https://tento.so" || got[1] != "http://localhost:3000" {
		t.Errorf("unexpected origins: %v", got)
	}
}

func TestGetConfigValue(t *testing.T) {
	t.Setenv("TENTO_TEST_VALUE", "from-env")

	if got := getConfigValue("from-flag", "TENTO_TEST_VALUE", "default"); got != "from-flag" {
		t.Errorf("flag should win, got %s", got)
	}
	if got := getConfigValue("", "TENTO_TEST_VALUE", "default"); got != "from-env" {
		t.Errorf("env should win over default, got %s", got)
	}
	if got := getConfigValue("", "TENTO_TEST_MISSING", "default"); got != "default" {
		t.Errorf("default should apply, got %s", got)
	}
}

func TestGetFloatConfigValue(t *testing.T) {
	if got := getFloatConfigValue("2.5", "TENTO_TEST_FLOAT", 1); got != 2.5 {
		t.Errorf("expected 2.5, got %g", got)
	}
	if got := getFloatConfigValue("not-a-number", "TENTO_TEST_FLOAT", 1); got != 1 {
		t.Errorf("expected fallback 1, got %g", got)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nTENTO_ENVFILE_A=hello\nTENTO_ENVFILE_B=\"quoted\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("TENTO_ENVFILE_A")
		os.Unsetenv("TENTO_ENVFILE_B")
	})

	if err := loadEnvFile(path); err != nil {
		t.Fatalf("loadEnvFile: %v", err)
	}
	if got := os.Getenv("TENTO_ENVFILE_A"); got != "hello" {
		t.Errorf("expected hello, got %s", got)
	}
	if got := os.Getenv("TENTO_ENVFILE_B"); got != "quoted" {
		t.Errorf("quotes should be stripped, got %s", got)
	}
}

func TestLoadEnvFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("NOT A PAIR\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := loadEnvFile(path); err == nil {
		t.Error("expected error for malformed line")
	}
}

func TestDurationDefaults(t *testing.T) {
	// Spot check that default duration strings parse.
	for _, raw := range []string{"15s", "60s", "720h", "15m", "5s"} {
		if _, err := time.ParseDuration(raw); err != nil {
			t.Errorf("default %q does not parse: %v", raw, err)
		}
	}
}
