package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FINTRACK_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Store.Backend != "file" || c.UI.Currency != "INR" || c.LLM.Attempts != 3 || !c.LLM.Synthesize {
		t.Errorf("Load() = %+v", c)
	}
	if c.LLM.Timeout != 20*time.Second || c.Recurring.Interval != time.Hour {
		t.Errorf("durations = %v, %v", c.LLM.Timeout, c.Recurring.Interval)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[store]
backend = "sqlite"
path = "/var/lib/fin"

[llm]
model = "gemini-pro"
timeout = "5s"
attempts = 2
synthesize = false

[ui]
currency = "EUR"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FINTRACK_CONFIG", path)
	t.Setenv("FINTRACK_UI_CURRENCY", "USD")
	t.Setenv("MY_KEY", "secret")
	t.Setenv("FINTRACK_LLM_API_KEY_ENV", "MY_KEY")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Store.Backend != "sqlite" || c.LLM.Model != "gemini-pro" || c.LLM.Attempts != 2 || c.LLM.Synthesize {
		t.Errorf("Load() = %+v", c)
	}
	if c.LLM.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", c.LLM.Timeout)
	}
	if c.UI.Currency != "USD" {
		t.Errorf("Currency = %q, want the env override USD", c.UI.Currency)
	}
	if got := c.LLM.Key(); got != "secret" {
		t.Errorf("Key() = %q, want secret", got)
	}
	if got := c.Store.Location(); got != "/var/lib/fin/fintrack.db" {
		t.Errorf("Location() = %q", got)
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte("this is not valid toml [[["), 0o644)
	t.Setenv("FINTRACK_CONFIG", path)
	if _, err := Load(); err == nil {
		t.Error("Load() expected an error for malformed TOML")
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	t.Setenv("FINTRACK_CONFIG", path)

	in := Config{
		Store:     StoreConfig{Backend: "file", Path: "/tmp/fin"},
		LLM:       LLMConfig{Model: "m", APIKeyEnv: "K", Timeout: 3 * time.Second, Attempts: 4},
		UI:        UIConfig{Currency: "GBP"},
		Recurring: RecurringConfig{Interval: 30 * time.Minute},
		Log:       LogConfig{Level: "debug"},
	}
	if err := Save(in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	out, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if out != in {
		t.Errorf("Load() = %+v, want %+v", out, in)
	}
}

func TestStoreConfig_Location(t *testing.T) {
	t.Setenv("HOME", "/home/me")
	testCases := []struct {
		cfg  StoreConfig
		want string
	}{
		{StoreConfig{Backend: "file", Path: "~/fin"}, "/home/me/fin"},
		{StoreConfig{Backend: "sqlite", Path: "/data/ledger.sqlite"}, "/data/ledger.sqlite"},
		{StoreConfig{Backend: "sqlite", Path: "/data"}, "/data/fintrack.db"},
	}
	for _, tc := range testCases {
		if got := tc.cfg.Location(); got != tc.want {
			t.Errorf("%+v.Location() = %q, want %q", tc.cfg, got, tc.want)
		}
	}
}
