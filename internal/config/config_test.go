package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: "5000"},
		Storage: StorageConfig{Driver: StorageMemory},
		Auth: AuthConfig{
			JWTSecret:     "0123456789abcdef",
			TokenTTL:      time.Hour,
			AdminUsername: "admin",
		},
		Billing: BillingConfig{ReminderCronSchedule: "0 9 1 * *", Timezone: "UTC"},
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing port", func(c *Config) { c.Server.Port = "" }, "APP_PORT"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "sqlite" }, "STORAGE_DRIVER"},
		{"mongo without uri", func(c *Config) { c.Storage.Driver = StorageMongo; c.MongoDB.DBName = "x" }, "MONGODB_URI"},
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }, "JWT_SECRET"},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "16 characters"},
		{"half sheets", func(c *Config) { c.Sheets.SpreadsheetID = "sheet" }, "together"},
		{"bad timezone", func(c *Config) { c.Billing.Timezone = "Mars/Olympus" }, "TIMEZONE"},
		{"whatsapp without version", func(c *Config) {
			c.WhatsApp = WhatsAppConfig{AccessToken: "t", PhoneNumberID: "p", BaseURL: "https://x"}
		}, "WHATSAPP_API_VERSION"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("JWT_SECRET", "a-very-long-test-secret")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("BUSINESS_CONTACTS", " 9904404326, ,9023971084 ")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load("does-not-exist.env")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Driver != StorageMemory {
		t.Fatalf("driver = %q", cfg.Storage.Driver)
	}
	if cfg.Auth.TokenTTL != 30*time.Minute {
		t.Fatalf("ttl = %v", cfg.Auth.TokenTTL)
	}
	if len(cfg.Billing.BusinessContacts) != 2 || cfg.Billing.BusinessContacts[1] != "9023971084" {
		t.Fatalf("contacts = %v", cfg.Billing.BusinessContacts)
	}
	if cfg.WhatsApp.Enabled() || cfg.Sheets.Enabled() {
		t.Fatalf("optional integrations must be disabled by default")
	}
}

func TestLoadRejectsBadTTL(t *testing.T) {
	t.Setenv("JWT_TTL", "soon")
	if _, err := Load("does-not-exist.env"); err == nil || !strings.Contains(err.Error(), "JWT_TTL") {
		t.Fatalf("expected JWT_TTL error, got %v", err)
	}
}
