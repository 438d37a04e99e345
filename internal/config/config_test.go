package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		App:   AppConfig{Env: "local", Port: 8080},
		DB:    DBConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "x", Name: "civic", SSLMode: ""},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Token: TokenConfig{SecretKey: "secret", Domain: "civic.local", CsrfEnabled: true, CsrfRotate: true},
	}
}

func TestValidate_ReportsMissingRequired(t *testing.T) {
	c := Config{}
	if err := c.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestValidate_ProductionRequiresSSLMode(t *testing.T) {
	c := validConfig()
	c.App.Env = "production"
	c.Token.SecretKey = "0123456789abcdef0123456789abcdef"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for production without DB_SSLMODE")
	}
}

func TestValidate_ProductionRejectsShortSecret(t *testing.T) {
	c := validConfig()
	c.App.Env = "production"
	c.DB.SSLMode = "require"
	c.Token.SecretKey = "short"
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error for short SECRET_KEY in production")
	}
}

func TestValidate_LocalDefaults(t *testing.T) {
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.DB.SSLMode != "disable" {
		t.Fatalf("expected sslmode disable default, got %q", c.DB.SSLMode)
	}
	if c.Token.RefreshTTL != 24*time.Hour {
		t.Fatalf("expected 24h refresh default, got %v", c.Token.RefreshTTL)
	}
	if c.Token.AccessTTL != 5*time.Minute {
		t.Fatalf("expected 5m access default, got %v", c.Token.AccessTTL)
	}
}

func TestIssuer(t *testing.T) {
	c := validConfig()
	if got := c.Issuer(); got != "urn:civic.local:issuer" {
		t.Fatalf("unexpected issuer %q", got)
	}
}

func TestValidate_RefreshMustOutliveAccess(t *testing.T) {
	c := validConfig()
	c.Token.AccessEnabled = true
	c.Token.RefreshTTL = time.Minute
	c.Token.AccessTTL = time.Hour
	if err := c.Validate(); err == nil {
		t.Fatalf("expected error when access TTL exceeds refresh TTL")
	}
}
