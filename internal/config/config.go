package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the API process.
// All values must come from env (or env-file loaded by the process runner).
// No business logic should depend on raw environment variables.
type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Token    TokenConfig
	Security SecurityConfig
}

type AppConfig struct {
	Env  string
	Port int
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	// SSLMode is kept explicit so production deployments opt in consciously.
	// Accepts: disable, require, verify-ca, verify-full
	SSLMode string
}

type RedisConfig struct {
	Host string
	Port int
}

// TokenConfig controls the session-token and CSRF layers.
type TokenConfig struct {
	// SecretKey signs session tokens and seeds the CSRF digest secret.
	SecretKey string
	// Domain feeds the token issuer (urn:<domain>:issuer) and cookie scope.
	Domain string

	RefreshTTL time.Duration

	// AccessEnabled switches on the short-lived access-token layer.
	AccessEnabled bool
	AccessTTL     time.Duration

	// CsrfEnabled switches on the CSRF double-submit layer.
	CsrfEnabled bool
	// CsrfRotate re-issues the CSRF token after each successful
	// state-changing request.
	CsrfRotate bool
}

type SecurityConfig struct {
	LoginAttemptLimit  int
	LoginAttemptWindow time.Duration
}

// Cookie names. These are part of the admin-frontend contract; do not rename.
const (
	CookieRefreshToken = "_rt"
	CookieAccessToken  = "_at"
	CookieCsrfToken    = "_cf"
)

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := mustInt("APP_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}

	c.DB.Host = strings.TrimSpace(os.Getenv("DB_HOST"))
	{
		n, err := mustInt("DB_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.DB.Port = n
	}
	c.DB.User = strings.TrimSpace(os.Getenv("DB_USER"))
	c.DB.Password = os.Getenv("DB_PASSWORD")
	c.DB.Name = strings.TrimSpace(os.Getenv("DB_NAME"))
	c.DB.SSLMode = strings.TrimSpace(os.Getenv("DB_SSLMODE"))

	c.Redis.Host = strings.TrimSpace(os.Getenv("REDIS_HOST"))
	{
		n, err := mustInt("REDIS_PORT")
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Redis.Port = n
	}

	c.Token.SecretKey = os.Getenv("SECRET_KEY")
	c.Token.Domain = strings.TrimSpace(os.Getenv("DOMAIN"))
	// Duration env vars are optional; defaults applied in Validate().
	c.Token.RefreshTTL = mustDuration("TOKEN_REFRESH_TTL")
	c.Token.AccessEnabled = boolEnv("TOKEN_ACCESS_ENABLED", false)
	c.Token.AccessTTL = mustDuration("TOKEN_ACCESS_TTL")
	c.Token.CsrfEnabled = boolEnv("TOKEN_CSRF_ENABLED", true)
	c.Token.CsrfRotate = boolEnv("TOKEN_CSRF_ROTATE", true)

	{
		v := strings.TrimSpace(os.Getenv("LOGIN_ATTEMPT_LIMIT"))
		if v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				parseErrs = append(parseErrs, fmt.Errorf("LOGIN_ATTEMPT_LIMIT must be an integer, got %q", v))
			}
			c.Security.LoginAttemptLimit = n
		}
	}
	c.Security.LoginAttemptWindow = mustDuration("LOGIN_ATTEMPT_WINDOW")

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		errs = append(errs, errors.New("APP_ENV is required"))
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT must be a valid port, got %d", c.App.Port))
	}

	if c.DB.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.DB.Port <= 0 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Errorf("DB_PORT must be a valid port, got %d", c.DB.Port))
	}
	if c.DB.User == "" {
		errs = append(errs, errors.New("DB_USER is required"))
	}
	if c.DB.Name == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if strings.TrimSpace(c.DB.SSLMode) == "" {
		if c.IsProduction() {
			errs = append(errs, errors.New("DB_SSLMODE is required in production"))
		} else {
			// Local-friendly default; production must be explicit.
			c.DB.SSLMode = "disable"
		}
	}
	if c.DB.SSLMode != "" && !isValidSSLMode(c.DB.SSLMode) {
		errs = append(errs, fmt.Errorf("DB_SSLMODE must be one of disable, require, verify-ca, verify-full, got %q", c.DB.SSLMode))
	}

	if c.Redis.Host == "" {
		errs = append(errs, errors.New("REDIS_HOST is required"))
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Errorf("REDIS_PORT must be a valid port, got %d", c.Redis.Port))
	}

	if c.Token.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY is required"))
	}
	if c.IsProduction() && len(c.Token.SecretKey) < 32 {
		errs = append(errs, errors.New("SECRET_KEY must be at least 32 bytes in production"))
	}
	if c.Token.Domain == "" {
		errs = append(errs, errors.New("DOMAIN is required"))
	}

	if c.Token.RefreshTTL <= 0 {
		// Refresh tokens are the primary proof of authentication.
		c.Token.RefreshTTL = 24 * time.Hour
	}
	if c.Token.AccessTTL <= 0 {
		c.Token.AccessTTL = 5 * time.Minute
	}
	if c.Token.AccessEnabled && c.Token.RefreshTTL <= c.Token.AccessTTL {
		errs = append(errs, errors.New("TOKEN_REFRESH_TTL must be greater than TOKEN_ACCESS_TTL"))
	}

	if c.Security.LoginAttemptLimit <= 0 {
		c.Security.LoginAttemptLimit = 10
	}
	if c.Security.LoginAttemptWindow <= 0 {
		c.Security.LoginAttemptWindow = time.Minute
	}

	return joinErrors(errs)
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

// Issuer is the pinned issuer claim carried by every session token.
func (c *Config) Issuer() string {
	return fmt.Sprintf("urn:%s:issuer", c.Token.Domain)
}

func (c *Config) PostgresDSN() string {
	// Avoid logging this string; it contains secrets.
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

func mustInt(key string) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func mustDuration(key string) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}

func boolEnv(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func isValidSSLMode(v string) bool {
	switch v {
	case "disable", "require", "verify-ca", "verify-full":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
