package config // package config loads application configuration from environment variables

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Secrets never fall back to hardcoded
// defaults: outside APP_ENV=dev a missing secret halts startup, and in
// dev a random throwaway value is generated and logged.
type Config struct {
	Env              string          // application environment ("dev", "test", "prod")
	Port             string          // HTTP port to listen on
	DBUser           string          // database username
	DBPass           string          // database password (optional)
	DBHost           string          // database host address
	DBPort           string          // database port number
	DBName           string          // database name
	JWTSecret        string          // secret used to sign access tokens
	AccessTTLMin     int             // access token time-to-live in minutes
	SessionTTLHours  int             // session lifetime in hours
	BcryptCost       int             // bcrypt cost for password hashing
	AutoApproveRoles map[string]bool // roles whose posts/comments publish without review
	CSRFExemptPrefix string          // path prefix exempt from anti-forgery checks
	GoogleClientID   string          // OAuth client id (empty disables OAuth routes)
	GoogleClientSec  string          // OAuth client secret
	GoogleRedirect   string          // OAuth callback URL registered with the provider
}

// Load reads configuration values from environment variables and returns
// a Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	env := must("APP_ENV")
	cfg := Config{
		Env:              env,
		Port:             must("APP_PORT"),
		DBUser:           must("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"),
		DBHost:           must("DB_HOST"),
		DBPort:           must("DB_PORT"),
		DBName:           must("DB_NAME"),
		JWTSecret:        secret(env, "JWT_SECRET"),
		AccessTTLMin:     envIntDefault("ACCESS_TOKEN_TTL_MIN", 60),
		SessionTTLHours:  envIntDefault("SESSION_TTL_HOURS", 168),
		BcryptCost:       envIntDefault("BCRYPT_COST", 10),
		AutoApproveRoles: ParseRoleSet(envDefault("AUTO_APPROVE_ROLES", "moderator,admin")),
		CSRFExemptPrefix: envDefault("CSRF_EXEMPT_PREFIX", "/api/oauth"),
		GoogleClientID:   os.Getenv("OAUTH_GOOGLE_CLIENT_ID"),
		GoogleClientSec:  os.Getenv("OAUTH_GOOGLE_CLIENT_SECRET"),
		GoogleRedirect:   os.Getenv("OAUTH_GOOGLE_REDIRECT_URL"),
	}
	if cfg.OAuthEnabled() && cfg.GoogleRedirect == "" {
		log.Fatal("OAUTH_GOOGLE_REDIRECT_URL is required when OAuth credentials are set")
	}
	return cfg
}

// OAuthEnabled reports whether Google OAuth routes should be registered.
func (c Config) OAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSec != ""
}

// ParseRoleSet turns a comma-separated role list into a lookup set.
// Empty entries are skipped; names are lower-cased.
func ParseRoleSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			set[part] = true
		}
	}
	return set
}

// secret retrieves a signing secret. The process refuses to start with a
// missing secret unless running in dev mode, where a random throwaway
// value is substituted so that restarts invalidate prior tokens.
func secret(env, key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if env != "dev" {
		log.Fatalf("missing required secret %s (refusing to start in env=%q)", key, env)
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("generate dev secret for %s: %v", key, err)
	}
	v := hex.EncodeToString(buf)
	log.Printf("WARNING: %s not set; using a generated dev-only secret", key)
	return v
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
