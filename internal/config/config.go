// Package config resolves command-line settings for the tm client and the reference server.
// Precedence is flag, then environment, then built-in default.
package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Environment variables consulted when the matching flag is absent.
const (
	EnvAPIURL    = "TM_API_URL"
	EnvDSN       = "TM_DSN"
	EnvDBPath    = "TM_DB_PATH"
	EnvConfigDir = "TM_CONFIG_DIR"
	EnvJWTKey    = "TM_JWT_KEY"
)

const (
	DefaultAPIURL     = "http://localhost:8080/api/v1/"
	DefaultAddr       = ":8080"
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 30 * 24 * time.Hour
	DefaultTimeout    = 30 * time.Second
)

// Getenv looks up an environment variable; os.Getenv satisfies it.
type Getenv func(string) string

// CLI is the resolved configuration of the tm client.
type CLI struct {
	APIURL    string
	DSN       string // when set, the Postgres store is used instead of sqlite
	DBPath    string
	ConfigDir string
	Timeout   time.Duration
	Verbose   bool

	// Args holds the command and its arguments.
	Args []string
}

// ParseCLI parses the global flags of tm.
func ParseCLI(args []string, getenv Getenv, output io.Writer) (CLI, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	dir := Dir(getenv)

	var c CLI
	fs := flag.NewFlagSet("tm", flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}
	fs.StringVar(&c.APIURL, "api", envOr(getenv, EnvAPIURL, DefaultAPIURL), "task service base URL")
	fs.StringVar(&c.DSN, "dsn", getenv(EnvDSN), "PostgreSQL DSN for the local store (optional)")
	fs.StringVar(&c.DBPath, "db", envOr(getenv, EnvDBPath, filepath.Join(dir, "tasks.db")), "sqlite database path")
	fs.DurationVar(&c.Timeout, "timeout", DefaultTimeout, "request timeout")
	fs.BoolVar(&c.Verbose, "v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return CLI{}, err
	}
	c.ConfigDir = dir
	c.Args = fs.Args()
	return c, nil
}

// Server is the resolved configuration of the reference API server.
type Server struct {
	Addr       string
	DSN        string // optional; enables the Postgres login limiter
	JWTKey     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	TLSCert    string // serve TLS when both cert and key are set
	TLSKey     string
	Dev        bool
}

// ErrNoJWTKey is returned when no signing key was configured.
var ErrNoJWTKey = errors.New("missing jwt signing key (-jwt-key)")

// ErrPartialTLS is returned when only one of -tls-cert and -tls-key is set.
var ErrPartialTLS = errors.New("-tls-cert and -tls-key must be set together")

// ParseServer parses the flags of tm-server.
func ParseServer(args []string, getenv Getenv, output io.Writer) (Server, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	var s Server
	fs := flag.NewFlagSet("tm-server", flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}
	fs.StringVar(&s.Addr, "addr", DefaultAddr, "listen address")
	fs.StringVar(&s.DSN, "dsn", getenv(EnvDSN), "PostgreSQL DSN (optional)")
	fs.StringVar(&s.JWTKey, "jwt-key", getenv(EnvJWTKey), "HS256 signing key (required)")
	fs.DurationVar(&s.AccessTTL, "access-ttl", DefaultAccessTTL, "access token TTL")
	fs.DurationVar(&s.RefreshTTL, "refresh-ttl", DefaultRefreshTTL, "refresh token TTL")
	fs.StringVar(&s.TLSCert, "tls-cert", "", "TLS certificate (PEM)")
	fs.StringVar(&s.TLSKey, "tls-key", "", "TLS private key (PEM)")
	fs.BoolVar(&s.Dev, "dev", false, "development mode (gin debug output, mails logged)")
	if err := fs.Parse(args); err != nil {
		return Server{}, err
	}
	if s.JWTKey == "" {
		return Server{}, ErrNoJWTKey
	}
	if (s.TLSCert == "") != (s.TLSKey == "") {
		return Server{}, ErrPartialTLS
	}
	return s, nil
}

// Dir returns the client config directory: TM_CONFIG_DIR, else
// $XDG_CONFIG_HOME/taskmaster, else ~/.config/taskmaster.
func Dir(getenv Getenv) string {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(EnvConfigDir); v != "" {
		return v
	}
	if v := getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "taskmaster")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "taskmaster")
}

func envOr(getenv Getenv, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}
