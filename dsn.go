package qail

import (
	"net/url"
	"os"
	"strconv"
	"strings"
)

// SSLMode enumerates the recognized sslmode DSN options.
type SSLMode int

const (
	SSLPrefer SSLMode = iota
	SSLDisable
	SSLRequire
)

func parseSSLMode(s string) (SSLMode, error) {
	switch s {
	case "", "prefer":
		return SSLPrefer, nil
	case "disable":
		return SSLDisable, nil
	case "require":
		return SSLRequire, nil
	default:
		return SSLPrefer, newErr(InvalidParameter, "unrecognized sslmode %q", s)
	}
}

// ConnConfig is the fully-resolved connection configuration produced by
// parsing a DSN and applying the PG_* environment fallbacks.
type ConnConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string

	SSLMode             SSLMode
	PoolMaxConns        int
	PoolMinConns        int
	StatementCacheSize  int
	ApplicationName     string
}

const (
	defaultPoolMaxConns       = 10
	defaultPoolMinConns       = 0
	defaultStatementCacheSize = 256
)

// ParseDSN parses a `postgres://[user[:password]@]host[:port][/database]
// [?options]` connection string, following spec §6's option grammar.
// Standard library URL parsing is tried first (mirrors the common-case
// path seen in argon-it-seedfast-cli's PostgreSQLResolver); a DSN with
// unencoded special characters in host/user/password falls back to a
// manual scan, same as that resolver's manualParse path.
func ParseDSN(dsn string) (*ConnConfig, error) {
	if dsn == "" {
		return nil, newErr(InvalidParameter, "empty DSN")
	}

	var rest string
	switch {
	case strings.HasPrefix(dsn, "postgres://"):
		rest = strings.TrimPrefix(dsn, "postgres://")
	case strings.HasPrefix(dsn, "postgresql://"):
		rest = strings.TrimPrefix(dsn, "postgresql://")
	default:
		return nil, newErr(InvalidParameter, "DSN must start with postgres:// or postgresql://")
	}

	cfg := &ConnConfig{
		Port:               "5432",
		SSLMode:            SSLPrefer,
		PoolMaxConns:       defaultPoolMaxConns,
		PoolMinConns:       defaultPoolMinConns,
		StatementCacheSize: defaultStatementCacheSize,
	}

	if parsed, err := url.Parse(dsn); err == nil && parsed.User != nil && parsed.Host != "" {
		if err := applyParsedURL(cfg, parsed); err != nil {
			return nil, err
		}
	} else if err := applyManualParse(cfg, rest); err != nil {
		return nil, err
	}

	applyEnvFallbacks(cfg)

	if cfg.Host == "" {
		return nil, newErr(InvalidParameter, "DSN is missing a host")
	}
	return cfg, nil
}

func applyParsedURL(cfg *ConnConfig, parsed *url.URL) error {
	cfg.Host = parsed.Hostname()
	if port := parsed.Port(); port != "" {
		cfg.Port = port
	}
	cfg.User = parsed.User.Username()
	if pw, ok := parsed.User.Password(); ok {
		cfg.Password = pw
	}
	cfg.Database = strings.TrimPrefix(parsed.Path, "/")

	return applyQueryOptions(cfg, parsed.Query())
}

func applyQueryOptions(cfg *ConnConfig, q url.Values) error {
	if v := q.Get("sslmode"); v != "" {
		mode, err := parseSSLMode(v)
		if err != nil {
			return err
		}
		cfg.SSLMode = mode
	}
	if v := q.Get("pool_max_conns"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return newErr(InvalidParameter, "pool_max_conns must be an integer")
		}
		cfg.PoolMaxConns = n
	}
	if v := q.Get("pool_min_conns"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return newErr(InvalidParameter, "pool_min_conns must be an integer")
		}
		cfg.PoolMinConns = n
	}
	if v := q.Get("statement_cache_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return newErr(InvalidParameter, "statement_cache_size must be an integer")
		}
		cfg.StatementCacheSize = n
	}
	if v := q.Get("application_name"); v != "" {
		cfg.ApplicationName = v
	}
	return nil
}

// applyManualParse handles DSNs whose password/user contain characters
// url.Parse trips over, scanning left-to-right the way
// argon-it-seedfast-cli/internal/dsn.manualParse does.
func applyManualParse(cfg *ConnConfig, rest string) error {
	at := strings.LastIndex(rest, "@")
	if at == -1 {
		return newErr(InvalidParameter, "DSN is missing a '@' between credentials and host")
	}
	authPart, hostAndDB := rest[:at], rest[at+1:]

	if colon := strings.Index(authPart, ":"); colon == -1 {
		cfg.User = authPart
	} else {
		cfg.User = authPart[:colon]
		cfg.Password = authPart[colon+1:]
	}

	slash := strings.Index(hostAndDB, "/")
	var hostPart, dbAndParams string
	if slash == -1 {
		hostPart = hostAndDB
	} else {
		hostPart = hostAndDB[:slash]
		dbAndParams = hostAndDB[slash+1:]
	}

	if colon := strings.Index(hostPart, ":"); colon == -1 {
		cfg.Host = hostPart
	} else {
		cfg.Host = hostPart[:colon]
		cfg.Port = hostPart[colon+1:]
	}

	question := strings.Index(dbAndParams, "?")
	var paramStr string
	if question == -1 {
		cfg.Database = dbAndParams
	} else {
		cfg.Database = dbAndParams[:question]
		paramStr = dbAndParams[question+1:]
	}

	if paramStr != "" {
		values := url.Values{}
		for _, kv := range strings.Split(paramStr, "&") {
			parts := strings.SplitN(kv, "=", 2)
			if len(parts) == 2 {
				values.Set(parts[0], parts[1])
			}
		}
		if err := applyQueryOptions(cfg, values); err != nil {
			return err
		}
	}
	return nil
}

// applyEnvFallbacks fills in any field ParseDSN left empty from the
// PG_HOST/PG_PORT/PG_USER/PG_PASSWORD/PG_DATABASE environment variables.
func applyEnvFallbacks(cfg *ConnConfig) {
	if cfg.Host == "" {
		cfg.Host = os.Getenv("PG_HOST")
	}
	if cfg.Port == "" || cfg.Port == "5432" {
		if v := os.Getenv("PG_PORT"); v != "" {
			cfg.Port = v
		}
	}
	if cfg.User == "" {
		cfg.User = os.Getenv("PG_USER")
	}
	if cfg.Password == "" {
		cfg.Password = os.Getenv("PG_PASSWORD")
	}
	if cfg.Database == "" {
		cfg.Database = os.Getenv("PG_DATABASE")
	}
}
