package cli

import (
	"fmt"
	"os"
)

// resolveDSN returns the --dsn flag if set, otherwise assembles one from
// the PG_HOST/PG_PORT/PG_USER/PG_PASSWORD/PG_DATABASE environment
// variables, mirroring ParseDSN's own env fallback so qailctl needs no
// flags at all inside a container that already sets them.
func resolveDSN() string {
	if dsnFlag != "" {
		return dsnFlag
	}
	host := envOr("PG_HOST", "localhost")
	port := envOr("PG_PORT", "5432")
	user := os.Getenv("PG_USER")
	password := os.Getenv("PG_PASSWORD")
	database := os.Getenv("PG_DATABASE")

	auth := user
	if password != "" {
		auth = fmt.Sprintf("%s:%s", user, password)
	}
	return fmt.Sprintf("postgres://%s@%s:%s/%s", auth, host, port, database)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
