package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the booking service.
type Config struct {
	HTTPPort           int
	SQLiteDSN          string
	MinLeadTime        time.Duration
	ConfirmationWindow time.Duration
	SearchCacheTTL     time.Duration
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields while reporting
// every invalid entry in one pass.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:           8080,
		SQLiteDSN:          "file:careapi.db?_foreign_keys=on",
		MinLeadTime:        24 * time.Hour,
		ConfirmationWindow: 12 * time.Hour,
		SearchCacheTTL:     30 * time.Second,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("CAREAPI_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "CAREAPI_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("CAREAPI_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if leadValue := strings.TrimSpace(os.Getenv("CAREAPI_MIN_LEAD_TIME")); leadValue != "" {
		lead, err := time.ParseDuration(leadValue)
		if err != nil || lead <= 0 {
			invalid = append(invalid, "CAREAPI_MIN_LEAD_TIME")
		} else {
			cfg.MinLeadTime = lead
		}
	}

	if windowValue := strings.TrimSpace(os.Getenv("CAREAPI_CONFIRMATION_WINDOW")); windowValue != "" {
		window, err := time.ParseDuration(windowValue)
		if err != nil || window <= 0 {
			invalid = append(invalid, "CAREAPI_CONFIRMATION_WINDOW")
		} else {
			cfg.ConfirmationWindow = window
		}
	}

	if ttlValue := strings.TrimSpace(os.Getenv("CAREAPI_SEARCH_CACHE_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "CAREAPI_SEARCH_CACHE_TTL")
		} else {
			cfg.SearchCacheTTL = ttl
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
