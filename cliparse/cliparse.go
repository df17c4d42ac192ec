package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port          int
	DatabaseURL   string
	DatabaseType  string
	RoundSeconds  int
	SweepInterval time.Duration
	TickInterval  time.Duration
}

// ParseFlags validates flags and fills in environment fallbacks
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var sweepMs, tickMs int

	fs := flag.NewFlagSet("mafia-night", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.IntVar(&cfg.RoundSeconds, "round", 0, "Default voting round duration in seconds")
	fs.IntVar(&sweepMs, "sweep-ms", 0, "Expiry sweep interval in milliseconds")
	fs.IntVar(&tickMs, "tick-ms", 0, "Timer broadcast interval in milliseconds")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3525 // default
		}
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("DATABASE_TYPE must be sqlite or postgres")
	}

	if cfg.RoundSeconds == 0 {
		cfg.RoundSeconds, _ = envInt("ROUND_SECONDS")
	}
	if cfg.RoundSeconds == 0 {
		cfg.RoundSeconds = 60
	}
	if cfg.RoundSeconds < 0 {
		return Config{}, errors.New("round duration must be positive")
	}

	if sweepMs == 0 {
		sweepMs, _ = envInt("SWEEP_INTERVAL_MS")
	}
	if sweepMs == 0 {
		sweepMs = 5000
	}
	cfg.SweepInterval = time.Duration(sweepMs) * time.Millisecond

	if tickMs == 0 {
		tickMs, _ = envInt("TICK_INTERVAL_MS")
	}
	if tickMs == 0 {
		tickMs = 1000
	}
	cfg.TickInterval = time.Duration(tickMs) * time.Millisecond

	return cfg, nil
}

func envInt(name string) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
