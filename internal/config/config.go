package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabasePath string
	RemoteURL    string // empty runs the device offline-only
	RemoteAuth   string
	DeviceID     string
	SyncInterval time.Duration
	Location     *time.Location
	HTTPAddr     string
	LogLevel     string
	Env          string // dev|prod
	SentryDSN    string
	BotToken     string // optional sync status notifications
	AdminIDs     []int64
}

func Load() (*Config, error) {
	tz := getenv("TZ", "Asia/Manila")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	adminIDs, err := parseIDs(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS: %w", err)
	}

	interval := 5 * time.Minute
	if v := os.Getenv("SYNC_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("SYNC_INTERVAL: %w", err)
		}
		interval = d
	}

	deviceID := os.Getenv("DEVICE_ID")
	if deviceID == "" {
		host, _ := os.Hostname()
		deviceID = host
	}

	cfg := &Config{
		DatabasePath: getenv("DATABASE_PATH", "attendify.db"),
		RemoteURL:    os.Getenv("REMOTE_URL"),
		RemoteAuth:   os.Getenv("REMOTE_AUTH"),
		DeviceID:     deviceID,
		SyncInterval: interval,
		Location:     loc,
		HTTPAddr:     getenv("HTTP_ADDR", ":8080"),
		LogLevel:     getenv("LOG_LEVEL", "info"),
		Env:          getenv("ENV", "dev"),
		SentryDSN:    os.Getenv("SENTRY_DSN"),
		BotToken:     os.Getenv("BOT_TOKEN"),
		AdminIDs:     adminIDs,
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func parseIDs(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}
