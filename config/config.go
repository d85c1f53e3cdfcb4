package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"reservas/constants"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds every setting read from the environment
type Config struct {
	Port                  string
	Env                   string
	JWTSecret             string
	RedisAddr             string
	RedisUser             string
	RedisPassword         string
	CloudinaryURL         string
	Location              *time.Location
	RoomLetters           []string
	BoundaryPolicy        string
	DefaultEstimatedPrice decimal.Decimal
	StrictStatus          bool
	PendingExpiryEnabled  bool
	CacheTTL              time.Duration
	LockTTL               time.Duration
	LogLevel              string
}

// LoadEnv loads variables from `.env` when present
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env not loaded, using process environment: %v", err)
	}
}

func GetEnv(key string) string {
	return os.Getenv(key)
}

func getEnvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Warning: %s=%q is not a boolean, using %v", key, v, def)
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Warning: %s=%q is not a number, using %d", key, v, def)
		return def
	}
	return n
}

// ParseRoomLetters turns "ABC" or "A,B,C" into upper-case unique letters.
func ParseRoomLetters(s string) []string {
	seen := make(map[string]bool)
	var letters []string
	for _, r := range strings.ToUpper(s) {
		if r < 'A' || r > 'Z' {
			continue
		}
		l := string(r)
		if !seen[l] {
			seen[l] = true
			letters = append(letters, l)
		}
	}
	return letters
}

// Load builds a Config from the environment
func Load() *Config {
	loc, err := time.LoadLocation(getEnvDefault("TIMEZONE", "UTC"))
	if err != nil {
		log.Printf("Warning: invalid TIMEZONE, using UTC: %v", err)
		loc = time.UTC
	}

	fallback, err := decimal.NewFromString(getEnvDefault("DEFAULT_ESTIMATED_PRICE", "1500"))
	if err != nil || fallback.IsNegative() {
		log.Printf("Warning: invalid DEFAULT_ESTIMATED_PRICE, using 1500")
		fallback = decimal.NewFromInt(1500)
	}

	return &Config{
		Port:                  getEnvDefault("PORT", "8083"),
		Env:                   getEnvDefault("ENV", "dev"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisUser:             os.Getenv("REDIS_USER"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		CloudinaryURL:         os.Getenv("CLOUDINARY_URL"),
		Location:              loc,
		RoomLetters:           ParseRoomLetters(getEnvDefault("ROOM_LETTERS", constants.DefaultRoomLetters)),
		BoundaryPolicy:        getEnvDefault("BOUNDARY_POLICY", "same-day-turnover"),
		DefaultEstimatedPrice: fallback,
		StrictStatus:          getEnvBool("STRICT_STATUS", false),
		PendingExpiryEnabled:  getEnvBool("PENDING_EXPIRY_ENABLED", false),
		CacheTTL:              time.Duration(getEnvInt("CACHE_TTL_MINUTES", 10)) * time.Minute,
		LockTTL:               time.Duration(getEnvInt("LOCK_TTL_SECONDS", 15)) * time.Second,
		LogLevel:              getEnvDefault("LOG_LEVEL", "info"),
	}
}
