package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                string
	AllowedOrigin       string
	ShopName            string
	LocalDBPath         string
	RemoteDatabaseURL   string
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	SyncIntervalSeconds int
	AuthSecret          string
	DeviceID            string
	DeviceKeyHash       string
	AccessTokenTTLHours int
}

// Load reads configuration from the environment, with a .env file as a
// convenience for development. A counter terminal runs with no remote
// database configured and stays fully offline.
func Load() Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	syncInterval, err := strconv.Atoi(getEnv("SYNC_INTERVAL_SECONDS", "30"))
	if err != nil || syncInterval < 1 {
		syncInterval = 30
	}
	tokenTTL, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_HOURS", "12"))
	if err != nil || tokenTTL < 1 {
		tokenTTL = 12
	}

	cfg := Config{
		Port:                getEnv("PORT", "8080"),
		AllowedOrigin:       getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		ShopName:            getEnv("SHOP_NAME", "PonselPOS"),
		LocalDBPath:         getEnv("LOCAL_DB_PATH", "ponselpos.db"),
		RemoteDatabaseURL:   os.Getenv("REMOTE_DATABASE_URL"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             redisDB,
		SyncIntervalSeconds: syncInterval,
		AuthSecret:          strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		DeviceID:            strings.TrimSpace(getEnv("DEVICE_ID", "kasir-1")),
		DeviceKeyHash:       strings.TrimSpace(os.Getenv("DEVICE_KEY_HASH")),
		AccessTokenTTLHours: tokenTTL,
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
