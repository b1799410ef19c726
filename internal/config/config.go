package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	Port           string
	Store          string
	MongoURI       string
	DBName         string
	JWTSecret      string
	AccessTokenTTL time.Duration
	TaxRate        float64
	DeliveryFee    float64
	RedisAddr      string
	RedisPassword  string
	CartTTL        time.Duration
	KafkaBrokers   []string
	KafkaTopic     string
	CORSOrigins    []string
	PublicBaseURL  string
	AdminEmail     string
	AdminPassword  string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = FromEnv()
}

// FromEnv reads the configuration without touching .env files.
func FromEnv() Config {
	return Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		Store:          strings.ToLower(getEnvOrDefault("STORE", "mongo")),
		MongoURI:       getEnvOrDefault("MONGO_URI", ""),
		DBName:         getEnvOrDefault("DB_NAME", "lamason"),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL: getDurationEnv("ACCESS_TOKEN_TTL", 60, time.Minute),
		TaxRate:        getFloatEnv("TAX_RATE", 0.08),
		DeliveryFee:    getFloatEnv("DELIVERY_FEE", 5.00),
		RedisAddr:      getEnvOrDefault("REDIS_ADDR", ""),
		RedisPassword:  getEnvOrDefault("REDIS_PASSWORD", ""),
		CartTTL:        getDurationEnv("CART_TTL", 72, time.Hour),
		KafkaBrokers:   getListEnv("KAFKA_BROKERS", nil),
		KafkaTopic:     getEnvOrDefault("KAFKA_TOPIC", "lamason.events"),
		CORSOrigins:    getListEnv("CORS_ORIGINS", []string{"*"}),
		PublicBaseURL:  strings.TrimRight(getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:5173"), "/"),
		AdminEmail:     strings.ToLower(getEnvOrDefault("ADMIN_EMAIL", "")),
		AdminPassword:  getEnvOrDefault("ADMIN_PASSWORD", ""),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

// getFloatEnv ignores negative values; a zero tax rate or fee is allowed.
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil && parsed >= 0 {
			return parsed
		}
		log.Printf("[CONFIG] [WARN] ignoring invalid %s=%q", key, value)
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}

	out := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
