package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Revocation registry backends
const (
	RevocationBackendMemory   = "memory"
	RevocationBackendRedis    = "redis"
	RevocationBackendPostgres = "postgres"
)

// Config holds the application configuration
type Config struct {
	// Key material, PEM encoded. Both literal newlines and the escaped
	// single-line form produced by env-var channels are accepted.
	JWTPrivateKey string
	JWTPublicKey  string

	// Token lifetimes
	JWTAccessDuration  time.Duration
	JWTRefreshDuration time.Duration

	// RSA key size used by the keygen tool
	RSAKeySize int

	// Revocation registry backend: memory, redis or postgres
	RevocationBackend string

	// Redis configuration (redis backend only)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Database configuration (postgres backend only)
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env from project root
	_ = godotenv.Load()

	accessDuration, err := time.ParseDuration(getEnv("JWT_ACCESS_TOKEN_DURATION", "15m"))
	if err != nil {
		return nil, err
	}

	refreshDuration, err := time.ParseDuration(getEnv("JWT_REFRESH_TOKEN_DURATION", "168h"))
	if err != nil {
		return nil, err
	}

	rsaKeySize, err := strconv.Atoi(getEnv("RSA_KEY_SIZE", "2048"))
	if err != nil {
		return nil, err
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, err
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, err
	}

	return &Config{
		JWTPrivateKey: getEnv("JWT_PRIVATE_KEY", ""),
		JWTPublicKey:  getEnv("JWT_PUBLIC_KEY", ""),

		JWTAccessDuration:  accessDuration,
		JWTRefreshDuration: refreshDuration,

		RSAKeySize: rsaKeySize,

		RevocationBackend: getEnv("REVOCATION_BACKEND", RevocationBackendMemory),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "tokens"),
	}, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
