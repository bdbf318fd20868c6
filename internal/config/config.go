package config

import (
	"os"
	"strconv"
)

type Config struct {
	Addr        string
	DataFile    string
	DatabaseURL string
	ArchiveDir  string
	CORSOrigin  string
	// Search - optional, in-memory fallback is used when unset
	MeiliURL       string
	MeiliMasterKey string
	// Redis - optional, trends are recomputed per request when unset
	RedisURL string
	// Object storage - optional, report uploads disabled when unset
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

func Load() Config {
	return Config{
		Addr:           getenv("API_ADDR", ":8787"),
		DataFile:       getenv("NORTHSTAR_DATA_FILE", "./data/okrs.json"),
		DatabaseURL:    getenv("DATABASE_URL", ""),
		ArchiveDir:     getenv("NORTHSTAR_ARCHIVE_DIR", "./data/archive"),
		CORSOrigin:     getenv("NORTHSTAR_CORS_ORIGIN", "*"),
		MeiliURL:       getenv("MEILI_URL", ""),
		MeiliMasterKey: getenv("MEILI_MASTER_KEY", ""),
		RedisURL:       getenv("REDIS_URL", ""),
		MinioEndpoint:  getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "northstar-reports"),
		MinioUseSSL:    getenvBool("MINIO_USE_SSL", false),
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
