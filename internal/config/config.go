package config

import (
	"os"
	"strconv"
	"time"
)

// Config 应用配置
type Config struct {
	Env    string
	Port   string
	DBPath string

	// 目录服务（只读元数据）
	TMDBToken   string
	TMDBBaseURL string

	// 追踪服务 A：sync 风格接口，自己的 ID 空间
	TraktToken    string
	TraktClientID string
	TraktBaseURL  string

	// 追踪服务 B：目录服务账号，按媒体类型的 REST 资源，直接用目录 ID
	TMDBAccountID string
	TMDBSessionID string

	// 同步供应商: local | trakt | tmdb
	SyncProvider string

	// 批量导入回填的限流与并发
	ImportRateLimit float64
	ImportWorkers   int

	// 远端快照定时刷新间隔，0 表示关闭
	SyncInterval time.Duration
}

// Load 加载配置
func Load() *Config {
	rateLimit, _ := strconv.ParseFloat(getEnv("IMPORT_RATE_LIMIT", "10"), 64)
	if rateLimit <= 0 {
		rateLimit = 10
	}
	workers, _ := strconv.Atoi(getEnv("IMPORT_WORKERS", "4"))
	if workers <= 0 {
		workers = 4
	}
	syncMinutes, _ := strconv.Atoi(getEnv("SYNC_INTERVAL_MINUTES", "0"))

	provider := getEnv("SYNC_PROVIDER", "local")

	return &Config{
		Env:             getEnv("APP_ENV", "development"),
		Port:            getEnv("PORT", "5008"),
		DBPath:          getEnv("DB_PATH", "watchbase.db"),
		TMDBToken:       getEnv("TMDB_TOKEN", ""),
		TMDBBaseURL:     getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
		TraktToken:      getEnv("TRAKT_TOKEN", ""),
		TraktClientID:   getEnv("TRAKT_CLIENT_ID", ""),
		TraktBaseURL:    getEnv("TRAKT_BASE_URL", "https://api.trakt.tv"),
		TMDBAccountID:   getEnv("TMDB_ACCOUNT_ID", ""),
		TMDBSessionID:   getEnv("TMDB_SESSION_ID", ""),
		SyncProvider:    provider,
		ImportRateLimit: rateLimit,
		ImportWorkers:   workers,
		SyncInterval:    time.Duration(syncMinutes) * time.Minute,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
