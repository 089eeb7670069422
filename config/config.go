package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
type Config struct {
	HTTPPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBLogLevel string // silent, error, warn, info

	// Redis配置，RedisHost 为空时禁用缓存和变更广播
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// MinIO配置
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool
	// PublicBaseURL 是对象的公开访问前缀，公开 URL = PublicBaseURL + "/" + objectKey
	PublicBaseURL string
	// PrivateBucket 为 true 时返回预签名 URL 而不是拼接的公开 URL
	PrivateBucket bool
	PresignExpiry time.Duration
	// FFprobePath 用于读取上传音频的时长，为空时不探测
	FFprobePath string

	// 管理员认证，JWTSecret 为空时不启用认证
	AdminUsername     string
	AdminPasswordHash string
	JWTSecret         string
	TokenTTL          time.Duration

	// 日志配置
	LogLevel      string
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int

	// 函数调用客户端（CLI 使用）
	FunctionBaseURL string
	FunctionToken   string
	ClientTimeout   time.Duration
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// godotenv.Load() 不会覆盖已存在的环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	bucket := getEnv("MINIO_BUCKET", "zencms")
	endpoint := getEnv("MINIO_ENDPOINT", "127.0.0.1:9000")
	useSSL := getEnvBool("MINIO_USE_SSL", false)

	scheme := "http"
	if useSSL {
		scheme = "https"
	}

	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "zencms"),
		DBLogLevel: getEnv("DB_LOG_LEVEL", "warn"),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		MinioEndpoint:  endpoint,
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    bucket,
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:    useSSL,
		PublicBaseURL:  strings.TrimRight(getEnv("STORAGE_PUBLIC_BASE_URL", scheme+"://"+endpoint+"/"+bucket), "/"),
		PrivateBucket:  getEnvBool("STORAGE_PRIVATE", false),
		PresignExpiry:  getEnvDuration("STORAGE_PRESIGN_EXPIRY", 2*time.Hour),
		FFprobePath:    getEnv("FFPROBE_PATH", "ffprobe"),

		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		TokenTTL:          getEnvDuration("TOKEN_TTL", 12*time.Hour),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 30),

		FunctionBaseURL: strings.TrimRight(getEnv("ZENCMS_URL", "http://127.0.0.1:8080"), "/"),
		FunctionToken:   getEnv("ZENCMS_TOKEN", ""),
		ClientTimeout:   getEnvDuration("ZENCMS_TIMEOUT", 10*time.Second),
	}
}

// RedisEnabled reports whether a Redis host is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// AuthEnabled reports whether JWT protection is configured.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}
