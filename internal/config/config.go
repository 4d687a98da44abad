package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}
	ServiceConfig = Load()
}

var ServiceConfig *Config

type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	RabbitMQ  RabbitMQConfig
	Consul    ConsulConfig
	JWT       JWTConfig
	Google    GoogleConfig
	Storage   StorageConfig
	Exam      ExamConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	GRPCPort       string
	Host           string
	ServiceName    string
	ServiceAddress string
	ServiceID      string
	FrontendURL    string
	LogDir         string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowOrigins   []string
}

type MongoDBConfig struct {
	URI      string
	Database string
	PoolSize uint64
	Timeout  time.Duration
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	URI      string
	Exchange string
}

type ConsulConfig struct {
	ConsulAddress string
}

type JWTConfig struct {
	Secret    string
	ExpiresIn time.Duration
	Issuer    string
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	StateTTL     time.Duration
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	PublicURL string
	MaxBytes  int64
}

type ExamConfig struct {
	DefaultLimit     int
	MaxLimit         int
	PassThreshold    float64
	IdempotencyTTL   time.Duration
	ResetTokenTTL    time.Duration
	SettingsCacheTTL time.Duration
}

type RateLimitConfig struct {
	AuthMax    int
	AuthWindow time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "5000"),
			GRPCPort:       getEnv("GRPC_PORT", ""),
			Host:           getEnv("HOST", "0.0.0.0"),
			ServiceName:    getEnv("SERVICE_NAME", "proviquiz-api"),
			ServiceAddress: getEnv("SERVICE_ADDRESS", "localhost"),
			ServiceID:      getEnv("SERVICE_NAME", "proviquiz-api") + "-" + getEnv("HOSTNAME", "local"),
			FrontendURL:    strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
			LogDir:         getEnv("LOG_DIR", "/proviquiz/log/api"),
			ReadTimeout:    getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
			AllowOrigins:   getEnvAsList("CORS_ALLOW_ORIGINS", []string{"*"}),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGO_URI", ""),
			Database: getEnv("MONGO_DB", "proviQuiz"),
			PoolSize: getEnvAsUint64("MONGODB_POOL_SIZE", 100),
			Timeout:  getEnvAsDuration("MONGODB_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RabbitMQ: RabbitMQConfig{
			URI:      getEnv("RABBITMQ_URI", ""),
			Exchange: getEnv("RABBITMQ_EXCHANGE", "proviquiz.events"),
		},
		Consul: ConsulConfig{
			ConsulAddress: getEnv("CONSUL_ADDRESS", ""),
		},
		JWT: JWTConfig{
			Secret:    getEnv("JWT_SECRET", "dev-secret-change-me"),
			ExpiresIn: getEnvAsDuration("JWT_EXPIRES_IN", 7*24*time.Hour),
			Issuer:    getEnv("JWT_ISSUER", "proviquiz"),
		},
		Google: GoogleConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:5000/api/auth/google/callback"),
			StateTTL:     getEnvAsDuration("GOOGLE_STATE_TTL", 10*time.Minute),
		},
		Storage: StorageConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "question-images"),
			Region:    getEnv("MINIO_REGION", "us-east-1"),
			UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
			PublicURL: strings.TrimRight(getEnv("MINIO_PUBLIC_URL", ""), "/"),
			MaxBytes:  int64(getEnvAsInt("MINIO_MAX_UPLOAD_BYTES", 5*1024*1024)),
		},
		Exam: ExamConfig{
			DefaultLimit:     getEnvAsInt("EXAM_DEFAULT_LIMIT", 20),
			MaxLimit:         getEnvAsInt("EXAM_MAX_LIMIT", 100),
			PassThreshold:    getEnvAsFloat("EXAM_PASS_THRESHOLD", 0.6),
			IdempotencyTTL:   getEnvAsDuration("EXAM_IDEMPOTENCY_TTL", 24*time.Hour),
			ResetTokenTTL:    getEnvAsDuration("RESET_TOKEN_TTL", 15*time.Minute),
			SettingsCacheTTL: getEnvAsDuration("SETTINGS_CACHE_TTL", 5*time.Minute),
		},
		RateLimit: RateLimitConfig{
			AuthMax:    getEnvAsInt("AUTH_RATE_LIMIT_MAX", 100),
			AuthWindow: getEnvAsDuration("AUTH_RATE_LIMIT_WINDOW", 15*time.Minute),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			log.Printf("error retrieve int env var: %s", err)
			return defaultValue
		}
		return intVal
	}
	return defaultValue
}

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	if value, exists := os.LookupEnv(key); exists {
		uintVal, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			log.Printf("error retrieve uint64 env var: %s", err)
			return defaultValue
		}
		return uintVal
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		floatVal, err := strconv.ParseFloat(value, 64)
		if err != nil {
			log.Printf("error retrieve float env var: %s", err)
			return defaultValue
		}
		return floatVal
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			log.Printf("error retrieve bool env var: %s", err)
			return defaultValue
		}
		return boolVal
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		duration, err := time.ParseDuration(value)
		if err != nil {
			log.Printf("error retrieve duration env var: %s", err)
			return defaultValue
		}
		return duration
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var items []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
