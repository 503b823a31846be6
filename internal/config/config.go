package config

import (
	"os"
	"strconv"
)

// AWSConfig holds settings shared by every AWS client.
// Credentials are resolved by the SDK default chain and are never read here.
type AWSConfig struct {
	Region string
	// EndpointURL overrides the service endpoint (e.g. a local stack). Empty uses AWS.
	EndpointURL string
}

// RecognitionConfig holds settings for the face recognition collection.
// A zero MaxFaces leaves the cap to the service, which indexes every detected face.
type RecognitionConfig struct {
	CollectionID   string
	MatchMode      string
	MaxFaces       int
	QualityFilter  string
	MatchThreshold float64
}

// StoreConfig selects and configures the person record store.
type StoreConfig struct {
	Backend   string
	TableName string
}

// DatabaseConfig holds PostgreSQL connection settings for the postgres store backend.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// ObjectStoreConfig holds settings for reading s3:// image URLs.
// Empty keys fall back to AWS environment credentials and then the IAM role.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// FetchConfig bounds image downloads in the query pipeline.
type FetchConfig struct {
	MaxBytes   int64
	TimeoutSec int
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level    string
	TimeZone string
}

// AppConfig is the centralized configuration struct for all binaries.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Port        string
	AWS         AWSConfig
	Recognition RecognitionConfig
	Store       StoreConfig
	Database    DatabaseConfig
	ObjectStore ObjectStoreConfig
	Fetch       FetchConfig
	Log         LogConfig
}

const (
	MatchModeSearch = "search"
	MatchModeIndex  = "index"

	StoreBackendDynamoDB = "dynamodb"
	StoreBackendPostgres = "postgres"
)

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Required values (table, collection) are checked by the components that use them.
func Load() *AppConfig {
	region := getEnv("AWS_REGION", getEnv("AWS_DEFAULT_REGION", ""))

	return &AppConfig{
		Port: getEnv("PORT", "8080"),
		AWS: AWSConfig{
			Region:      region,
			EndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		},
		Recognition: RecognitionConfig{
			CollectionID:   getEnv("COLLECTION_NAME", ""),
			MatchMode:      getEnv("MATCH_MODE", MatchModeSearch),
			MaxFaces:       getEnvInt("REKOGNITION_MAX_FACES", 0),
			QualityFilter:  getEnv("REKOGNITION_QUALITY_FILTER", "AUTO"),
			MatchThreshold: getEnvFloat("REKOGNITION_MATCH_THRESHOLD", 80),
		},
		Store: StoreConfig{
			Backend:   getEnv("STORE_BACKEND", StoreBackendDynamoDB),
			TableName: getEnv("TABLE_NAME", ""),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint:  getEnv("OBJECT_STORE_ENDPOINT", "s3.amazonaws.com"),
			AccessKey: getEnv("OBJECT_STORE_ACCESS_KEY", ""),
			SecretKey: getEnv("OBJECT_STORE_SECRET_KEY", ""),
			Region:    getEnv("OBJECT_STORE_REGION", region),
			UseSSL:    getEnvBool("OBJECT_STORE_USE_SSL", true),
		},
		Fetch: FetchConfig{
			MaxBytes:   int64(getEnvInt("FETCH_MAX_BYTES", 5*1024*1024)),
			TimeoutSec: getEnvInt("FETCH_TIMEOUT_SEC", 0),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			TimeZone: getEnv("LOG_TIMEZONE", "UTC"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}
