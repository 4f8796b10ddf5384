package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	BookingDBHost    string
	BookingDBPort    string
	BookingDBName    string
	JaegerAddress    string
	SecretKey        string
	WeatherCacheHost string
	WeatherCachePort string
	HDFSUri          string
	WeatherPython    string
	WeatherScript    string
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPassword     string
	SMTPFrom         string
	LogFilePath      string
	CorsOrigin       string
}

// NewConfig reads the environment, loading a .env file first when one is
// present in the working directory.
func NewConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:             getEnv("BOOKING_SERVICE_PORT", "5000"),
		BookingDBHost:    getEnv("BOOKING_DB_HOST", "localhost"),
		BookingDBPort:    getEnv("BOOKING_DB_PORT", "27017"),
		BookingDBName:    getEnv("BOOKING_DB_NAME", "wanderlust"),
		JaegerAddress:    os.Getenv("JAEGER_ADDRESS"),
		SecretKey:        os.Getenv("SECRET_KEY"),
		WeatherCacheHost: os.Getenv("WEATHER_CACHE_HOST"),
		WeatherCachePort: getEnv("WEATHER_CACHE_PORT", "6379"),
		HDFSUri:          os.Getenv("HDFS_URI"),
		WeatherPython:    getEnv("WEATHER_PYTHON", "python3"),
		WeatherScript:    getEnv("WEATHER_SCRIPT", "weather_export.py"),
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         getEnvInt("SMTP_PORT", 587),
		SMTPUser:         os.Getenv("SMTP_USER"),
		SMTPPassword:     os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:         os.Getenv("SMTP_FROM"),
		LogFilePath:      os.Getenv("LOG_FILE_PATH"),
		CorsOrigin:       getEnv("CORS_ORIGIN", "*"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}
