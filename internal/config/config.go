package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	AWSRegion         string
	SQSNotifyQueueURL string

	JWTSecret          string
	JWTExpirationHours time.Duration

	HoldMinutes         int           // thời gian giữ chỗ tạm trước khi booking được chốt
	ExtensionCap        time.Duration // giới hạn gia hạn một lần
	RefundCutoffMinutes int           // hủy trước startTime ít nhất bấy nhiêu phút thì hoàn 100%
	SweepInterval       time.Duration // chu kỳ quét auto-checkout
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Cảnh báo: Không thể tải file .env: %v", err)
	}

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	jwtExpHours, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	holdMinutes, _ := strconv.Atoi(getEnv("HOLD_MINUTES", "5"))
	extensionCapHours, _ := strconv.Atoi(getEnv("EXTENSION_CAP_HOURS", "12"))
	refundCutoff, _ := strconv.Atoi(getEnv("REFUND_CUTOFF_MINUTES", "60"))
	sweepSeconds, _ := strconv.Atoi(getEnv("SWEEP_INTERVAL_SECONDS", "60"))

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "parkease"),
		DBPassword: getEnv("DB_PASSWORD", "parkease"),
		DBName:     getEnv("DB_NAME", "parkease_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		AWSRegion:         getEnv("AWS_REGION", "ap-southeast-1"),
		SQSNotifyQueueURL: getEnv("SQS_NOTIFY_QUEUE_URL", ""),

		JWTSecret:          getEnv("JWT_SECRET", "parkease-dev-secret"),
		JWTExpirationHours: time.Duration(jwtExpHours) * time.Hour,

		HoldMinutes:         holdMinutes,
		ExtensionCap:        time.Duration(extensionCapHours) * time.Hour,
		RefundCutoffMinutes: refundCutoff,
		SweepInterval:       time.Duration(sweepSeconds) * time.Second,
	}
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
