package config

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const DefaultOrdersTopic = "orders"

// Load reads an optional .env file. Variables already set in the
// environment win.
func Load() {
	_ = godotenv.Load()
}

func Getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func GetenvBool(key string, def bool) bool {
	v, err := strconv.ParseBool(Getenv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func GetenvInt(key string, def int) int {
	v, err := strconv.Atoi(Getenv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func GetenvDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(Getenv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func OrdersTopic() string {
	return Getenv("ORDERS_TOPIC", DefaultOrdersTopic)
}

func PostgresDSN() string {
	return "host=" + Getenv("DB_HOST", "localhost") +
		" port=" + Getenv("DB_PORT", "5432") +
		" user=" + Getenv("DB_USER", "postgres") +
		" password=" + os.Getenv("DB_PASSWORD") +
		" dbname=" + Getenv("DB_NAME", "qrmenu") +
		" sslmode=" + Getenv("DB_SSLMODE", "disable")
}

func MustInitPostgres() *sql.DB {
	db, err := sql.Open("postgres", PostgresDSN())
	if err != nil {
		zap.L().Fatal("Failed to connect to database", zap.Error(err))
	}

	if err = db.Ping(); err != nil {
		zap.L().Fatal("Failed to ping database", zap.Error(err))
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return db
}

func MustInitRedis() *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     Getenv("REDIS_HOST", "localhost") + ":" + Getenv("REDIS_PORT", "6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		zap.L().Fatal("Failed to connect to Redis", zap.Error(err))
	}

	return client
}

func kafkaBrokers() []string {
	return strings.Split(Getenv("KAFKA_BROKER", "localhost:9092"), ",")
}

// NewKafkaTailReader joins a group of its own starting at the newest offset,
// so every instance sees every partition but never messages committed
// before it started.
func NewKafkaTailReader(topic, instanceID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     kafkaBrokers(),
		Topic:       topic,
		GroupID:     topic + "-tail-" + instanceID,
		StartOffset: kafka.LastOffset,
		MaxWait:     500 * time.Millisecond,
	})
}

func NewKafkaWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(kafkaBrokers()...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

// MustInitS3 builds an S3 client. AWS_S3_ENDPOINT points it at a
// compatible store (MinIO, LocalStack) using path-style addressing.
func MustInitS3(ctx context.Context) *s3.Client {
	awsConfig, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(Getenv("AWS_REGION", "eu-central-1")))
	if err != nil {
		zap.L().Fatal("Failed to load AWS config", zap.Error(err))
	}

	endpoint := os.Getenv("AWS_S3_ENDPOINT")
	return s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		o.UsePathStyle = true
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}
