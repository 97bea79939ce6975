// shared/config/config.go
package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// CommonConfig holds infrastructure details used by every collection binary.
type CommonConfig struct {
	//Database (PostgreSQL) config
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string
	DB_HOST     string
	DB_PORT     string
	DB_SSLMODE  string
	//Kafka config
	KAFKA_TOPIC  string
	KAFKA_BROKER string
	//RabbitMQ config
	RABBITMQ_USER     string
	RABBITMQ_PASSWORD string
	RABBITMQ_HOST     string
	RABBITMQ_PORT     string
	//Temporal config
	TEMPORAL_HOST_PORT string
	TEMPORAL_NAMESPACE string
}

// LoadEnv loads variables from the given .env files (default ".env").
// A missing file is not an error; the process environment still applies.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Printf("[Config] No .env file loaded (%v); using process environment", err)
	}
}

// LoadCommonConfig returns the shared infrastructure config
func LoadCommonConfig() *CommonConfig {
	return &CommonConfig{
		DB_USER:     os.Getenv("DB_USER"),
		DB_PASSWORD: os.Getenv("DB_PASSWORD"),
		DB_HOST:     os.Getenv("DB_HOST"),
		DB_PORT:     os.Getenv("DB_PORT"),
		DB_NAME:     os.Getenv("DB_NAME"),
		DB_SSLMODE:  os.Getenv("DB_SSLMODE"),

		KAFKA_TOPIC:  os.Getenv("KAFKA_TOPIC"),
		KAFKA_BROKER: os.Getenv("KAFKA_BROKER"),

		RABBITMQ_USER:     os.Getenv("RABBITMQ_USER"),
		RABBITMQ_PASSWORD: os.Getenv("RABBITMQ_PASSWORD"),
		RABBITMQ_HOST:     os.Getenv("RABBITMQ_HOST"),
		RABBITMQ_PORT:     os.Getenv("RABBITMQ_PORT"),

		TEMPORAL_HOST_PORT: os.Getenv("TEMPORAL_HOST_PORT"),
		TEMPORAL_NAMESPACE: os.Getenv("TEMPORAL_NAMESPACE"),
	}
}

// HasDB reports whether a database is configured. Without one the services
// fall back to the in-memory store.
func (c *CommonConfig) HasDB() bool {
	return c.DB_HOST != "" && c.DB_NAME != ""
}

// GetDBURL formats the config into a PostgreSQL connection string
func (c *CommonConfig) GetDBURL() string {
	sslmode := c.DB_SSLMODE
	if sslmode == "" {
		sslmode = "disable"
	}
	port := c.DB_PORT
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.DB_USER, c.DB_PASSWORD, c.DB_HOST, port, c.DB_NAME, sslmode)
}

// HasRabbitMQ reports whether RabbitMQ credentials are configured.
func (c *CommonConfig) HasRabbitMQ() bool {
	return c.RABBITMQ_USER != ""
}

// GetRabbitMQURL formats the config into a RabbitMQ connection string
func (c *CommonConfig) GetRabbitMQURL() string {
	// standard ports when missing
	host := c.RABBITMQ_HOST
	if host == "" {
		host = "localhost"
	}
	port := c.RABBITMQ_PORT
	if port == "" {
		port = "5672"
	}

	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.RABBITMQ_USER, c.RABBITMQ_PASSWORD, host, port)
}

// GetTemporalHostPort returns the Temporal frontend address, "" when disabled.
func (c *CommonConfig) GetTemporalHostPort() string {
	return c.TEMPORAL_HOST_PORT
}
