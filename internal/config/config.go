package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerAddr    string
	RedisAddr     string
	RedisPassword string
	JWTSecret     []byte

	// Reliable delivery: an unacked message is retransmitted after
	// AckTimeout, at most MaxRetries times. The sweep runs every
	// AckTimeout/2.
	AckTimeout time.Duration
	MaxRetries int

	PingInterval   time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	SendBuffer     int
	MaxMessageSize int64

	GuestTokenTTL time.Duration
	TokenTTL      time.Duration
}

func Load() *Config {
	cfg := &Config{
		ServerAddr:     getenv("SERVER_ADDR", ":8081"),
		RedisAddr:      getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		JWTSecret:      []byte(os.Getenv("JWT_SECRET")),
		AckTimeout:     getduration("ACK_TIMEOUT", 5*time.Second),
		MaxRetries:     getint("MAX_RETRIES", 3),
		PingInterval:   54 * time.Second,
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   10 * time.Second,
		SendBuffer:     256,
		MaxMessageSize: 64 * 1024,
		GuestTokenTTL:  30 * time.Minute,
		TokenTTL:       time.Hour,
	}
	if len(cfg.JWTSecret) == 0 {
		log.Println("JWT_SECRET is not set; all connects will be rejected")
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getduration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
