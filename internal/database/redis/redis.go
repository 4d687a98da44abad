package redis

import (
	"context"
	"log"
	"time"

	"github.com/ntwari02/proviQuiz/internal/config"

	"github.com/redis/go-redis/v9"
)

var Redis_Client *redis.Client

// Connect builds the shared client. The client is returned even when the ping
// fails; the error lets callers pick another cache.
func Connect(cfg config.RedisConfig) (*redis.Client, error) {
	Redis_Client = redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := Redis_Client.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Error connect to Redis: %s", err)
		return Redis_Client, err
	}
	log.Println("Successfully connected to Redis")
	return Redis_Client, nil
}

func Close() {
	if Redis_Client != nil {
		if err := Redis_Client.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
		}
	}
}
