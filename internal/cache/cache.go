package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client is nil when Redis is unavailable; all helpers degrade to the
// underlying data source in that case.
var Client *redis.Client

// Init connects to Redis. A failed connection is a warning, not a fatal:
// the application runs uncached.
func Init(addr string) {
	if addr == "" {
		log.Println("REDIS_URL not set, running without cache")
		return
	}

	Client = redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis connection warning: %v (continuing without cache)", err)
		Client = nil
	} else {
		log.Println("Redis connected successfully")
	}
}

// Close releases the Redis connection.
func Close() {
	if Client != nil {
		_ = Client.Close()
		Client = nil
	}
}
