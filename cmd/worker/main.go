package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"companion/internal/attendance"
	"companion/internal/config"
	"companion/internal/identity"
	"companion/internal/queue"
	"companion/internal/store"
)

// Worker consumes mark messages and refreshes the cached per-session
// statistics in Redis. The cache is cosmetic freshness for dashboards;
// the store stays the source of truth.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "companion:marks")
	}

	attStore := attendance.NewPGStore(db.Client)
	if err := attStore.EnsureSchema(ctx); err != nil {
		log.Fatalf("schema init failed: %v", err)
	}
	dir := identity.NewPGDirectory(db.Client)
	att := attendance.NewService(attStore, dir, cfg.WindowTTL)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		if msg.Type != queue.TypeMark {
			continue
		}

		mark, err := queue.DecodeMark(msg)
		if err != nil {
			log.Printf("bad mark message: %v", err)
			continue
		}

		stats, err := att.Stats(ctx, mark.SessionID)
		if err != nil {
			log.Printf("stats recompute failed for %s: %v", mark.SessionID, err)
			continue
		}

		payload, err := json.Marshal(stats)
		if err != nil {
			log.Printf("stats marshal failed for %s: %v", mark.SessionID, err)
			continue
		}
		if err := redisClient.CacheStats(ctx, mark.SessionID, payload, cfg.StatsCacheTTL); err != nil {
			log.Printf("stats cache write failed for %s: %v", mark.SessionID, err)
			continue
		}

		log.Printf("session %s: %d marked, %d%%", mark.SessionID, stats.Total, stats.Percentage)
	}

	log.Println("worker stopped")
}
