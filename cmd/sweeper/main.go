// sweeper deletes expired codes from the configured store on a schedule. Use
// it when the API server runs with its in-process sweep disabled, or as a
// one-shot janitor with -once.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	challengerepo "security-code-service/internal/challenge/repository"
	"security-code-service/internal/config"
	"security-code-service/internal/db"
	verificationrepo "security-code-service/internal/verification/repository"
)

func main() {
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		challenges    challengerepo.Repository
		verifications verificationrepo.Repository
	)
	switch cfg.StoreBackend {
	case config.StorePostgres:
		pool, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		challenges = challengerepo.NewPostgresRepository(pool)
		verifications = verificationrepo.NewPostgresRepository(pool)
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis: %v", err)
		}
		challenges = challengerepo.NewRedisRepository(client)
		verifications = verificationrepo.NewRedisRepository(client)
	default:
		// Memory stores are process-local; a standalone sweeper has nothing to sweep.
		log.Fatal("sweeper requires STORE_BACKEND=postgres or redis")
	}

	sweep := func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		now := time.Now().UTC()
		if n, err := challenges.DeleteExpired(sweepCtx, now); err != nil {
			log.Printf("challenge sweep: %v", err)
		} else if n > 0 {
			log.Printf("challenge sweep: removed %d", n)
		}
		if n, err := verifications.DeleteExpired(sweepCtx, now); err != nil {
			log.Printf("verification sweep: %v", err)
		} else if n > 0 {
			log.Printf("verification sweep: removed %d", n)
		}
	}

	if *once {
		sweep()
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.CleanupInterval, sweep); err != nil {
		log.Fatalf("sweep schedule: %v", err)
	}
	c.Start()
	log.Printf("sweeper running every %q", cfg.CleanupInterval)

	<-ctx.Done()
	c.Stop()
	log.Println("sweeper stopped")
}
