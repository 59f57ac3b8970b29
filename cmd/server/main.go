package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"security-code-service/internal/audit"
	auditrepo "security-code-service/internal/audit/repository"
	challengehandler "security-code-service/internal/challenge/handler"
	challengerepo "security-code-service/internal/challenge/repository"
	challengeservice "security-code-service/internal/challenge/service"
	"security-code-service/internal/clock"
	"security-code-service/internal/config"
	"security-code-service/internal/db"
	"security-code-service/internal/dispatch"
	"security-code-service/internal/policy"
	"security-code-service/internal/policy/engine"
	"security-code-service/internal/security"
	"security-code-service/internal/server"
	"security-code-service/internal/telemetry"
	otelsetup "security-code-service/internal/telemetry/otel"
	verificationhandler "security-code-service/internal/verification/handler"
	verificationrepo "security-code-service/internal/verification/repository"
	verificationservice "security-code-service/internal/verification/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := otelsetup.NewProviders(ctx, cfg.OTLPEndpoint, "security-code-service", cfg.Env != "production")
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	metrics, err := telemetry.NewMetrics(providers.MeterProvider.Meter("security-code-service"))
	if err != nil {
		log.Fatalf("metrics: %v", err)
	}

	var (
		challengeStore    challengerepo.Repository
		verificationStore verificationrepo.Repository
		auditStore        auditrepo.Repository
		pinger            server.Pinger
	)
	switch cfg.StoreBackend {
	case config.StorePostgres:
		pool, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		challengeStore = challengerepo.NewPostgresRepository(pool)
		verificationStore = verificationrepo.NewPostgresRepository(pool)
		auditStore = auditrepo.NewPostgresRepository(pool)
		pinger = pool
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis: %v", err)
		}
		challengeStore = challengerepo.NewRedisRepository(client)
		verificationStore = verificationrepo.NewRedisRepository(client)
		auditStore = auditrepo.NewMemoryRepository()
		pinger = redisPinger{client}
	default:
		challengeStore = challengerepo.NewMemoryRepository()
		verificationStore = verificationrepo.NewMemoryRepository()
		auditStore = auditrepo.NewMemoryRepository()
	}
	recorder := audit.NewLogger(auditStore)

	var dispatcher dispatch.Dispatcher
	if cfg.DispatchMode == config.DispatchWebhook {
		dispatcher = dispatch.NewWebhookClient(cfg.DispatchWebhookURL, cfg.DispatchAPIKey)
	} else {
		dispatcher = dispatch.NewSimulated(0)
	}

	var evaluator policy.Evaluator = policy.NewSubstring(cfg.InstitutionDomain)
	if cfg.VerifyPolicyRego != "" {
		source, err := os.ReadFile(cfg.VerifyPolicyRego)
		if err != nil {
			log.Fatalf("policy: %v", err)
		}
		evaluator = engine.NewOPAEvaluator(string(source), cfg.InstitutionDomain)
	}

	var tokens *security.TokenProvider
	if cfg.ProofTokenSecret != "" {
		tokens = security.NewTokenProvider([]byte(cfg.ProofTokenSecret), "security-code-service", cfg.ProofTTL())
	}

	clk := clock.Real{}
	challengeSvc := challengeservice.NewService(challengeStore, clk, recorder, metrics, cfg.ChallengeCodeTTL(), cfg.MaxAttempts)
	verificationSvc := verificationservice.NewService(
		verificationStore, clk, dispatcher, evaluator, tokens, recorder, metrics,
		cfg.VerificationCodeTTL(), cfg.MaxAttempts,
	)

	c := cron.New()
	if _, err := c.AddFunc(cfg.CleanupInterval, func() {
		sweepCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := challengeSvc.CleanupExpired(sweepCtx); err != nil {
			log.Printf("challenge cleanup: %v", err)
		}
		if _, err := verificationSvc.CleanupExpired(sweepCtx); err != nil {
			log.Printf("verification cleanup: %v", err)
		}
	}); err != nil {
		log.Fatalf("cleanup schedule: %v", err)
	}
	c.Start()
	defer c.Stop()

	router := server.NewRouter(server.Deps{
		Challenge:    challengehandler.New(challengeSvc).Routes,
		Verification: verificationhandler.New(verificationSvc).Routes,
		Pinger:       pinger,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}

// redisPinger adapts the go-redis client to the readiness check.
type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
