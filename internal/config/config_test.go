package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.StoreBackend != StoreMemory {
		t.Errorf("StoreBackend = %q, want %q", cfg.StoreBackend, StoreMemory)
	}
	if cfg.ChallengeTTL != "10m" {
		t.Errorf("ChallengeTTL = %q, want %q", cfg.ChallengeTTL, "10m")
	}
	if cfg.VerificationTTL != "5m" {
		t.Errorf("VerificationTTL = %q, want %q", cfg.VerificationTTL, "5m")
	}
	if cfg.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.MaxAttempts)
	}
	if cfg.DispatchMode != DispatchSimulated {
		t.Errorf("DispatchMode = %q, want %q", cfg.DispatchMode, DispatchSimulated)
	}
	if cfg.InstitutionDomain != "@institution.edu" {
		t.Errorf("InstitutionDomain = %q, want default", cfg.InstitutionDomain)
	}
	if cfg.CleanupInterval != "@every 1m" {
		t.Errorf("CleanupInterval = %q, want default", cfg.CleanupInterval)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("INSTITUTION_DOMAIN", "@school.example")
	os.Setenv("MAX_ATTEMPTS", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.InstitutionDomain != "@school.example" {
		t.Errorf("InstitutionDomain = %q, want %q", cfg.InstitutionDomain, "@school.example")
	}
	if cfg.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.MaxAttempts)
	}
}

func TestLoad_StoreBackendValidation(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
		err  bool
	}{
		{"memory ok", map[string]string{"STORE_BACKEND": "memory"}, false},
		{"postgres without dsn", map[string]string{"STORE_BACKEND": "postgres"}, true},
		{"postgres with dsn", map[string]string{"STORE_BACKEND": "postgres", "DATABASE_URL": "postgres://localhost/codes"}, false},
		{"redis without addr", map[string]string{"STORE_BACKEND": "redis"}, true},
		{"redis with addr", map[string]string{"STORE_BACKEND": "redis", "REDIS_ADDR": "localhost:6379"}, false},
		{"unknown backend", map[string]string{"STORE_BACKEND": "dynamo"}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tc.env {
				os.Setenv(k, v)
			}
			_, err := Load()
			if tc.err && err == nil {
				t.Fatal("Load should return error")
			}
			if !tc.err && err != nil {
				t.Fatalf("Load: %v", err)
			}
		})
	}
}

func TestLoad_DispatchModeValidation(t *testing.T) {
	os.Clearenv()
	os.Setenv("DISPATCH_MODE", "webhook")

	if _, err := Load(); err == nil {
		t.Fatal("Load should require DISPATCH_WEBHOOK_URL for webhook mode")
	}

	os.Setenv("DISPATCH_WEBHOOK_URL", "https://mailer.internal/send")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DispatchMode != DispatchWebhook {
		t.Errorf("DispatchMode = %q, want webhook", cfg.DispatchMode)
	}

	os.Setenv("DISPATCH_MODE", "carrier-pigeon")
	if _, err := Load(); err == nil {
		t.Fatal("Load should reject unknown DISPATCH_MODE")
	}
}

func TestLoad_MaxAttemptsMustBePositive(t *testing.T) {
	os.Clearenv()
	os.Setenv("MAX_ATTEMPTS", "-1")

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject non-positive MAX_ATTEMPTS")
	}
}

func TestChallengeCodeTTL(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"valid", "20m", 20 * time.Minute},
		{"invalid falls back", "soon", 10 * time.Minute},
		{"negative falls back", "-5m", 10 * time.Minute},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("CHALLENGE_TTL", tc.value)
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got := cfg.ChallengeCodeTTL(); got != tc.want {
				t.Errorf("ChallengeCodeTTL = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestVerificationCodeTTL(t *testing.T) {
	os.Clearenv()
	os.Setenv("VERIFICATION_TTL", "90s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.VerificationCodeTTL(); got != 90*time.Second {
		t.Errorf("VerificationCodeTTL = %v, want 90s", got)
	}
}

func TestProofTTL_InvalidFallsBack(t *testing.T) {
	os.Clearenv()
	os.Setenv("PROOF_TOKEN_TTL", "invalid")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.ProofTTL(); got != 5*time.Minute {
		t.Errorf("ProofTTL = %v, want 5m (default)", got)
	}
}
