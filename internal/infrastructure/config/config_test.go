package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.MaxBatchOps != 500 {
		t.Errorf("MaxBatchOps = %d, want 500", cfg.MaxBatchOps)
	}
	if cfg.EngineMaxRetries != 3 {
		t.Errorf("EngineMaxRetries = %d, want 3", cfg.EngineMaxRetries)
	}
	if cfg.JobLockTTL != 15*time.Minute {
		t.Errorf("JobLockTTL = %s, want 15m", cfg.JobLockTTL)
	}
	if cfg.PrincipalAccount == "" || cfg.FreightAccount == "" || cfg.MarginAccount == "" {
		t.Error("settlement accounts must have defaults")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MAX_BATCH_OPS", "50")
	t.Setenv("STORE_BACKEND", "memory")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.MaxBatchOps != 50 {
		t.Errorf("MaxBatchOps = %d, want 50", cfg.MaxBatchOps)
	}
	if cfg.StoreBackend != "memory" {
		t.Errorf("StoreBackend = %s, want memory", cfg.StoreBackend)
	}
}
