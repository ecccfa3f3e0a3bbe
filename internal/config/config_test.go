// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{
		"WORKER_NAME", "SPREADSHEET_ID", "SERVICE_ACCOUNT_FILE", "CONFIG_PATH",
		"GATEWAY_BASE_INTERVAL", "ELECTION_RENEW_INTERVAL", "ELECTION_TTL",
	} {
		os.Unsetenv(v)
	}
}

func TestLoadMissingRequiredFields(t *testing.T) {
	clearEnv(t)
	if _, err := Load(); err == nil {
		t.Fatal("expected error when WORKER_NAME/SPREADSHEET_ID/SERVICE_ACCOUNT_FILE are unset")
	}
}

func TestLoadAppliesDefaultsAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("WORKER_NAME", "alpha")
	t.Setenv("SPREADSHEET_ID", "sheet-123")
	t.Setenv("SERVICE_ACCOUNT_FILE", "/etc/secrets/sa.json")
	t.Setenv("GATEWAY_BASE_INTERVAL", "2s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WorkerName != "alpha" {
		t.Errorf("WorkerName = %q, want alpha", cfg.WorkerName)
	}
	if cfg.Gateway.BaseInterval != 2*time.Second {
		t.Errorf("Gateway.BaseInterval = %s, want 2s", cfg.Gateway.BaseInterval)
	}
	if cfg.Election.TTL != 300*time.Second {
		t.Errorf("Election.TTL = %s, want default 300s", cfg.Election.TTL)
	}
}

func TestValidateCrossFieldRetryBounds(t *testing.T) {
	cfg := defaultConfig()
	cfg.WorkerName = "alpha"
	cfg.SpreadsheetID = "sheet-123"
	cfg.ServiceAccountFile = "/etc/secrets/sa.json"
	cfg.Gateway.RetryBaseInterval = 40 * time.Second
	cfg.Gateway.RetryMaxInterval = 32 * time.Second

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when retry_base_interval exceeds retry_max_interval")
	}
}

func TestValidateCrossFieldRenewBeforeTTL(t *testing.T) {
	cfg := defaultConfig()
	cfg.WorkerName = "alpha"
	cfg.SpreadsheetID = "sheet-123"
	cfg.ServiceAccountFile = "/etc/secrets/sa.json"
	cfg.Election.RenewInterval = 400 * time.Second
	cfg.Election.TTL = 300 * time.Second

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when renew_interval >= ttl")
	}
}
