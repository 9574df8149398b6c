package config

import (
	"errors"
	"testing"
	"time"
)

const validToken = "123456789:AAHIY-8HkJGiLNcbMz2Rg57j1awYsncYySw"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", validToken)
	t.Setenv("OPERATOR_ID", "8547356841")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OperatorID != 8547356841 {
		t.Errorf("OperatorID = %d", cfg.OperatorID)
	}
	if cfg.StateTTL != 24*time.Hour {
		t.Errorf("StateTTL = %v, want 24h", cfg.StateTTL)
	}
	if cfg.StateMaxUsers != 10000 {
		t.Errorf("StateMaxUsers = %d, want 10000", cfg.StateMaxUsers)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("RedisAddr = %q, want empty", cfg.RedisAddr)
	}
}

func TestLoadFailsFast(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		operator string
		wantErr  error
	}{
		{name: "missing token", token: "", operator: "1"},
		{name: "missing operator", token: validToken, operator: ""},
		{name: "operator not a number", token: validToken, operator: "admin"},
		{name: "malformed token", token: "not-a-token", operator: "1", wantErr: ErrInvalidToken},
		{name: "zero operator", token: validToken, operator: "0", wantErr: ErrInvalidOperator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TELEGRAM_TOKEN", tt.token)
			t.Setenv("OPERATOR_ID", tt.operator)

			cfg, err := Load()
			if err == nil {
				t.Fatalf("expected error, got config %+v", cfg)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRejectsBadStateSettings(t *testing.T) {
	base := Config{
		TelegramToken:      validToken,
		OperatorID:         1,
		StateTTL:           time.Hour,
		StateSweepInterval: time.Minute,
	}

	cfg := base
	cfg.StateSweepInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero sweep interval accepted")
	}

	cfg = base
	cfg.StateMaxUsers = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative max users accepted")
	}

	if err := base.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}
