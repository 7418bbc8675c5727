package auth

import (
	"testing"
	"time"
)

func chatTokenConfig() TokenConfig {
	return TokenConfig{Secret: "relay-secret", Expiry: time.Hour, Issuer: "chat-relay-server"}
}

func TestCreateAndVerifyToken(t *testing.T) {
	cfg := chatTokenConfig()
	tok, err := CreateToken("alice", cfg)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	claims, err := VerifyToken(tok, cfg)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.UserID != "alice" {
		t.Fatalf("expected alice, got %q", claims.UserID)
	}
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	cfg := chatTokenConfig()
	tok, err := CreateToken("alice", cfg)
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	other := cfg
	other.Secret = "not-the-relay-secret"
	if _, err := VerifyToken(tok, other); err == nil {
		t.Fatalf("expected verification to fail under a different secret")
	}
}

func TestVerifyToken_Garbage(t *testing.T) {
	if _, err := VerifyToken("not-a-token", chatTokenConfig()); err == nil {
		t.Fatalf("expected error for a malformed token")
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	cfg := chatTokenConfig()
	cfg.Expiry = -time.Second
	if _, err := CreateToken("alice", cfg); err == nil {
		t.Fatalf("expected error for an already-expired token")
	}
}
