package token

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/guardiao/base-security-service/internal/config"
)

// writeTestKeys generates a throwaway RSA key pair and writes it as PEM files.
func writeTestKeys(t *testing.T) (privPath, pubPath string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate RSA key: %v", err)
	}

	dir := t.TempDir()
	privPath = filepath.Join(dir, "private.pem")
	pubPath = filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	if err := os.WriteFile(privPath, privPEM, 0o600); err != nil {
		t.Fatalf("failed to write private key: %v", err)
	}

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("failed to marshal public key: %v", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	if err := os.WriteFile(pubPath, pubPEM, 0o600); err != nil {
		t.Fatalf("failed to write public key: %v", err)
	}
	return privPath, pubPath
}

func testService(t *testing.T, ttl time.Duration) *Service {
	t.Helper()
	privPath, pubPath := writeTestKeys(t)
	svc, err := NewService(config.TokenConfig{
		Issuer:         "https://guardiao.test",
		Audience:       "guardiao",
		PrivateKeyPath: privPath,
		PublicKeyPath:  pubPath,
		AccessTokenTTL: ttl,
	})
	if err != nil {
		t.Fatalf("failed to build token service: %v", err)
	}
	return svc
}

func TestService_MintAndParse(t *testing.T) {
	svc := testService(t, 15*time.Minute)

	userID := uuid.New()
	sessionID := uuid.New()
	signed, exp, err := svc.MintAccessToken(AccessTokenInput{
		UserID:      userID,
		SessionID:   sessionID,
		Name:        "Sentinela",
		Email:       "sentinela@guardiao.intraer",
		AccessLevel: "N1",
	})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if time.Until(exp) > 15*time.Minute || time.Until(exp) < 14*time.Minute {
		t.Errorf("unexpected expiry %v", exp)
	}

	claims, err := svc.Parse(signed)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.Subject != userID.String() {
		t.Errorf("expected subject %s, got %s", userID, claims.Subject)
	}
	if claims.SessionID != sessionID.String() {
		t.Errorf("expected session %s, got %s", sessionID, claims.SessionID)
	}
	if claims.AccessLevel != "N1" {
		t.Errorf("expected access level N1, got %s", claims.AccessLevel)
	}
	if claims.IsAdmin {
		t.Errorf("expected non-admin claims")
	}
}

func TestService_ParseRejectsExpired(t *testing.T) {
	svc := testService(t, -time.Minute)

	signed, _, err := svc.MintAccessToken(AccessTokenInput{
		UserID:      uuid.New(),
		SessionID:   uuid.New(),
		AccessLevel: "N1",
	})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if _, err := svc.Parse(signed); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestService_ParseRejectsForeignSignature(t *testing.T) {
	issuing := testService(t, 15*time.Minute)
	verifying := testService(t, 15*time.Minute) // different key pair

	signed, _, err := issuing.MintAccessToken(AccessTokenInput{
		UserID:      uuid.New(),
		SessionID:   uuid.New(),
		AccessLevel: "OM",
	})
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if _, err := verifying.Parse(signed); err == nil {
		t.Fatalf("expected token signed by another key to be rejected")
	}
}

func TestGenerateRefreshToken(t *testing.T) {
	svc := testService(t, time.Minute)

	plain, hashed, err := svc.GenerateRefreshToken()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if plain == "" || hashed == "" {
		t.Fatalf("expected non-empty token and hash")
	}
	if HashRefreshToken(plain) != hashed {
		t.Errorf("hash does not match the plain token")
	}

	otherPlain, otherHashed, err := svc.GenerateRefreshToken()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if plain == otherPlain || hashed == otherHashed {
		t.Errorf("expected unique refresh tokens")
	}
}
