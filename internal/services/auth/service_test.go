package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/guardiao/base-security-service/internal/audit"
	"github.com/guardiao/base-security-service/internal/config"
	"github.com/guardiao/base-security-service/internal/models"
	"github.com/guardiao/base-security-service/internal/password"
	"github.com/guardiao/base-security-service/internal/revocation"
	"github.com/guardiao/base-security-service/internal/store"
	"github.com/guardiao/base-security-service/internal/token"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func writeTestKeys(t *testing.T) (string, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate RSA key: %v", err)
	}

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
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

func setupAuth(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	privPath, pubPath := writeTestKeys(t)
	cfg := &config.Config{
		Token: config.TokenConfig{
			Issuer:          "https://guardiao.test",
			Audience:        "guardiao",
			PrivateKeyPath:  privPath,
			PublicKeyPath:   pubPath,
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 24 * time.Hour,
		},
		Security: config.SecurityConfig{
			PasswordMinLength: 10,
			Argon2Time:        1,
			Argon2Memory:      8 * 1024,
			Argon2Threads:     1,
			Argon2KeyLength:   32,
		},
	}
	tokenSvc, err := token.NewService(cfg.Token)
	if err != nil {
		t.Fatalf("failed to build token service: %v", err)
	}

	st := store.New(db)
	// Unreachable redis: the denylist degrades gracefully in both directions.
	revoker := revocation.New(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), "test")

	return New(Dependencies{
		Store:    st,
		TokenSvc: tokenSvc,
		Hasher:   password.NewHasher(cfg.Security),
		Revoker:  revoker,
		Config:   cfg,
		Auditor:  audit.New(db, zap.NewNop()),
		Logger:   zap.NewNop(),
	})
}

func createTestUser(t *testing.T, svc *Service) *models.User {
	t.Helper()
	user, err := svc.CreateUser(context.Background(), CreateUserInput{
		Name:        "Sentinela de Serviço",
		Email:       "Sentinela@Guardiao.Intraer",
		Password:    "senha-muito-segura",
		AccessLevel: models.LevelN1,
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestService_CreateUserValidation(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserInput{Email: "a@b.c", Password: "curta", AccessLevel: models.LevelN1})
	if !errors.Is(err, ErrPasswordTooWeak) {
		t.Errorf("expected ErrPasswordTooWeak, got %v", err)
	}

	_, err = svc.CreateUser(ctx, CreateUserInput{Email: "a@b.c", Password: "senha-muito-segura", AccessLevel: "N9"})
	if !errors.Is(err, ErrInvalidAccessLevel) {
		t.Errorf("expected ErrInvalidAccessLevel, got %v", err)
	}

	createTestUser(t, svc)
	_, err = svc.CreateUser(ctx, CreateUserInput{
		Email:       "sentinela@guardiao.intraer",
		Password:    "senha-muito-segura",
		AccessLevel: models.LevelN1,
	})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Errorf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestService_LoginAndValidate(t *testing.T) {
	svc := setupAuth(t)
	createTestUser(t, svc)
	ctx := context.Background()

	result, err := svc.Login(ctx, LoginInput{Email: "sentinela@guardiao.intraer", Password: "senha-muito-segura"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatalf("expected both tokens issued")
	}

	claims, err := svc.ValidateAccessToken(result.AccessToken)
	if err != nil {
		t.Fatalf("access token did not validate: %v", err)
	}
	if claims.AccessLevel != models.LevelN1 {
		t.Errorf("expected access level N1, got %s", claims.AccessLevel)
	}
	if claims.SessionID != result.SessionID.String() {
		t.Errorf("expected session claim %s, got %s", result.SessionID, claims.SessionID)
	}
}

func TestService_LoginRejectsBadCredentials(t *testing.T) {
	svc := setupAuth(t)
	createTestUser(t, svc)
	ctx := context.Background()

	if _, err := svc.Login(ctx, LoginInput{Email: "sentinela@guardiao.intraer", Password: "errada-errada"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginInput{Email: "ninguem@guardiao.intraer", Password: "tanto-faz-aqui"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestService_RefreshRotates(t *testing.T) {
	svc := setupAuth(t)
	createTestUser(t, svc)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginInput{Email: "sentinela@guardiao.intraer", Password: "senha-muito-segura"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, RefreshInput{RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Errorf("expected refresh token rotation")
	}

	// The consumed token is dead.
	if _, err := svc.Refresh(ctx, RefreshInput{RefreshToken: login.RefreshToken}); !errors.Is(err, ErrSessionInvalid) {
		t.Errorf("expected ErrSessionInvalid for rotated-out token, got %v", err)
	}
}

func TestService_LogoutRevokesSession(t *testing.T) {
	svc := setupAuth(t)
	user := createTestUser(t, svc)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginInput{Email: "sentinela@guardiao.intraer", Password: "senha-muito-segura"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(ctx, login.SessionID, user.ID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := svc.Refresh(ctx, RefreshInput{RefreshToken: login.RefreshToken}); !errors.Is(err, ErrSessionInvalid) {
		t.Errorf("expected ErrSessionInvalid after logout, got %v", err)
	}
}
