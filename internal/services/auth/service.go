package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/guardiao/base-security-service/internal/audit"
	"github.com/guardiao/base-security-service/internal/config"
	"github.com/guardiao/base-security-service/internal/models"
	"github.com/guardiao/base-security-service/internal/password"
	"github.com/guardiao/base-security-service/internal/revocation"
	"github.com/guardiao/base-security-service/internal/store"
	"github.com/guardiao/base-security-service/internal/token"
	"go.uber.org/zap"
)

var (
	// ErrInvalidCredentials returned when login fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPasswordTooWeak returned when password fails policy validation.
	ErrPasswordTooWeak = errors.New("password too weak")
	// ErrSessionInvalid indicates a missing, expired or revoked session.
	ErrSessionInvalid = errors.New("session invalid or expired")
	// ErrEmailAlreadyExists indicates duplicate account creation.
	ErrEmailAlreadyExists = errors.New("user with email already exists")
	// ErrInvalidAccessLevel indicates a level outside {N1, N2, N3, OM}.
	ErrInvalidAccessLevel = errors.New("invalid access level")
)

// Service encapsulates credential authentication and session issuance.
type Service struct {
	store    *store.Store
	tokenSvc *token.Service
	hasher   *password.Hasher
	revoker  *revocation.Store
	cfg      *config.Config
	auditor  *audit.Logger
	logger   *zap.Logger
}

// Dependencies aggregates constructor inputs.
type Dependencies struct {
	Store    *store.Store
	TokenSvc *token.Service
	Hasher   *password.Hasher
	Revoker  *revocation.Store
	Config   *config.Config
	Auditor  *audit.Logger
	Logger   *zap.Logger
}

// New initialises the auth service.
func New(deps Dependencies) *Service {
	return &Service{
		store:    deps.Store,
		tokenSvc: deps.TokenSvc,
		hasher:   deps.Hasher,
		revoker:  deps.Revoker,
		cfg:      deps.Config,
		auditor:  deps.Auditor,
		logger:   deps.Logger,
	}
}

// LoginInput captures login payload.
type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

// RefreshInput refresh token payload.
type RefreshInput struct {
	RefreshToken string
	IPAddress    string
	UserAgent    string
}

// CreateUserInput captures admin-side account creation.
type CreateUserInput struct {
	Name        string
	Email       string
	Saram       string
	Password    string
	AccessLevel string
	IsAdmin     bool
}

// AuthResult returned to caller.
type AuthResult struct {
	User                  *models.User
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	SessionID             uuid.UUID
}

// Login authenticates a user with email/password and issues a session.
func (s *Service) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.store.Users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	if user.Status != "active" {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, in.Password); err != nil {
		s.auditor.Record(ctx, audit.Entry{
			UserID:    &user.ID,
			Action:    "auth.login.failed",
			Resource:  "user",
			IPAddress: in.IPAddress,
			UserAgent: in.UserAgent,
		})
		return nil, ErrInvalidCredentials
	}

	result, err := s.issueSession(ctx, user, in.IPAddress, in.UserAgent)
	if err != nil {
		return nil, err
	}

	if err := s.store.Users.TouchLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to record last login", zap.Error(err))
	}
	s.auditor.Record(ctx, audit.Entry{
		UserID:     &user.ID,
		Action:     "auth.login",
		Resource:   "user",
		ResourceID: user.ID.String(),
		IPAddress:  in.IPAddress,
		UserAgent:  in.UserAgent,
	})
	return result, nil
}

// Refresh rotates the refresh token and mints a new access token.
func (s *Service) Refresh(ctx context.Context, in RefreshInput) (*AuthResult, error) {
	session, err := s.store.Sessions.GetByRefreshHash(ctx, token.HashRefreshToken(in.RefreshToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, fmt.Errorf("query session: %w", err)
	}
	if time.Now().After(session.ExpiresAt) {
		return nil, ErrSessionInvalid
	}

	user, err := s.store.Users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("query session user: %w", err)
	}

	plain, hashed, err := s.tokenSvc.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}
	refreshExpiry := time.Now().Add(s.cfg.Token.RefreshTokenTTL)
	if err := s.store.Sessions.RotateRefreshHash(ctx, session.ID, hashed, refreshExpiry); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}

	access, accessExpiry, err := s.mintAccess(user, session.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		User:                  user,
		AccessToken:           access,
		AccessTokenExpiresAt:  accessExpiry,
		RefreshToken:          plain,
		RefreshTokenExpiresAt: refreshExpiry,
		SessionID:             session.ID,
	}, nil
}

// Logout revokes the session and denylists its id so outstanding access
// tokens stop validating.
func (s *Service) Logout(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) error {
	if err := s.store.Sessions.Revoke(ctx, sessionID, time.Now().UTC()); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if err := s.revoker.Revoke(ctx, sessionID.String(), s.cfg.Token.AccessTokenTTL); err != nil {
		s.logger.Warn("failed to denylist session", zap.Error(err))
	}
	s.auditor.Record(ctx, audit.Entry{
		UserID:     &userID,
		Action:     "auth.logout",
		Resource:   "session",
		ResourceID: sessionID.String(),
	})
	return nil
}

// ValidateAccessToken parses the JWT and rejects revoked sessions.
func (s *Service) ValidateAccessToken(tokenStr string) (*token.Claims, error) {
	claims, err := s.tokenSvc.Parse(tokenStr)
	if err != nil {
		return nil, err
	}
	if s.revoker != nil && s.revoker.IsRevoked(context.Background(), claims.SessionID) {
		return nil, ErrSessionInvalid
	}
	return claims, nil
}

// GetUser loads a user by id.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.store.Users.GetByID(ctx, id)
}

// CreateUser provisions an operator account. Admin-gating happens in the
// handler; the service validates the payload.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if err := s.validatePassword(in.Password); err != nil {
		return nil, err
	}
	switch in.AccessLevel {
	case models.LevelN1, models.LevelN2, models.LevelN3, models.LevelOM:
	default:
		return nil, ErrInvalidAccessLevel
	}

	if _, err := s.store.Users.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("query user: %w", err)
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Name:         in.Name,
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Saram:        in.Saram,
		PasswordHash: hashed,
		AccessLevel:  in.AccessLevel,
		IsAdmin:      in.IsAdmin,
		Status:       "active",
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) issueSession(ctx context.Context, user *models.User, ip, userAgent string) (*AuthResult, error) {
	plain, hashed, err := s.tokenSvc.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}
	refreshExpiry := time.Now().Add(s.cfg.Token.RefreshTokenTTL)
	session := &models.Session{
		UserID:           user.ID,
		RefreshTokenHash: hashed,
		ExpiresAt:        refreshExpiry,
		IPAddress:        ip,
		UserAgent:        userAgent,
	}
	if err := s.store.Sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	access, accessExpiry, err := s.mintAccess(user, session.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		User:                  user,
		AccessToken:           access,
		AccessTokenExpiresAt:  accessExpiry,
		RefreshToken:          plain,
		RefreshTokenExpiresAt: refreshExpiry,
		SessionID:             session.ID,
	}, nil
}

func (s *Service) mintAccess(user *models.User, sessionID uuid.UUID) (string, time.Time, error) {
	return s.tokenSvc.MintAccessToken(token.AccessTokenInput{
		UserID:      user.ID,
		SessionID:   sessionID,
		Name:        user.Name,
		Email:       user.Email,
		AccessLevel: user.AccessLevel,
		IsAdmin:     user.IsAdmin,
	})
}

func (s *Service) validatePassword(pw string) error {
	if len(pw) < s.cfg.Security.PasswordMinLength {
		return ErrPasswordTooWeak
	}
	return nil
}
