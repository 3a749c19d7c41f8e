package seeding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/guardiao/base-security-service/internal/models"
	"github.com/guardiao/base-security-service/internal/password"
	"github.com/guardiao/base-security-service/internal/store"
	"go.uber.org/zap"
)

// Seeder provisions the initial operator accounts.
type Seeder struct {
	store  *store.Store
	hasher *password.Hasher
	logger *zap.Logger
}

// New constructs a Seeder.
func New(st *store.Store, hasher *password.Hasher, logger *zap.Logger) *Seeder {
	return &Seeder{store: st, hasher: hasher, logger: logger}
}

type seedUser struct {
	name        string
	email       string
	accessLevel string
	isAdmin     bool
}

var defaultUsers = []seedUser{
	{name: "Administrador", email: "admin@guardiao.intraer", accessLevel: models.LevelOM, isAdmin: true},
	{name: "Sentinela de Serviço", email: "sentinela@guardiao.intraer", accessLevel: models.LevelN1},
	{name: "Supervisor de Guarda", email: "supervisor@guardiao.intraer", accessLevel: models.LevelN2},
	{name: "Oficial de Dia", email: "oficial.dia@guardiao.intraer", accessLevel: models.LevelN3},
}

// SeedDefaults creates the default accounts when they do not exist yet.
// Re-running is a no-op for accounts already present.
func (s *Seeder) SeedDefaults(ctx context.Context, adminPassword string) error {
	hash, err := s.hasher.Hash(adminPassword)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	for _, u := range defaultUsers {
		_, err := s.store.Users.GetByEmail(ctx, u.email)
		if err == nil {
			s.logger.Info("seed user already exists", zap.String("email", u.email))
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("lookup seed user %s: %w", u.email, err)
		}

		user := &models.User{
			Name:         u.name,
			Email:        strings.ToLower(u.email),
			PasswordHash: hash,
			AccessLevel:  u.accessLevel,
			IsAdmin:      u.isAdmin,
			Status:       "active",
		}
		if err := s.store.Users.Create(ctx, user); err != nil {
			return fmt.Errorf("create seed user %s: %w", u.email, err)
		}
		s.logger.Info("seed user created",
			zap.String("email", u.email),
			zap.String("access_level", u.accessLevel),
		)
	}
	return nil
}
