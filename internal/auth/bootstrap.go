package auth

import (
	"context"
	"fmt"

	"github.com/angelmondragon/sweetshop-backend/internal/users"
	"github.com/angelmondragon/sweetshop-backend/pkg/config"
	"github.com/angelmondragon/sweetshop-backend/pkg/db/models"
	"github.com/angelmondragon/sweetshop-backend/pkg/enums"
	"github.com/angelmondragon/sweetshop-backend/pkg/logger"
	"github.com/angelmondragon/sweetshop-backend/pkg/security"
)

type adminSeedRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	ExistsWithRole(ctx context.Context, role enums.Role) (bool, error)
}

// SeedAdmin creates the initial admin account when none exists yet.
// It reports whether a row was inserted.
func SeedAdmin(ctx context.Context, repo adminSeedRepository, seed config.AdminSeedConfig, passwordCfg config.PasswordConfig, logg *logger.Logger) (bool, error) {
	if repo == nil {
		return false, fmt.Errorf("user repository is required")
	}
	exists, err := repo.ExistsWithRole(ctx, enums.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	if exists {
		return false, nil
	}

	hash, err := security.HashPassword(seed.Password, passwordCfg)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}
	user, err := repo.Create(ctx, users.CreateUserDTO{
		Username:     seed.Username,
		Email:        normalizeEmail(seed.Email),
		PasswordHash: hash,
		Role:         enums.RoleAdmin,
	})
	if err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{
			"user_id": user.ID,
			"email":   user.Email,
		})
		logg.Info(ctx, "seeded admin user")
	}
	return true, nil
}
