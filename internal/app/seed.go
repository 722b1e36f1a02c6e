package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/sketchbook/sketchbook/internal/config"
	"github.com/sketchbook/sketchbook/internal/users"
	"github.com/sketchbook/sketchbook/pkg/logger"
)

// SeedUser creates the configured seed user. It is a no-op when no username
// is configured or the user already exists.
func SeedUser(ctx context.Context, svc *users.Service, seed config.SeedConfig) error {
	if seed.Username == "" {
		return nil
	}
	if seed.Password == "" {
		return fmt.Errorf("seed user %q: SEED_PASSWORD is required", seed.Username)
	}
	u, err := svc.Create(ctx, seed.Username, seed.Email, seed.Password)
	if errors.Is(err, users.ErrUserExists) {
		logger.Debugf("seed user %s already present", seed.Username)
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed user %q: %w", seed.Username, err)
	}
	logger.Infof("seeded user %s (%s)", u.Username, u.ID.Hex())
	return nil
}
