package app

import (
	"context"
	"time"

	"github.com/dexxter/dexxter/internal/auth/domain"
	"github.com/dexxter/dexxter/pkg/cryptox"
	"github.com/dexxter/dexxter/pkg/idx"
)

// seed creates the configured admin and reseller accounts when the database
// is empty. It never touches an already-populated database, so redeploys
// with the same env vars are safe.
func (app *Application) seed(ctx context.Context) error {
	empty, err := app.db.Principals().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	now := time.Now().UTC()

	if app.cfg.SeedAdminUsername != "" && app.cfg.SeedAdminPassword != "" {
		hash, err := cryptox.HashPassword(app.cfg.SeedAdminPassword)
		if err != nil {
			return err
		}
		admin := domain.Principal{
			ID:           idx.New().String(),
			Username:     app.cfg.SeedAdminUsername,
			Email:        app.cfg.SeedAdminEmail,
			PasswordHash: hash,
			Role:         domain.RoleAdmin,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := app.db.Principals().CreatePrincipal(ctx, admin); err != nil {
			return err
		}
		app.logger.Info("seeded admin principal", "username", admin.Username)
	}

	if app.cfg.SeedResellerUsername != "" && app.cfg.SeedResellerPassword != "" {
		hash, err := cryptox.HashPassword(app.cfg.SeedResellerPassword)
		if err != nil {
			return err
		}
		reseller := domain.Principal{
			ID:           idx.New().String(),
			Username:     app.cfg.SeedResellerUsername,
			PasswordHash: hash,
			Role:         domain.RoleReseller,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := app.db.Principals().CreatePrincipal(ctx, reseller); err != nil {
			return err
		}
		app.logger.Info("seeded reseller principal", "username", reseller.Username)
	}

	return nil
}
