// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/mobilizabr/mobiliza/internal/app/resources"
	userstore "github.com/mobilizabr/mobiliza/internal/app/store/users"
	"github.com/mobilizabr/mobiliza/internal/app/system/identity"
	"github.com/mobilizabr/mobiliza/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps, appCfg, logger); err != nil {
			return err
		}
	}

	return nil
}

// ensureAdmin guarantees the configured admin account exists. An existing
// user with that email is promoted; otherwise a login account and user row
// are created. Does nothing when the user is already an admin, so the
// config can stay in place across restarts.
func ensureAdmin(ctx context.Context, deps DBDeps, appCfg AppConfig, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)
	idp := identity.NewMongoProvider(deps.MongoDatabase)

	existing, err := users.GetByEmail(ctx, appCfg.AdminEmail)
	switch {
	case err == nil:
		if existing.Role == models.RoleAdmin {
			return nil
		}
		if err := users.UpdateRole(ctx, existing.ID, models.RoleAdmin); err != nil {
			return fmt.Errorf("promote admin: %w", err)
		}
		logger.Info("promoted existing user to admin",
			zap.String("email", appCfg.AdminEmail),
			zap.String("user_id", existing.ID.Hex()))
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		// fall through to creation
	default:
		return fmt.Errorf("look up admin user: %w", err)
	}

	authID, err := idp.SignUp(ctx, appCfg.AdminEmail, appCfg.AdminPassword)
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			// Account exists from an earlier partial start; reuse it.
			authID, err = idp.VerifyPassword(ctx, appCfg.AdminEmail, appCfg.AdminPassword)
			if err != nil {
				return fmt.Errorf("admin account exists but password does not match admin_password: %w", err)
			}
		} else {
			return fmt.Errorf("create admin account: %w", err)
		}
	}

	created, err := users.Create(ctx, models.User{
		AuthID: &authID,
		Name:   appCfg.AdminName,
		Email:  appCfg.AdminEmail,
		Role:   models.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	logger.Info("created initial admin",
		zap.String("email", appCfg.AdminEmail),
		zap.String("user_id", created.ID.Hex()))
	return nil
}
