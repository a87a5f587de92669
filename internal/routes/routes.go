package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/contact-keeper/contact_keeper/internal/auth"
	"github.com/contact-keeper/contact_keeper/internal/config"
	"github.com/contact-keeper/contact_keeper/internal/contacts"
	"github.com/contact-keeper/contact_keeper/internal/identity"
	"github.com/contact-keeper/contact_keeper/internal/logging"
	"github.com/contact-keeper/contact_keeper/internal/middleware"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.DB == nil && !d.Cfg.IsDev() {
		return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
	}
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}

	tokens, err := auth.NewTokens(auth.TokenConfig{Secret: []byte(d.Cfg.JWTSecret), TTL: d.Cfg.TokenTTL})
	if err != nil {
		return fmt.Errorf("token issuer: %w", err)
	}
	passwords, err := auth.NewPasswords(d.Cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("password hasher: %w", err)
	}

	// Middlewares
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	app.Use(recover.New())
	app.Use(middleware.Timeout(d.Cfg.RequestTimeout))

	// Health
	RegisterHealthRoutes(app, d)

	// Services and handlers
	var (
		identityRepo identity.Repository
		contactRepo  contacts.Repository
	)
	if d.DB != nil {
		identityRepo = identity.NewPostgresRepository(d.DB)
		contactRepo = contacts.NewPostgresRepository(d.DB)
	} else {
		d.Logger.Warn("no database configured, using in-memory stores")
		identityRepo = identity.NewMemoryRepository()
		contactRepo = contacts.NewMemoryRepository()
	}
	identityHandler := identity.NewHandler(identity.NewService(identityRepo, passwords), tokens)
	contactHandler := contacts.NewHandler(contacts.NewService(contactRepo))

	guard := middleware.Auth(tokens)

	api := app.Group("/api")
	RegisterUserRoutes(api, identityHandler)
	RegisterAuthRoutes(api, identityHandler, guard, middleware.LoginRateLimit(d.Cache, d.Cfg.LoginMaxPerMinute))
	RegisterContactRoutes(api, contactHandler, guard, middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))

	return nil
}
