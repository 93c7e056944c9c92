package main

import (
	"context"
	"time"

	"note-keeper/cmd/server/handlers"
	authHandlers "note-keeper/cmd/server/handlers/auth"
	"note-keeper/cmd/server/handlers/httperr"
	notesHandlers "note-keeper/cmd/server/handlers/notes"
	"note-keeper/cmd/server/middlewares"
	"note-keeper/internal/clients/mongo"
	"note-keeper/internal/config"
	"note-keeper/internal/logger"
	authServices "note-keeper/internal/services/auth"
	notesServices "note-keeper/internal/services/notes"
	"note-keeper/internal/utils/crypto"

	_ "note-keeper/docs" // Load swagger docs

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"
)

const (
	RateLimitExpiration = 1 * time.Minute
)

// authService is everything the routes need from the auth service.
type authService interface {
	authHandlers.AuthService
	notesHandlers.Authenticator
}

// services are the dependencies newApp wires into routes.
type services struct {
	auth  authService
	notes notesHandlers.Service
	hub   *notesServices.Hub
	// limiterStorage backs the login limiter; nil keeps counters in memory.
	limiterStorage fiber.Storage
}

// setupRouter builds the MongoDB-backed services and returns the app.
func setupRouter(ctx context.Context, cfg config.Config, limiterStorage fiber.Storage) (*fiber.App, error) {
	usersRepo, err := mongo.NewUsersRepo(ctx, mongo.DB())
	if err != nil {
		logger.L().Error("failed to create users repository", "error", err)
		return nil, err
	}
	notesRepo, err := mongo.NewNotesRepo(ctx, mongo.DB())
	if err != nil {
		logger.L().Error(notesServices.ErrCreateNotesRepo.Error(), "error", err)
		return nil, err
	}

	hub := notesServices.NewHub(cfg.WSOutboxBuffer)

	return newApp(cfg, services{
		auth:           authServices.NewService(usersRepo, cfg, logger.L()),
		notes:          notesServices.NewService(notesRepo, hub, logger.L()),
		hub:            hub,
		limiterStorage: limiterStorage,
	}), nil
}

// newApp configures a Fiber app with all routes
func newApp(cfg config.Config, svc services) *fiber.App {
	v := validator.New()
	if err := crypto.RegisterPasswordValidator(v); err != nil {
		logger.L().Error("failed to register password validator", "error", err)
		panic(err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler,
		Immutable:    true, // make Fiber copy all request-derived strings
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowHeaders: "Content-Type, Authorization",
	}))

	if cfg.RouteMetricsEnabled {
		middlewares.AttachMetrics(app, svc.hub)
	}

	// outside /api so probes are never logged or limited
	app.Get("/healthz", handlers.Healthz)
	app.Get("/docs/*", swagger.HandlerDefault)

	var api fiber.Router
	if cfg.RequestLoggingEnabled {
		api = app.Group("/api", fiberlogger.New(fiberlogger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		}))
		logger.L().Info("request logging enabled")
	} else {
		api = app.Group("/api")
		logger.L().Info("request logging disabled")
	}

	jwtMiddleware := middlewares.JWT(cfg)
	loginLimiter := middlewares.BuildRateLimiter(cfg.LoginRatePerMin, RateLimitExpiration, svc.limiterStorage)

	authH := authHandlers.NewHandlers(svc.auth, v)
	authGrp := api.Group("/auth")
	authGrp.Post("/signup", authH.SignUp)
	authGrp.Post("/login", loginLimiter, authH.Login)
	authGrp.Get("/profile", jwtMiddleware, authH.Profile)

	notesH := notesHandlers.NewHandlers(svc.notes, v)
	notesGrp := api.Group("/notes", jwtMiddleware)
	notesGrp.Get("/", notesH.List)
	notesGrp.Post("/", notesH.Create)
	notesGrp.Delete("/:id", notesH.Delete)

	wsHandlers := notesHandlers.NewWebSocketHandlers(svc.hub, svc.auth, cfg.WSMaxSessionSec)
	app.Use("/ws", notesHandlers.LogWSConnections(svc.auth))
	app.Get("/ws/notes/stream", wsHandlers.WSUpgrade, websocket.New(wsHandlers.WSNotesStream))

	return app
}
