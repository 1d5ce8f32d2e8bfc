package web

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/ratelimit"
	"github.com/dmitrijs2005/profilekeeper/internal/server/gate"
)

// RouterConfig carries the request pipeline pieces placed around the handlers.
type RouterConfig struct {
	GlobalLimiter   *ratelimit.Limiter
	MutatingLimiter *ratelimit.Limiter
	Gate            *gate.BasicAuth
	// PublicDir, when set, is served as static files after the routes.
	PublicDir string
}

// NewApp builds the fiber application with every route registered.
func NewApp(h *Handlers, rc RouterConfig, l logging.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		// Form, query and header values outlive the request in the store
		// and the limiter maps.
		Immutable:             true,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(l),
	})
	Register(app, h, rc, l)
	return app
}

// Register wires the pipeline: every request passes the global limiter;
// /update then passes the access gate; /register and /update then pass the
// mutating limiter.
func Register(app *fiber.App, h *Handlers, rc RouterConfig, l logging.Logger) {
	app.Use(requestID(), accessLog(l))

	onReject := func(c *fiber.Ctx, key string, d ratelimit.Decision) {
		l.Warn(c.UserContext(), "rate limited",
			"key", key,
			"path", c.Path(),
			"count", d.Count,
			"request_id", RequestID(c),
		)
	}
	app.Use(ratelimit.Middleware(ratelimit.Config{Limiter: rc.GlobalLimiter, OnReject: onReject}))
	mutating := ratelimit.Middleware(ratelimit.Config{Limiter: rc.MutatingLimiter, OnReject: onReject})

	app.Get("/healthz", h.Health)
	app.Get("/readyz", h.Ready)

	app.Get("/", h.RegisterPage)
	app.Post("/register", mutating, h.Register)
	app.Get("/profile", h.Profile)
	app.Post("/update", rc.Gate.Middleware(), mutating, h.Update)

	if rc.PublicDir != "" {
		app.Static("/", rc.PublicDir)
	}
}
