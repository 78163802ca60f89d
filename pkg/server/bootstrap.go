package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"queue-manager-api/docs"
	"queue-manager-api/internal/config"
	"queue-manager-api/internal/handlers"
	"queue-manager-api/internal/metrics"
	"queue-manager-api/internal/middleware"
	"queue-manager-api/pkg/lambda"
)

const maxRequestBodyBytes = 1 << 20

// App is a fully wired application instance. It is immutable once built.
type App struct {
	Container *Container
	Engine    *gin.Engine
}

// ServeHTTP serves r with the gin engine
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.Engine.ServeHTTP(w, r)
}

// Close releases the container
func (a *App) Close() error {
	return a.Container.Close()
}

// Bootstrapper builds application instances and the entry chain in front of them.
// Both run modes use the same Bootstrapper.
type Bootstrapper struct {
	config *config.Config
	logger *logrus.Logger
	cors   *middleware.CORSPolicy
}

// NewBootstrapper creates a bootstrapper for cfg
func NewBootstrapper(cfg *config.Config, logger *logrus.Logger) *Bootstrapper {
	return &Bootstrapper{
		config: cfg,
		logger: logger,
		cors:   middleware.NewCORSPolicy(cfg.CORS),
	}
}

// Build wires the container, the gin engine, the documentation endpoint and the
// domain routes, in that order.
func (b *Bootstrapper) Build(ctx context.Context) (*App, error) {
	start := time.Now()

	container, err := NewContainer(ctx, b.config, b.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize container: %w", err)
	}
	if err := ctx.Err(); err != nil {
		container.Close()
		return nil, fmt.Errorf("bootstrap interrupted: %w", err)
	}

	engine := b.newEngine()
	b.registerDocs(engine)

	api := engine.Group("/api",
		middleware.SecurityHeaders(),
		middleware.RequestSizeLimit(maxRequestBodyBytes),
		middleware.ContentTypeValidation("application/json"),
		middleware.TransformResponse(),
	)
	handlers.SetupRoutes(api, &handlers.RouterConfig{
		Services:    container.Services,
		Health:      container.Repositories,
		Mode:        string(b.config.Mode),
		AuthService: container.AuthService,
		DevTokens:   !b.config.IsProduction(),
	})

	b.logger.WithFields(logrus.Fields{
		"mode":        b.config.Mode,
		"environment": b.config.Environment,
		"database":    b.config.Database.Path,
		"auth":        container.AuthService != nil,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Application built")

	return &App{Container: container, Engine: engine}, nil
}

func (b *Bootstrapper) newEngine() *gin.Engine {
	if b.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.StructuredLogger(b.logger),
		metrics.Middleware(),
		middleware.ErrorBoundary(b.logger),
	)
	if b.config.RateLimit.RequestsPerSecond > 0 {
		engine.Use(middleware.RateLimiter(b.logger, b.config.RateLimit.RequestsPerSecond, b.config.RateLimit.Burst))
	}
	engine.Use(
		middleware.AuditLogger(b.logger),
		middleware.RequestValidation(),
	)
	engine.NoRoute(middleware.NotFound())

	return engine
}

func (b *Bootstrapper) registerDocs(engine *gin.Engine) {
	// let the UI resolve requests against whichever host served it
	docs.SwaggerInfo.Host = ""

	engine.GET("/api/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/api/docs/index.html")
	})
	engine.GET("/api/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	engine.GET("/api/metrics", gin.WrapH(metrics.Handler()))
}

// Entry returns the chain every request passes through: CORS, then the error
// boundary, then dispatch.
func (b *Bootstrapper) Entry(dispatch lambda.DispatchFunc) http.Handler {
	return b.cors.Handler(middleware.Boundary(b.logger)(dispatch))
}

// NewCache returns a handler cache that builds applications with b
func (b *Bootstrapper) NewCache() *lambda.HandlerCache {
	return lambda.NewHandlerCache(
		func(ctx context.Context) (http.Handler, error) {
			app, err := b.Build(ctx)
			if err != nil {
				return nil, err
			}
			return app, nil
		},
		lambda.WithBuildTimeout(b.config.Bootstrap.Timeout),
		lambda.WithLogger(b.logger),
		lambda.WithBuildObserver(metrics.ObserveBootstrap),
	)
}

// NewFunction returns the Lambda entry point serving through cache
func (b *Bootstrapper) NewFunction(cache *lambda.HandlerCache) *lambda.Function {
	return lambda.NewFunction(b.Entry, cache.Dispatch)
}
