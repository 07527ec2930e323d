// Package server is an in-process stand-in for the visualizer REST API. It
// serves fixtures instead of parsing CSVs and backs local development and the
// client's integration tests.
package server

import (
	"context"
	"net/http"

	"chemviz-client/internal/controller"
	"chemviz-client/internal/dto"
	"chemviz-client/internal/model"
	"chemviz-client/internal/pkg/logger"
	"chemviz-client/internal/pkg/serverutils"
	"chemviz-client/internal/repository/memory"
	"chemviz-client/internal/service"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
)

type Server struct {
	app      *fiber.App
	port     string
	logger   logger.ILogger
	auth     service.IAuthService
	datasets service.IDatasetService
}

func New(port string, log logger.ILogger) *Server {
	// Repositories
	users := memory.NewUserRepository()
	tokens := memory.NewTokenRepository()
	uploads := memory.NewUploadRepository()

	// Services
	authService := service.NewAuthService(users, tokens)
	datasetService := service.NewDatasetService(uploads)

	app := fiber.New(fiber.Config{
		BodyLimit:             10 * 1024 * 1024, // 10MB
		ErrorHandler:          serverutils.ErrorHandler(log),
		DisableStartupMessage: true,
	})

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())
	app.Use(serverutils.RequestLogger(log))

	s := &Server{
		app:      app,
		port:     port,
		logger:   log,
		auth:     authService,
		datasets: datasetService,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.app.Group("/api", serverutils.TokenMiddleware(s.auth))

	controller.NewAuthController(s.auth).RegisterRoutes(api)
	controller.NewDatasetController(s.datasets).RegisterRoutes(api)
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

// SeedUser registers a user so it can log in right away.
func (s *Server) SeedUser(ctx context.Context, username, password string) (*dto.AuthResponse, error) {
	return s.auth.Register(ctx, &dto.CredentialsRequest{Username: username, Password: password})
}

// AddFixture makes uploads named filename resolve to records.
func (s *Server) AddFixture(filename string, records []model.EquipmentRecord) {
	s.datasets.AddFixture(filename, records)
}

// Transport serves client requests in-process, without a listener.
func (s *Server) Transport() http.RoundTripper {
	return appTransport{app: s.app}
}

func (s *Server) Run() error {
	s.logger.Info("MOCKAPI", "Mock API listening", map[string]interface{}{"url": "http://localhost:" + s.port + "/api"})
	return s.app.Listen(":" + s.port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

type appTransport struct {
	app *fiber.App
}

func (t appTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	return t.app.Test(req, -1)
}
