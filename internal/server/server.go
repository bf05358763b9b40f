// Package server exposes the planner over HTTP and streams results to
// websocket listeners.
package server

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/config"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/fleet"
	"github.com/luvdamuzik/MotionPlanningRobots/internal/store"
)

// Server wires the planner, the run history and the stream hub into a
// fiber app.
type Server struct {
	app     *fiber.App
	cfg     config.Config
	planner *fleet.Planner
	store   *store.Store
	rec     *store.Recorder
	hub     *Hub
	log     *log.Logger
}

// Options configure New.
type Options struct {
	AccessLog bool        // log every request
	Logger    *log.Logger // "[server] " stderr logger if nil
	Planner   *fleet.Planner
}

// New builds the app. The hub must be running for stream messages to be
// delivered.
func New(cfg config.Config, st *store.Store, rec *store.Recorder, hub *Hub, opts Options) *Server {
	l := opts.Logger
	if l == nil {
		l = log.New(os.Stderr, "[server] ", log.LstdFlags)
	}
	p := opts.Planner
	if p == nil {
		p = fleet.New(nil)
	}
	s := &Server{
		app: fiber.New(fiber.Config{
			ErrorHandler:          errorHandler,
			DisableStartupMessage: true,
		}),
		cfg:     cfg,
		planner: p,
		store:   st,
		rec:     rec,
		hub:     hub,
		log:     l,
	}

	if opts.AccessLog {
		s.app.Use(logger.New())
	}
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.app.Group("/api")
	api.Get("/health", s.handleHealth)

	plan := api.Group("/plan")
	plan.Post("/single", s.handlePlanSingle)
	plan.Post("/fleet", s.handlePlanFleet)

	runs := api.Group("/runs")
	runs.Get("/", s.handleRecentRuns)
	runs.Get("/stats", s.handleRunStats)
	runs.Get("/:id", s.handleGetRun)

	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws/plans", websocket.New(s.handleStream))
}

// App returns the fiber app, for tests and embedding.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.log.Printf("listening on %s (stream: ws://%s/ws/plans)", addr, addr)
	return s.app.Listen(addr)
}

// Shutdown stops the server, waiting up to timeout for open requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "OK",
		"clients": s.hub.ClientCount(),
		"pending": s.rec.Pending(),
		"time":    time.Now().Format(time.RFC3339),
	})
}
