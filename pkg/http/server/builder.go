package server

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Option func(*Options)

type Options struct {
	port          int
	logger        *zap.Logger
	readTimeout   time.Duration
	writeTimeout  time.Duration
	bodyLimit     int
	enableLogging bool
}

func WithPort(port int) Option {
	return func(o *Options) {
		o.port = port
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.logger = logger
	}
}

func WithReadTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.readTimeout = d
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.writeTimeout = d
	}
}

func WithBodyLimit(bytes int) Option {
	return func(o *Options) {
		o.bodyLimit = bytes
	}
}

func WithLogging(enabled bool) Option {
	return func(o *Options) {
		o.enableLogging = enabled
	}
}

type Server struct {
	app    *fiber.App
	port   int
	logger *zap.Logger
}

// New creates a new HTTP server using the builder options.
func New(opts ...Option) (*Server, error) {
	options := &Options{
		port:         8080,
		logger:       zap.NewNop(),
		readTimeout:  15 * time.Second,
		writeTimeout: 30 * time.Second,
		bodyLimit:    4 * 1024 * 1024,
	}

	for _, opt := range opts {
		opt(options)
	}

	// Validate port range
	if options.port < 1 || options.port > 65535 {
		return nil, fmt.Errorf("invalid port %d: must be between 1 and 65535", options.port)
	}

	logger := options.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:           options.readTimeout,
		WriteTimeout:          options.writeTimeout,
		BodyLimit:             options.bodyLimit,
		DisableStartupMessage: true,
	})

	if options.enableLogging {
		app.Use(RequestLogger(logger))
	}

	return &Server{
		app:    app,
		port:   options.port,
		logger: logger.Named("http-server"),
	}, nil
}

// App exposes the underlying router so the application can mount its routes.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start runs the server in a goroutine and returns immediately.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("http server starting", zap.String("addr", addr))

	go func() {
		if err := s.app.Listen(addr); err != nil {
			s.logger.Error("http server failed", zap.Error(err))
		}
	}()
}

// Shutdown gracefully shuts down the server with a timeout context.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http server shutting down")

	done := make(chan error, 1)
	go func() {
		done <- s.app.Shutdown()
	}()

	select {
	case err := <-done:
		if err != nil {
			return err
		}
		s.logger.Info("http server stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("forced shutdown due to timeout")
		return ctx.Err()
	}
}
