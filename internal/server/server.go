// Package server exposes the focus-point API over HTTP.
package server

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/menta2k/focuspoint"
	"github.com/menta2k/focuspoint/internal/config"
	"github.com/menta2k/focuspoint/pkg/describe"
	"github.com/menta2k/focuspoint/pkg/loader"
	"github.com/menta2k/focuspoint/pkg/ollama"
	"github.com/menta2k/focuspoint/pkg/saliency"
)

// Server bundles the gin engine with the focus pipeline.
type Server struct {
	config    *config.Config
	logger    *slog.Logger
	engine    *focuspoint.Engine
	describer *describe.Describer

	router *gin.Engine
}

// New wires the loader, scorer and optional describer from config and builds
// the router.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	l := loader.New(
		loader.WithTimeout(time.Duration(cfg.Fetch.TimeoutSeconds)*time.Second),
		loader.WithMaxBytes(cfg.Fetch.MaxBytes),
	)

	var scorer saliency.Scorer
	switch cfg.Saliency.Algorithm {
	case "finegrained":
		scorer = saliency.NewFineGrained()
	default:
		scorer = saliency.NewSpectralResidualWithConfig(saliency.SpectralConfig{
			AnalysisSize: cfg.Saliency.AnalysisSize,
			BlurSigma:    cfg.Saliency.BlurSigma,
		})
	}

	s := &Server{
		config: cfg,
		logger: logger,
		engine: focuspoint.NewWithComponents(l, scorer),
	}

	if cfg.Describe.Enabled {
		visionClient, err := ollama.NewClient(cfg.Describe.URL)
		if err != nil {
			return nil, err
		}
		s.describer = describe.New(visionClient, cfg.Describe.Model)
	}

	s.router = s.buildRouter()
	return s, nil
}

// Router returns the configured gin engine, ready to be served.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) buildRouter() *gin.Engine {
	if s.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.loggingMiddleware())

	_ = engine.SetTrustedProxies(nil)

	engine.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	engine.GET("/focus", s.handleFocus)
	engine.GET("/crop", s.handleCrop)
	engine.GET("/healthz", s.handleHealth)

	return engine
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
