package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mingjing/mingjing/pkg/config"
	"github.com/mingjing/mingjing/pkg/handler"
	"github.com/mingjing/mingjing/pkg/service"
	"github.com/mingjing/mingjing/pkg/utils"
)

type Server struct {
	ginEngine *gin.Engine
	logger    *slog.Logger
	cfg       *config.AppConfig
	port      int
}

func NewServer(cfg *config.AppConfig, gdb *gorm.DB) (*Server, error) {
	ginEngine := gin.New()
	ginEngine.Use(gin.Recovery())

	// CORS middleware: allow common localhost dev origins.
	// Note: if you don't need cookies/credentials, keep Allow-Credentials off.
	ginEngine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		// If there's no Origin header, it's not a browser CORS request.
		if origin != "" {
			allowed := strings.HasPrefix(origin, "http://localhost") ||
				strings.HasPrefix(origin, "http://127.0.0.1") ||
				strings.HasPrefix(origin, "https://localhost") ||
				strings.HasPrefix(origin, "https://127.0.0.1")

			if allowed {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
			} else {
				// Reject unknown origins.
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	server := &Server{
		ginEngine: ginEngine,
		logger:    utils.GetLogger(),
		cfg:       cfg,
		port:      0,
	}

	if err := server.SetupRoutes(gdb); err != nil {
		return nil, err
	}

	return server, nil
}

func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host(), s.cfg.Port())
	srv := &http.Server{Addr: addr, Handler: s.ginEngine}

	// Attempt to listen on port first; if occupied return error immediately
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}

	// Record the actual port (useful if we ever switch to :0).
	if tcpAddr, ok := ln.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	} else {
		s.port = s.cfg.Port()
	}
	s.logger.Info("Server listening", "addr", ln.Addr().String())

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Serve(ln)
	}()

	// Listen for context cancellation for graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	// Non-blocking: if startup fails immediately return error; otherwise return nil to let main continue
	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	default:
	}
	return nil
}

func (s *Server) SetupRoutes(gdb *gorm.DB) error {
	// Create the shared chat model once at startup
	modelService := service.NewModelService()
	chatModel, err := modelService.CreateChatModel(context.Background(), service.ModelConfigFromApp(s.cfg))
	if err != nil {
		return fmt.Errorf("create chat model: %w", err)
	}
	aiService := service.NewAIService(chatModel, s.cfg.AITimeout())

	// Pipelines
	feynmanAnalyzer := service.NewFeynmanAnalyzer(aiService)
	layersAnalyzer := service.NewLayersAnalyzer(aiService)
	interviewer := service.NewRehearsalInterviewer(aiService)
	feedbackGen := service.NewFeedbackGenerator(aiService)

	// Persistence services
	authService := service.NewAuthService(gdb, s.cfg.JWTSecret(), s.cfg.TokenExpiry())
	feynmanService := service.NewFeynmanService(gdb)
	layersService := service.NewLayersService(gdb)
	rehearsalService := service.NewRehearsalService(gdb)

	authHandler := handler.NewAuthHandler(authService)
	feynmanHandler := handler.NewFeynmanHandler(feynmanService, feynmanAnalyzer, authService)
	layersHandler := handler.NewLayersHandler(layersService, layersAnalyzer, authService)
	rehearsalHandler := handler.NewRehearsalHandler(rehearsalService, interviewer, feedbackGen, authService)

	// Rate limits: a general ceiling per client, stricter windows for
	// credential and AI-heavy endpoints.
	globalLimiter := handler.NewRateLimiter(100, time.Minute).Middleware()
	authLimiter := handler.NewRateLimiter(10, time.Minute).Middleware()
	aiLimiter := handler.NewRateLimiter(20, time.Minute).Middleware()

	s.ginEngine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API group
	// /api/v1
	apiGroup := s.ginEngine.Group("/api/v1", globalLimiter)

	authHandler.RegisterRoutes(apiGroup.Group("/auth"), authLimiter)

	authenticated := handler.AuthMiddleware(authService)
	feynmanHandler.RegisterRoutes(apiGroup.Group("/feynman", authenticated), aiLimiter)
	layersHandler.RegisterRoutes(apiGroup.Group("/layers", authenticated), aiLimiter)
	rehearsalHandler.RegisterRoutes(apiGroup.Group("/rehearsal", authenticated), aiLimiter)

	return nil
}
