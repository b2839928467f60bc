package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bodybae/config"
	"bodybae/goals"
	"bodybae/knowledge"
	"bodybae/rag"
	"bodybae/store"
	"bodybae/web/handlers"
	"bodybae/web/middleware"
	"bodybae/web/services"
)

const rateLimiterCleanup = 10 * time.Minute

type Server struct {
	router  *gin.Engine
	limiter *middleware.ClientRateLimiter
	logger  *zap.Logger
	config  *config.Config

	onboard *handlers.OnboardHandler
	chat    *handlers.ChatHandler
	goal    *handlers.GoalHandler
	profile *handlers.ProfileHandler
	tips    *handlers.TipHandler
	health  *handlers.HealthHandler
}

func NewServer(st store.Store, engine *rag.Engine, kb *knowledge.Base, logger *zap.Logger, config *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		// Downstream middleware and handlers log through the context.
		c.Set("logger", logger)
		c.Next()
	})
	router.Use(middleware.SessionMiddleware())

	limiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
		MessagesPerMinute: config.RateLimitMessagesPerMin,
		BurstSize:         config.RateLimitBurstSize,
		CleanupInterval:   rateLimiterCleanup,
	}, logger)

	profiles := services.NewProfileService(st, logger)
	chatService := services.NewChatService(engine, st, config, logger)
	goalService := services.NewGoalService(st, goals.NewTracker(st, logger), logger)
	tipService := services.NewTipService(kb, config.DailyTipSeed, logger)

	server := &Server{
		router:  router,
		limiter: limiter,
		logger:  logger,
		config:  config,
		onboard: handlers.NewOnboardHandler(profiles, logger),
		chat:    handlers.NewChatHandler(chatService, logger),
		goal:    handlers.NewGoalHandler(goalService, logger),
		profile: handlers.NewProfileHandler(profiles, logger),
		tips:    handlers.NewTipHandler(tipService, logger),
		health:  handlers.NewHealthHandler(st, engine, logger),
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	api.POST("/onboard", s.onboard.Onboard)
	api.POST("/chat", middleware.RateLimitMiddleware(s.limiter), s.chat.Chat)
	api.POST("/set_goal", s.goal.SetGoal)
	api.POST("/log_progress", s.goal.LogProgress)
	api.GET("/daily_tip", s.tips.DailyTip)
	api.GET("/progress/:user_id", s.goal.Progress)
	api.GET("/profile/:user_id", s.profile.Profile)
	api.GET("/recommendations/:user_id", s.profile.Recommendations)
	api.GET("/health-stats/:user_id", s.profile.HealthStats)

	s.router.GET("/health", s.health.Health)

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
	})
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Web server failed to start", zap.Error(err))
		}
	}()

	// Block until shutdown is requested.
	<-ctx.Done()

	s.logger.Info("Shutting down web server")
	s.limiter.Stop()
	return srv.Shutdown(context.Background())
}
