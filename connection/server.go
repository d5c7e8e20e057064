package connection

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"taskhub/config"
	"taskhub/controller/auth"
	"taskhub/controller/task"
	"taskhub/controller/user"
	"taskhub/middleware"
	"taskhub/services"
)

// multipart bodies above this are spooled to disk by net/http
const maxMultipartMemory = 32 << 20

// Services is everything the HTTP layer calls into.
type Services struct {
	Credentials *services.CredentialService
	Tasks       *services.TaskService
	Users       services.UserStore
	// Captcha is optional; the /captcha route is only mounted when set.
	Captcha services.CaptchaVerifier
}

func NewServices(cfg *config.Config, logger zerolog.Logger, b *Backends) Services {
	tokens := services.NewTokenIssuer(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.SessionTTL)
	attachments := services.NewAttachmentService(logger, b.Objects, b.Tasks)
	notifier := services.NewNotifier(logger, b.Mailer)
	return Services{
		Credentials: services.NewCredentialService(logger, b.Users, tokens),
		Tasks:       services.NewTaskService(logger, b.Tasks, b.Users, attachments, notifier),
		Users:       b.Users,
		Captcha:     b.Captcha,
	}
}

func NewRouter(allowedOrigins []string, logger zerolog.Logger, svc Services) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = maxMultipartMemory
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Api is running!"})
	})

	api := router.Group("/api")

	authRouter := api.Group("/auth")
	auth.SignUpController(authRouter, svc.Credentials)
	auth.SignInController(authRouter, svc.Credentials)
	auth.MeController(authRouter, svc.Credentials)
	if svc.Captcha != nil {
		auth.CaptchaController(authRouter, svc.Captcha)
	}

	task.TaskController(api.Group("/tasks"), svc.Credentials, svc.Tasks)
	user.UserController(api.Group("/users"), svc.Credentials, svc.Users)

	return router
}

func StartServer() {
	cfg, err := config.Load()
	if err != nil {
		logger := NewLogger(config.EnvLocal)
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	logger := NewLogger(cfg.Env)

	ctx := context.Background()
	backends, err := OpenBackends(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open backends")
	}
	defer func() {
		if err := backends.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close backends")
		}
	}()

	logger.Info().
		Str("env", cfg.Env).
		Str("data_store", cfg.DataStore).
		Str("object_store", cfg.ObjectStore).
		Str("mailer", cfg.Mailer).
		Bool("captcha", backends.Captcha != nil).
		Msg("backends ready")

	router := NewRouter(cfg.HTTP.AllowedOrigins, logger, NewServices(cfg, logger, backends))
	server := &http.Server{
		Addr:    net.JoinHostPort("", cfg.HTTP.Port),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.HTTP.Port).Msg("setting up http server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		logger.Error().Err(err).Msg("failed to listen and serve http")
		return
	}

	logger.Info().Msg("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown http server")
		return
	}
	logger.Info().Msg("shut down http server")
}
