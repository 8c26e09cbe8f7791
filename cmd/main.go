package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	_ "supportdesk/docs"
	"supportdesk/internal/auth"
	"supportdesk/internal/common"
	"supportdesk/internal/config"
	"supportdesk/internal/handlers"
	"supportdesk/internal/jobs/background"
	"supportdesk/internal/middleware"
	"supportdesk/internal/repositories"
	"supportdesk/internal/services"
	"supportdesk/internal/sessions"
	"supportdesk/pkg/database"
	"supportdesk/pkg/logger"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database pools: admin (bypasses row-level security) and restricted
	// (every statement subject to tenant policies).
	pools, err := database.NewPools(ctx, cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pools.Close()

	if err := database.Migrate(ctx, pools.Admin, zlog); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}
	if err := database.ApplyRLSPolicies(ctx, pools, zlog); err != nil {
		zlog.Fatal("failed to apply row-level security policies", zap.Error(err))
	}

	// Session store
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	sessionStore := sessions.NewStoreWithClient(redisClient)

	// Token manager
	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" && cfg.Auth.JWKSURL == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		zlog.Warn("JWT_SECRET not set, using generated secret; sessions will not survive restarts")
	}
	tokens, err := auth.NewTokenManager(jwtSecret, cfg.Auth.JWKSURL, cfg.Auth.AccessTTL)
	if err != nil {
		zlog.Fatal("failed to initialize token manager", zap.Error(err))
	}

	// Repositories that run outside tenant scope live on the admin pool:
	// identity, membership, API key resolution, and maintenance sweeps.
	userRepo := repositories.NewUserRepo(pools.Admin)
	memberRepo := repositories.NewMemberRepo(pools.Admin)
	orgRepo := repositories.NewOrganizationRepo(pools.Admin)
	apiKeyRepo := repositories.NewAPIKeyRepo(pools.Admin)
	auditRepo := repositories.NewTicketAuditRepo(pools.Admin)

	resolver := auth.NewResolver(apiKeyRepo, memberRepo, sessionStore, tokens, zlog)
	scoper := database.NewScoper(pools, zlog)

	// Object storage for ticket attachments
	objectStore, err := services.NewMinioStore(cfg.Minio)
	if err != nil {
		zlog.Fatal("failed to initialize object storage", zap.Error(err))
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		zlog.Fatal("failed to ensure attachment bucket", zap.Error(err))
	}

	// Services
	authSvc := services.NewAuthService(userRepo, memberRepo, sessionStore, tokens, cfg.Auth.SessionTTL)
	orgSvc := services.NewOrganizationService(orgRepo, memberRepo)
	apiKeySvc := services.NewAPIKeyService(apiKeyRepo, memberRepo)
	ticketSvc := services.NewTicketService(scoper)
	customerSvc := services.NewCustomerService(scoper)
	metaSvc := services.NewMetaService(scoper)
	attachmentSvc := services.NewAttachmentService(scoper, objectStore)

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, tokens)
	orgHandlers := handlers.NewOrganizationHandlers(orgSvc)
	apiKeyHandlers := handlers.NewAPIKeyHandlers(apiKeySvc)
	ticketHandlers := handlers.NewTicketHandlers(ticketSvc)
	customerHandlers := handlers.NewCustomerHandlers(customerSvc)
	metaHandlers := handlers.NewMetaHandlers(metaSvc)
	attachmentHandlers := handlers.NewAttachmentHandlers(attachmentSvc)
	healthHandlers := handlers.NewHealthHandlers(pools, redisClient)

	// Background maintenance
	scheduler, err := background.NewScheduler(apiKeyRepo, auditRepo, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize scheduler", zap.Error(err))
	}
	scheduler.Start()
	defer func() { _ = scheduler.Stop() }()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler(zlog)

	// Global middleware
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())
	e.Use(logger.RequestLogger(zlog))

	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	authMW := middleware.NewAuthMiddleware(resolver)

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.Health)
	e.GET("/health/ready", healthHandlers.Ready)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API routes
	v1 := e.Group("/v1")
	v1.Use(versionMiddleware.VersionHeader("v1"))

	// Authentication routes. Logout and switch-organization verify the
	// session themselves: a session without an active organization must
	// still be able to select one.
	authGroup := v1.Group("/auth")
	authGroup.POST("/signup", authHandlers.Signup)
	authGroup.POST("/login", authHandlers.Login)
	authGroup.POST("/logout", authHandlers.Logout)
	authGroup.POST("/switch-organization", authHandlers.SwitchOrganization)

	// Account routes require a valid identity but not an organization
	// selection: without these a fresh user could never create their first
	// organization.
	account := v1.Group("")
	account.Use(authMW.RequireUser())
	account.POST("/organizations", orgHandlers.CreateOrganization)
	account.GET("/organizations", orgHandlers.ListMyOrganizations)
	account.GET("/api-keys", apiKeyHandlers.ListAPIKeys)
	account.POST("/api-keys", apiKeyHandlers.CreateAPIKey)
	account.DELETE("/api-keys/:id", apiKeyHandlers.DeleteAPIKey)

	// Tenant routes require a fully resolved tenant context
	protected := v1.Group("")
	protected.Use(authMW.RequireTenantContext())

	protected.GET("/me", authHandlers.Me)

	protected.GET("/organization", orgHandlers.GetOrganization)
	protected.DELETE("/organization", orgHandlers.DeleteOrganization)
	protected.POST("/organization/members", orgHandlers.AddMember)
	protected.DELETE("/organization/members/:userId", orgHandlers.RemoveMember)

	protected.GET("/tickets", ticketHandlers.ListTickets)
	protected.POST("/tickets", ticketHandlers.CreateTicket)
	protected.GET("/tickets/:id", ticketHandlers.GetTicket)
	protected.PUT("/tickets/:id", ticketHandlers.UpdateTicket)
	protected.DELETE("/tickets/:id", ticketHandlers.DeleteTicket)
	protected.GET("/tickets/:id/audits", ticketHandlers.ListTicketAudits)

	protected.POST("/tickets/:ticketId/attachments", attachmentHandlers.UploadAttachment)
	protected.GET("/tickets/:ticketId/attachments", attachmentHandlers.ListAttachments)
	protected.GET("/attachments/:id/download", attachmentHandlers.DownloadAttachment)
	protected.DELETE("/attachments/:id", attachmentHandlers.DeleteAttachment)

	protected.GET("/customers", customerHandlers.ListCustomers)
	protected.POST("/customers", customerHandlers.CreateCustomer)
	protected.GET("/customers/:id", customerHandlers.GetCustomer)
	protected.PUT("/customers/:id", customerHandlers.UpdateCustomer)
	protected.DELETE("/customers/:id", customerHandlers.DeleteCustomer)

	protected.GET("/statuses", metaHandlers.ListStatuses)
	protected.POST("/statuses", metaHandlers.CreateStatus)
	protected.PUT("/statuses/:id", metaHandlers.UpdateStatus)
	protected.DELETE("/statuses/:id", metaHandlers.DeleteStatus)

	protected.GET("/priorities", metaHandlers.ListPriorities)
	protected.POST("/priorities", metaHandlers.CreatePriority)
	protected.PUT("/priorities/:id", metaHandlers.UpdatePriority)
	protected.DELETE("/priorities/:id", metaHandlers.DeletePriority)

	// Start server
	go func() {
		zlog.Info("server starting",
			zap.String("version", version),
			zap.String("port", cfg.Server.Port),
			zap.String("env", cfg.Server.Env),
		)
		if err := e.Start(fmt.Sprintf(":%s", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}

// errorHandler maps application errors to response status codes at the edge.
// Everything internal or transient is logged with its cause and reported to
// the client as an opaque envelope.
func errorHandler(zlog *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var appErr *common.Error
		if errors.As(err, &appErr) {
			if appErr.Kind == common.KindInternal || appErr.Kind == common.KindTransient {
				zlog.Error("request failed",
					zap.String("method", c.Request().Method),
					zap.String("path", c.Path()),
					zap.Error(err),
				)
			}
			message := appErr.Message
			if appErr.Kind == common.KindTransient {
				message = "storage unavailable"
			}
			_ = c.JSON(appErr.HTTPStatus(), common.CreateErrorResponse(string(appErr.Kind), message, nil))
			return
		}

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			_ = c.JSON(httpErr.Code, common.CreateErrorResponse(http.StatusText(httpErr.Code), fmt.Sprintf("%v", httpErr.Message), nil))
			return
		}

		zlog.Error("unhandled error",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		_ = c.JSON(http.StatusInternalServerError, common.CreateErrorResponse(string(common.KindInternal), "Internal server error", nil))
	}
}
