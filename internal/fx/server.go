package fx

import (
	"context"
	"errors"
	"net/http"

	"Kindfund/config"
	"Kindfund/internal/domain/donor"
	"Kindfund/internal/domain/shared"
	"Kindfund/internal/logger"
	"Kindfund/internal/middleware"
	"Kindfund/internal/routes"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// ServerModule fornece a configuração do servidor HTTP
var ServerModule = fx.Module("server",
	fx.Provide(
		newRouter,
	),
	fx.Invoke(
		setupRoutes,
		startServer,
	),
)

func newRouter(cfg *config.Config) *gin.Engine {
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	return router
}

func setupRoutes(
	router *gin.Engine,
	handler *routes.Handler,
	health *routes.HealthHandler,
	jwtSvc *middleware.JwtService,
	publicLimiter *middleware.RateLimiter,
	userLimiter UserRateLimiter,
	donorSvc *donor.Service,
) {
	router.GET("/healthz", health.Healthz)

	public := router.Group("/api")
	public.Use(middleware.RateLimit(publicLimiter))
	{
		public.GET("/campaigns", handler.ListCampaigns)
		public.GET("/campaigns/:id", handler.GetCampaign)
		public.GET("/campaigns/:id/progress", handler.GetCampaignProgress)

		public.GET("/charities", handler.ListCharities)
		public.GET("/charities/:id", handler.GetCharity)
		public.GET("/charities/:id/stats", handler.GetCharityStats)
	}

	private := router.Group("/api")
	private.Use(middleware.AuthMiddleware(jwtSvc))
	private.Use(middleware.RateLimitByUser(userLimiter.RateLimiter))
	private.Use(middleware.ProvisionDonor(donorSvc))
	{
		managers := middleware.RequireRole(shared.RoleCharityAdmin)
		admins := middleware.RequireRole(shared.RoleAdmin)

		campaigns := private.Group("/campaigns")
		{
			campaigns.POST("", managers, handler.CreateCampaign)
			campaigns.PATCH("/:id", managers, handler.UpdateCampaign)
			campaigns.DELETE("/:id", managers, handler.DeleteCampaign)
			campaigns.POST("/:id/publish", managers, handler.PublishCampaign)
			campaigns.POST("/:id/close", managers, handler.CloseCampaign)
			campaigns.POST("/:id/archive", managers, handler.ArchiveCampaign)
			campaigns.GET("/:id/donations", managers, handler.ListCampaignDonations)
		}

		donations := private.Group("/donations")
		{
			donations.POST("", handler.CreateDonation)
			donations.GET("", handler.ListMyDonations)
			donations.GET("/:id", handler.GetDonation)
			donations.PATCH("/:id", handler.UpdateDonation)
			donations.POST("/:id/cancel-recurring", handler.CancelRecurringDonation)
			donations.POST("/:id/confirm", managers, handler.ConfirmDonation)
			donations.POST("/:id/reject", managers, handler.RejectDonation)
			donations.POST("/:id/refund", managers, handler.RefundDonation)
			donations.DELETE("/:id", managers, handler.DeleteDonation)
		}

		charities := private.Group("/charities")
		{
			charities.POST("", managers, handler.CreateCharity)
			charities.PATCH("/:id", managers, handler.UpdateCharity)
			charities.GET("/:id/donations", managers, handler.ListCharityDonations)
			charities.POST("/:id/approve", admins, handler.ApproveCharity)
			charities.POST("/:id/reject", admins, handler.RejectCharity)
		}

		me := private.Group("/me")
		{
			me.GET("", handler.GetMe)
			me.PATCH("", handler.UpdateMyName)
			me.GET("/dashboard", handler.GetMyDashboard)
			me.GET("/milestones", handler.ListMyMilestones)
		}

		admin := private.Group("/admin", admins)
		{
			admin.POST("/recalculate-totals", handler.RecalculateTotals)
			admin.POST("/refresh-milestones", handler.RefreshDonorMilestones)
		}
	}
}

func startServer(lc fx.Lifecycle, cfg *config.Config, router *gin.Engine) {
	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info().
				Str("address", server.Addr).
				Str("environment", cfg.App.Environment).
				Msg("Servidor iniciando")
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal().Err(err).Msg("Falha ao iniciar servidor")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("Servidor parando...")
			stopCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
			defer cancel()
			return server.Shutdown(stopCtx)
		},
	})
}
