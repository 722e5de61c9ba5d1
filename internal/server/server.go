package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/postboxhq/postbox/internal/chargeevent"
	chargedomain "github.com/postboxhq/postbox/internal/chargeevent/domain"
	"github.com/postboxhq/postbox/internal/clock"
	"github.com/postboxhq/postbox/internal/config"
	"github.com/postboxhq/postbox/internal/observability"
	obslogger "github.com/postboxhq/postbox/internal/observability/logger"
	obsmetrics "github.com/postboxhq/postbox/internal/observability/metrics"
	obstracing "github.com/postboxhq/postbox/internal/observability/tracing"
	"github.com/postboxhq/postbox/internal/parcel"
	parceldomain "github.com/postboxhq/postbox/internal/parcel/domain"
	"github.com/postboxhq/postbox/internal/storagecharge"
	storagedomain "github.com/postboxhq/postbox/internal/storagecharge/domain"
	"github.com/postboxhq/postbox/internal/tenant"
	tenantdomain "github.com/postboxhq/postbox/internal/tenant/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	tenant.Module,
	parcel.Module,
	chargeevent.Module,
	storagecharge.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	db         *gorm.DB
	genID      *snowflake.Node
	clock      clock.Clock
	log        *zap.Logger
	tenantSvc  tenantdomain.Service
	parcelRepo parceldomain.Repository
	chargeSvc  chargedomain.Service
	storageSvc storagedomain.Service
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	DB         *gorm.DB
	GenID      *snowflake.Node
	Clock      clock.Clock
	Log        *zap.Logger
	TenantSvc  tenantdomain.Service
	ParcelRepo parceldomain.Repository
	ChargeSvc  chargedomain.Service
	StorageSvc storagedomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		db:         p.DB,
		genID:      p.GenID,
		clock:      p.Clock,
		log:        p.Log,
		tenantSvc:  p.TenantSvc,
		parcelRepo: p.ParcelRepo,
		chargeSvc:  p.ChargeSvc,
		storageSvc: p.StorageSvc,
	}
	s.RegisterAPIRoutes()
	s.RegisterCronRoutes()
	return s
}

// RegisterAPIRoutes mounts the tenant-scoped API surface.
func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(TenantMiddleware())

	api.POST("/packages/checkout/calculate-fees", s.CalculateCheckoutFees)
	api.GET("/charge-events", s.ListChargeEvents)
	api.GET("/tenant/fee-config", s.GetFeeConfig)
	api.PUT("/tenant/fee-config", s.UpdateFeeConfig)
}

// RegisterCronRoutes mounts the cron trigger, guarded by the shared
// secret rather than tenant headers.
func (s *Server) RegisterCronRoutes() {
	cron := s.engine.Group("/api/cron")
	cron.Use(CronAuthMiddleware(s.cfg.CronSecret))

	cron.POST("/storage-fees", s.RunStorageFees)
}
