package server

import (
	"context"
	"net/http"
	"time"

	"github.com/brisbanesurgical/storefront/internal/config"
	orderdomain "github.com/brisbanesurgical/storefront/internal/order/domain"
	paymentdomain "github.com/brisbanesurgical/storefront/internal/payment/domain"
	"github.com/brisbanesurgical/storefront/internal/payment/stripe"
	"github.com/brisbanesurgical/storefront/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, metrics *telemetry.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogMiddleware(log))
	r.Use(telemetry.GinMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type engineParams struct {
	fx.In

	Log     *zap.Logger
	Metrics *telemetry.Metrics `optional:"true"`
}

func registerGin(p engineParams) *gin.Engine {
	return NewEngine(p.Log, p.Metrics)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.ListenAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
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
	engine   *gin.Engine
	cfg      config.Config
	log      *zap.Logger
	orders   orderdomain.Service
	checkout *stripe.Client
	adapter  paymentdomain.Adapter
	metrics  *telemetry.Metrics
}

type ServerParams struct {
	fx.In

	Gin      *gin.Engine
	Cfg      config.Config
	Log      *zap.Logger
	Orders   orderdomain.Service
	Checkout *stripe.Client
	Adapter  paymentdomain.Adapter
	Metrics  *telemetry.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:   p.Gin,
		cfg:      p.Cfg,
		log:      p.Log.Named("server"),
		orders:   p.Orders,
		checkout: p.Checkout,
		adapter:  p.Adapter,
		metrics:  p.Metrics,
	}

	svc.registerAPIRoutes()
	svc.registerStaticRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Checkout --------
	checkout := api.Group("/checkout")
	checkout.POST("/create-checkout-session", s.CreateCheckoutSession)
	checkout.POST("/order", s.CreateOrder)
	checkout.POST("/cancel/:orderCode", s.CancelOrder)

	// -------- Payment Webhooks --------
	api.POST("/payments/webhooks/stripe", s.HandleStripeWebhook)

	// -------- Order Lookup --------
	api.GET("/home/order", s.GetOrder)
	api.GET("/order-track", s.TrackOrder)
}

func (s *Server) registerStaticRoutes() {
	if s.cfg.ReceiptDir != "" && s.cfg.ReceiptBasePath != "" {
		s.engine.Static(s.cfg.ReceiptBasePath, s.cfg.ReceiptDir)
	}
}
