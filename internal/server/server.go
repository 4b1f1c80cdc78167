package server

import (
	"context"
	"net/http"
	"time"

	"github.com/aquabill/aquabill/internal/audit"
	auditdomain "github.com/aquabill/aquabill/internal/audit/domain"
	"github.com/aquabill/aquabill/internal/clock"
	"github.com/aquabill/aquabill/internal/config"
	"github.com/aquabill/aquabill/internal/connection"
	conndomain "github.com/aquabill/aquabill/internal/connection/domain"
	"github.com/aquabill/aquabill/internal/customer"
	custdomain "github.com/aquabill/aquabill/internal/customer/domain"
	"github.com/aquabill/aquabill/internal/geo"
	"github.com/aquabill/aquabill/internal/invoice"
	invdomain "github.com/aquabill/aquabill/internal/invoice/domain"
	"github.com/aquabill/aquabill/internal/metrics"
	"github.com/aquabill/aquabill/internal/notification"
	"github.com/aquabill/aquabill/internal/payment"
	"github.com/aquabill/aquabill/internal/reading"
	readingdomain "github.com/aquabill/aquabill/internal/reading/domain"
	"github.com/aquabill/aquabill/internal/sequence"
	"github.com/aquabill/aquabill/internal/storage"
	"github.com/aquabill/aquabill/internal/tariff"
	tariffdomain "github.com/aquabill/aquabill/internal/tariff/domain"
	"github.com/aquabill/aquabill/pkg/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(repository.ProvideStore[invdomain.Invoice]),
	fx.Provide(repository.ProvideStore[custdomain.Customer]),
	fx.Provide(repository.ProvideStore[conndomain.Connection]),
	clock.Module,
	metrics.Module,
	geo.Module,
	sequence.Module,
	notification.Module,
	storage.Module,
	audit.Module,
	customer.Module,
	connection.Module,
	tariff.Module,
	invoice.Module,
	payment.Module,
	reading.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log.Named("http")))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	return r
}

func registerGin(log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	return NewEngine(log, m)
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
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
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	genID  *snowflake.Node

	readingSvc readingdomain.Service
	auditSvc   auditdomain.Service
	evidence   storage.EvidenceStore

	customers   custdomain.Repository
	connections conndomain.Repository
	tariffs     tariffdomain.Repository

	invoiceStore    repository.Repository[invdomain.Invoice]
	customerStore   repository.Repository[custdomain.Customer]
	connectionStore repository.Repository[conndomain.Connection]
}

type ServerParams struct {
	fx.In

	Gin   *gin.Engine
	Cfg   config.Config
	DB    *gorm.DB
	GenID *snowflake.Node

	ReadingSvc readingdomain.Service
	AuditSvc   auditdomain.Service
	Evidence   storage.EvidenceStore

	Customers   custdomain.Repository
	Connections conndomain.Repository
	Tariffs     tariffdomain.Repository

	InvoiceStore    repository.Repository[invdomain.Invoice]
	CustomerStore   repository.Repository[custdomain.Customer]
	ConnectionStore repository.Repository[conndomain.Connection]
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		readingSvc:      p.ReadingSvc,
		auditSvc:        p.AuditSvc,
		evidence:        p.Evidence,
		customers:       p.Customers,
		connections:     p.Connections,
		tariffs:         p.Tariffs,
		invoiceStore:    p.InvoiceStore,
		customerStore:   p.CustomerStore,
		connectionStore: p.ConnectionStore,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/readings", s.SubmitReading)
	v1.GET("/readings/:id", s.GetReading)
	v1.PATCH("/readings/:id", s.CorrectReading)
	v1.DELETE("/readings/:id", s.ReverseReading)

	v1.GET("/invoices", s.ListInvoices)
	v1.GET("/invoices/:id", s.GetInvoice)

	v1.POST("/customers", s.CreateCustomer)
	v1.GET("/customers/:id", s.GetCustomer)
	v1.POST("/connections", s.CreateConnection)
	v1.GET("/connections/:id", s.GetConnection)
	v1.POST("/tariffs", s.CreateTariff)

	v1.POST("/evidence", s.UploadEvidence)
	v1.GET("/audit-logs", s.ListAuditLogs)
}
