package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	auditdomain "github.com/smallbiznis/faktura/internal/audit/domain"
	authdomain "github.com/smallbiznis/faktura/internal/auth/domain"
	"github.com/smallbiznis/faktura/internal/config"
	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
	dashboarddomain "github.com/smallbiznis/faktura/internal/dashboard/domain"
	expensedomain "github.com/smallbiznis/faktura/internal/expense/domain"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	"github.com/smallbiznis/faktura/internal/invoice/render"
	"github.com/smallbiznis/faktura/internal/observability/logger"
	"github.com/smallbiznis/faktura/internal/observability/metrics"
	"github.com/smallbiznis/faktura/internal/observability/tracing"
	paymentdomain "github.com/smallbiznis/faktura/internal/payment/domain"
	reportdomain "github.com/smallbiznis/faktura/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

type Server struct {
	cfg config.Config
	db  *gorm.DB
	log *zap.Logger

	authSvc      authdomain.Service
	customerSvc  customerdomain.Service
	invoiceSvc   invoicedomain.Service
	paymentSvc   paymentdomain.Service
	expenseSvc   expensedomain.Service
	dashboardSvc dashboarddomain.Service
	reportSvc    reportdomain.Service
	auditSvc     auditdomain.Service

	htmlRenderer render.Renderer
	pdfRenderer  render.PDFRenderer

	loginLimiter *rateLimiter
}

type Params struct {
	fx.In

	Cfg config.Config
	DB  *gorm.DB
	Log *zap.Logger

	AuthSvc      authdomain.Service
	CustomerSvc  customerdomain.Service
	InvoiceSvc   invoicedomain.Service
	PaymentSvc   paymentdomain.Service
	ExpenseSvc   expensedomain.Service
	DashboardSvc dashboarddomain.Service
	ReportSvc    reportdomain.Service
	AuditSvc     auditdomain.Service

	HTMLRenderer render.Renderer
	PDFRenderer  render.PDFRenderer
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:          p.Cfg,
		db:           p.DB,
		log:          p.Log.Named("server"),
		authSvc:      p.AuthSvc,
		customerSvc:  p.CustomerSvc,
		invoiceSvc:   p.InvoiceSvc,
		paymentSvc:   p.PaymentSvc,
		expenseSvc:   p.ExpenseSvc,
		dashboardSvc: p.DashboardSvc,
		reportSvc:    p.ReportSvc,
		auditSvc:     p.AuditSvc,
		htmlRenderer: p.HTMLRenderer,
		pdfRenderer:  p.PDFRenderer,
		loginLimiter: newRateLimiter(loginRateLimit, loginRateWindow),
	}
}

// NewEngine builds the gin engine with the shared middleware stack.
func NewEngine(cfg config.Config, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	engine.Use(tracing.GinMiddleware(cfg.ServiceName))
	engine.Use(metrics.GinMiddleware(httpMetrics))
	return engine
}

// RegisterRoutes mounts the full API surface.
func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", s.Healthz)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if !s.cfg.IsProduction() {
		engine.POST("/test/cleanup", s.TestCleanup)
	}

	v1 := engine.Group("/api/v1")

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/signup", s.Signup)
		authGroup.POST("/login", s.Login)
	}

	authed := v1.Group("")
	authed.Use(s.AuthRequired())
	{
		authed.GET("/me", s.Me)

		authed.POST("/customers", s.CreateCustomer)
		authed.GET("/customers", s.ListCustomers)
		authed.GET("/customers/:id", s.GetCustomerByID)
		authed.PATCH("/customers/:id", s.UpdateCustomer)
		authed.DELETE("/customers/:id", s.DeleteCustomer)

		authed.POST("/invoices", s.CreateInvoice)
		authed.GET("/invoices", s.ListInvoices)
		authed.GET("/invoices/:id", s.GetInvoiceByID)
		authed.PATCH("/invoices/:id", s.UpdateInvoice)
		authed.POST("/invoices/:id/items", s.AddInvoiceItem)
		authed.DELETE("/invoices/:id/items/:item_id", s.RemoveInvoiceItem)
		authed.POST("/invoices/:id/send", s.SendInvoice)
		authed.POST("/invoices/:id/void", s.VoidInvoice)
		authed.GET("/invoices/:id/html", s.RenderInvoiceHTML)
		authed.GET("/invoices/:id/pdf", s.RenderInvoicePDF)

		authed.POST("/payments", s.SubmitPayment)
		authed.GET("/payments", s.ListPayments)
		authed.GET("/payments/:id", s.GetPaymentByID)
		authed.POST("/payments/:id/approve", s.ApprovePayment)
		authed.POST("/payments/:id/reject", s.RejectPayment)
		authed.GET("/payments/:id/receipt", s.GetPaymentReceipt)

		authed.POST("/expenses", s.CreateExpense)
		authed.GET("/expenses", s.ListExpenses)
		authed.GET("/expenses/:id", s.GetExpenseByID)
		authed.PATCH("/expenses/:id", s.UpdateExpense)
		authed.DELETE("/expenses/:id", s.DeleteExpense)

		authed.GET("/dashboard/summary", s.GetDashboardSummary)
		authed.GET("/dashboard/receivables", s.GetDashboardReceivables)
		authed.GET("/dashboard/expenses", s.GetDashboardExpenses)
		authed.GET("/dashboard/activity", s.GetDashboardActivity)

		authed.GET("/reports/invoices", s.ExportInvoices)
		authed.GET("/reports/expenses", s.ExportExpenses)
	}
}

// @Summary      Health Check
// @Description  Liveness probe
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /healthz [get]
func (s *Server) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, engine *gin.Engine, server *Server, log *zap.Logger) {
	server.RegisterRoutes(engine)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return httpServer.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Provide(NewEngine),
	fx.Invoke(RunHTTP),
)
