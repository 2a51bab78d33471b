// @title           Faktura API
// @version         1.0
// @description     Invoicing and payment tracking for small businesses

// @host      localhost:8080
// @BasePath  /api/v1
// @Schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/faktura/internal/auth/domain"
	"github.com/smallbiznis/faktura/internal/clock"
	"github.com/smallbiznis/faktura/internal/config"
	"github.com/smallbiznis/faktura/internal/customer"
	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
	"github.com/smallbiznis/faktura/internal/dashboard"
	"github.com/smallbiznis/faktura/internal/events"
	"github.com/smallbiznis/faktura/internal/expense"
	"github.com/smallbiznis/faktura/internal/invoice"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	"github.com/smallbiznis/faktura/internal/ledger"
	"github.com/smallbiznis/faktura/internal/migration"
	"github.com/smallbiznis/faktura/internal/observability"
	"github.com/smallbiznis/faktura/internal/payment"
	"github.com/smallbiznis/faktura/internal/report"
	"github.com/smallbiznis/faktura/internal/scheduler"
	"github.com/smallbiznis/faktura/internal/seed"
	"github.com/smallbiznis/faktura/internal/server"
	"github.com/smallbiznis/faktura/internal/storage"
	"github.com/smallbiznis/faktura/pkg/cache/redis"
	"github.com/smallbiznis/faktura/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/smallbiznis/faktura/internal/audit"
	"github.com/smallbiznis/faktura/internal/auth"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		redis.Module,
		storage.Module,
		events.Module,

		audit.Module,
		ledger.Module,
		auth.Module,
		customer.Module,
		invoice.Module,
		payment.Module,
		expense.Module,
		dashboard.Module,
		report.Module,

		fx.Invoke(func(conn *gorm.DB, cfg config.Config, authSvc authdomain.Service, customerSvc customerdomain.Service, invoiceSvc invoicedomain.Service) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			if cfg.SeedDemo && !cfg.IsProduction() {
				return seed.EnsureDemoAccount(conn, authSvc, customerSvc, invoiceSvc)
			}
			return nil
		}),

		scheduler.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
