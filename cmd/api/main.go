// @title           Gestión de Compras API
// @version         1.0
// @description     Ciclo de compras: solicitud, cotización, adjudicación, orden, despacho, conformidad e inventario.
// @BasePath        /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/gestion-compras/docs"
	"github.com/jhoicas/gestion-compras/internal/application/inventory"
	"github.com/jhoicas/gestion-compras/internal/application/procurement"
	"github.com/jhoicas/gestion-compras/internal/application/report"
	"github.com/jhoicas/gestion-compras/internal/domain/repository"
	infracache "github.com/jhoicas/gestion-compras/internal/infrastructure/cache"
	"github.com/jhoicas/gestion-compras/internal/infrastructure/messaging"
	infrapdf "github.com/jhoicas/gestion-compras/internal/infrastructure/pdf"
	"github.com/jhoicas/gestion-compras/internal/infrastructure/postgres"
	infraxlsx "github.com/jhoicas/gestion-compras/internal/infrastructure/xlsx"
	"github.com/jhoicas/gestion-compras/internal/infrastructure/xmldoc"
	httpRouter "github.com/jhoicas/gestion-compras/internal/interfaces/http"
	"github.com/jhoicas/gestion-compras/pkg/config"
	"github.com/jhoicas/gestion-compras/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.AutoMigrate {
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Strs("aplicadas", applied).Msg("migraciones al día")
	}

	repos := postgres.NewRepositories(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Catálogo: lecturas por id, opcionalmente detrás de Redis.
	var catalog repository.CatalogRepository = postgres.NewCatalogRepository(pool)
	if cfg.Redis.Enabled() {
		rdb := infracache.NewClient(cfg.Redis)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no responde; el catálogo se leerá de PostgreSQL hasta que vuelva")
		}
		catalog = infracache.NewCatalogCache(catalog, rdb, cfg.Redis.TTL, log)
	}

	// Eventos del flujo: Kafka si hay brokers, si no se descartan.
	var publisher procurement.EventPublisher = messaging.NopPublisher{}
	if cfg.Kafka.Enabled() {
		kp := messaging.NewKafkaPublisher(cfg.Kafka)
		defer kp.Close()
		publisher = kp
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publicando eventos en Kafka")
	}

	policy := procurement.Policy{
		AllowRedecision:        cfg.Workflow.AllowRedecision,
		DefaultRejectionReason: cfg.Workflow.DefaultRejectionReason,
		MarkRequestSelected:    cfg.Workflow.MarkRequestSelected,
	}

	poster := inventory.NewPostReceiptUseCase(txRunner, repos.Inventory, repos.Movements, log)
	requestUC := procurement.NewRequestUseCase(txRunner, repos.Requests, repos.Links, catalog, policy, log)
	sourcingUC := procurement.NewSourcingUseCase(txRunner, repos, catalog, publisher, log)
	awardUC := procurement.NewAwardUseCase(txRunner, publisher, policy, log)
	fulfillmentUC := procurement.NewFulfillmentUseCase(txRunner, repos, catalog, poster, publisher, log)
	workflowUC := procurement.NewWorkflowUseCase(txRunner, publisher, policy, log)

	// Documentos de la orden y comparativo de cotizaciones
	exportUC := report.NewExportUseCase(
		repos, catalog,
		infrapdf.NewOrderPDFGenerator(cfg.App.Company),
		xmldoc.NewOrderXMLBuilder(cfg.App.Company),
		infraxlsx.NewQuotationSheetBuilder(),
		log,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestID())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath:    "/",
		FileContent: []byte(docs.SwaggerInfo.ReadDoc()),
		Path:        "docs",
		Title:       "Gestión de Compras API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		RequestUC:        requestUC,
		SourcingUC:       sourcingUC,
		AwardUC:          awardUC,
		FulfillmentUC:    fulfillmentUC,
		WorkflowUC:       workflowUC,
		InventoryUC:      poster,
		ReorderUC:        inventory.NewReorderUseCase(txRunner, repos.Inventory, catalog, log),
		ExportUC:         exportUC,
		JWTSecret:        cfg.JWT.Secret,
		OperationTimeout: cfg.Workflow.OperationTimeout,
		Logger:           log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
