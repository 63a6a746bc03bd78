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

	_ "github.com/jhoicas/getraenkekasse/docs"
	"github.com/jhoicas/getraenkekasse/internal/application/dashboard"
	"github.com/jhoicas/getraenkekasse/internal/application/refresh"
	"github.com/jhoicas/getraenkekasse/internal/domain/ledger"
	"github.com/jhoicas/getraenkekasse/internal/domain/repository"
	"github.com/jhoicas/getraenkekasse/internal/infrastructure/cache"
	"github.com/jhoicas/getraenkekasse/internal/infrastructure/flatfile"
	infrapdf "github.com/jhoicas/getraenkekasse/internal/infrastructure/pdf"
	"github.com/jhoicas/getraenkekasse/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/getraenkekasse/internal/interfaces/http"
	"github.com/jhoicas/getraenkekasse/pkg/config"
	"github.com/jhoicas/getraenkekasse/pkg/locale"
	"github.com/jhoicas/getraenkekasse/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

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
		Str("source", cfg.Source.Driver).
		Msg("iniciando aplicación")

	labels, err := locale.For(cfg.Refresh.Locale)
	if err != nil {
		log.Fatal().Err(err).Str("locale", cfg.Refresh.Locale).Msg("locale inválido")
	}
	loc := cfg.Refresh.Location()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	source, closeSource, err := newLedgerSource(ctx, cfg, loc)
	if err != nil {
		log.Fatal().Err(err).Msg("origen del ledger")
	}
	defer closeSource()

	now := func() time.Time { return time.Now().In(loc) }
	store := ledger.NewStore()

	scheduler := refresh.NewScheduler(source, store, cfg.Refresh.Interval, log.Named("refresh"),
		refresh.WithClock(now),
	)

	publisher := dashboard.NewPublisher(store, labels,
		dashboard.WithClock(now),
		dashboard.WithStatus(scheduler),
		dashboard.WithDebtReport(infrapdf.NewMarotoDebtReportGenerator(), cfg.Report.Title),
	)

	if cfg.Redis.Enabled() {
		redisCache := cache.NewRedisSummaryCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Key)
		defer redisCache.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, espejo deshabilitado")
		} else {
			// El espejo depende del publisher, que a su vez lee el estado del scheduler.
			scheduler.AddListener(dashboard.NewMirror(publisher, redisCache, 2*scheduler.Interval()))
			log.Info().Str("addr", cfg.Redis.Addr).Str("key", cfg.Redis.Key).Msg("espejo del resumen en redis habilitado")
		}
		cancel()
	}

	go scheduler.Run(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    cfg.App.Name + " API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Publisher: publisher,
		Refresher: scheduler,
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
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// newLedgerSource arma el origen configurado y devuelve su función de cierre.
func newLedgerSource(ctx context.Context, cfg *config.Config, loc *time.Location) (repository.LedgerSource, func(), error) {
	if cfg.Source.Driver == config.DriverPostgres {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewLedgerSource(pool, loc), pool.Close, nil
	}
	loader, err := flatfile.NewLoader(flatfile.Config{
		PurchasePath: cfg.Source.PurchaseFile,
		ProductPath:  cfg.Source.ProductFile,
		Encoding:     cfg.Source.Encoding,
		Location:     loc,
	})
	if err != nil {
		return nil, nil, err
	}
	return loader, func() {}, nil
}
