package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/fiscal-pos/internal/application/service"
	"github.com/sangkips/fiscal-pos/internal/config"
	"github.com/sangkips/fiscal-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/fiscal-pos/internal/domain/repository"
	"github.com/sangkips/fiscal-pos/internal/infrastructure/database"
	"github.com/sangkips/fiscal-pos/internal/infrastructure/memory"
	"github.com/sangkips/fiscal-pos/internal/infrastructure/repository"
	"github.com/sangkips/fiscal-pos/internal/presentation/http/handler"
	"github.com/sangkips/fiscal-pos/internal/presentation/http/routes"
	"github.com/sangkips/fiscal-pos/pkg/email"
	"github.com/sangkips/fiscal-pos/pkg/logger"
	"github.com/sangkips/fiscal-pos/pkg/printer"
	"github.com/sangkips/fiscal-pos/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log := logger.New(logger.Config{
		Level:        logger.Level(cfg.Log.Level),
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: true,
		Component:    cfg.App.Name,
		Environment:  cfg.App.Env,
	})
	defer log.Close()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := openStore(cfg, log)
	if err != nil {
		log.Fatal("failed to open store", "driver", cfg.Store.Driver, "error", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(utils.TokenConfig{
		Secret:     cfg.JWT.Secret,
		TerminalID: cfg.POS.TerminalID,
		AccessTTL:  cfg.JWT.ExpiryHours,
		RefreshTTL: cfg.JWT.RefreshExpiryHours,
	})

	location := cfg.POS.Location()
	header := entity.BusinessHeader{
		Name:       cfg.Business.Name,
		Address:    cfg.Business.Address,
		TIN:        cfg.Business.TIN,
		MIN:        cfg.Business.MIN,
		SerialNo:   cfg.Business.SerialNo,
		PermitNo:   cfg.Business.PermitNo,
		Operator:   cfg.Business.Operator,
		TerminalID: cfg.POS.TerminalID,
	}
	policy := service.DiscountPolicy{
		VATRate:  cfg.POS.VATRate,
		OtherCap: cfg.POS.OtherDiscountCap,
	}

	expiry, err := cfg.License.Expiry(location)
	if err != nil {
		log.Fatal("invalid LICENSE_EXPIRES_AT", "value", cfg.License.ExpiresAt, "error", err)
	}
	license := service.NewLicenseChecker(expiry, cfg.License.WarnDays)

	// Z reports are mailed only when SMTP is configured
	var mailer service.ZReportMailer
	if cfg.Email.Enabled() {
		mailer = email.NewEmailService(email.EmailConfig{
			SMTPHost:     cfg.Email.SMTPHost,
			SMTPPort:     cfg.Email.SMTPPort,
			SMTPUsername: cfg.Email.SMTPUsername,
			SMTPPassword: cfg.Email.SMTPPassword,
			FromName:     cfg.Email.FromName,
			FromEmail:    cfg.Email.FromEmail,
			ZReportTo:    cfg.Email.ZReportTo,
		})
	}

	// Initialize services
	sessions := service.NewSessionStore()
	audit := service.NewLoggerAuditSink(log)

	authService := service.NewAuthService(store.Users(), jwtManager, log)
	userService := service.NewUserService(store.Users())
	catalogService := service.NewCatalogService(store.Catalog(), store.Promos())
	orderService := service.NewOrderService(sessions, store.Catalog(), store.Promos(), license, audit, policy, log)
	checkoutService := service.NewCheckoutService(sessions, store.Checkout(), store.Orders(), policy, log)
	ledgerService := service.NewLedgerService(store.Ledger(), store.Checkout(), audit, log)
	fiscalService := service.NewFiscalService(store.Fiscal(), sessions, header, location, mailer, audit, log)

	// Initialize thermal printer
	thermalPrinter, err := printer.NewPrinterFromConfig(
		cfg.Printer.Type,
		cfg.Printer.USBPath,
		cfg.Printer.Address,
	)
	if err != nil {
		log.Warn("failed to initialize printer, printing disabled", "type", cfg.Printer.Type, "error", err)
		thermalPrinter = printer.NewNullPrinter()
	}
	defer thermalPrinter.Close()
	printerService := service.NewPrinterService(thermalPrinter, store.Orders(), store.Fiscal(), header, service.PrinterOptions{
		Type:     cfg.Printer.Type,
		Width:    cfg.Printer.Width,
		Location: location,
	}, log)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		User:    handler.NewUserHandler(userService),
		Catalog: handler.NewCatalogHandler(catalogService),
		Session: handler.NewSessionHandler(orderService, checkoutService),
		Order:   handler.NewOrderHandler(checkoutService, ledgerService),
		Ledger:  handler.NewLedgerHandler(ledgerService),
		Fiscal:  handler.NewFiscalHandler(fiscalService, printerService),
		Printer: handler.NewPrinterHandler(printerService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: store.Idempotency(),
		Managers:        authService,
		Log:             log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go purgeIdempotencyKeys(ctx, store.Idempotency(), log)

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starting server", "port", port, "env", cfg.App.Env, "store", cfg.Store.Driver, "terminal", cfg.POS.TerminalID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", "error", err)
	}
}

// openStore connects the configured backing store
func openStore(cfg *config.Config, log *logger.Logger) (domainRepo.Store, error) {
	switch cfg.Store.Driver {
	case "memory":
		log.Warn("using in-memory store; data is lost on restart")
		return memory.NewSeeded()
	case "", "postgres":
		db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug, log)
		if err != nil {
			return nil, err
		}
		if err := database.AutoMigrate(db, log); err != nil {
			return nil, err
		}
		if err := database.SeedDefaultData(db, log); err != nil {
			log.Warn("failed to seed default data", "error", err)
		}
		return repository.NewStore(db), nil
	default:
		return nil, errors.New("unknown STORE_DRIVER " + cfg.Store.Driver)
	}
}

// purgeIdempotencyKeys drops expired finalize keys once an hour
func purgeIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, log *logger.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := repo.DeleteExpired(ctx); err != nil {
				log.Warn("failed to purge idempotency keys", "error", err)
			}
		}
	}
}
