package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notehistory/cmd/internal/config"
	"notehistory/cmd/internal/domain/database"
	"notehistory/cmd/internal/domain/database/repository"
	"notehistory/cmd/internal/http/handler"
	"notehistory/cmd/internal/infrastructure/aws/storage"
	"notehistory/cmd/internal/infrastructure/aws/websocket"
	"notehistory/cmd/internal/service"
	"notehistory/cmd/internal/service/jobs"
	"notehistory/cmd/internal/utils/validators"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	log.SetLevel(cfg.Logging.LogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("failed to open %s database: %v", cfg.Database.Driver, err)
	}
	defer database.Close(db)

	validate := validators.New()

	// Optional AWS integrations
	var archive storage.S3Client
	if cfg.AWS.S3Bucket != "" {
		archive, err = storage.NewStorageClient(ctx, cfg.AWS.Region, cfg.AWS.S3Bucket)
		if err != nil {
			log.Fatalf("failed to init S3 client: %v", err)
		}
	} else {
		log.Info("S3_BUCKET_NAME not set, history export disabled")
	}

	var gateway websocket.GatewayClient = websocket.NopGatewayClient{}
	if cfg.AWS.WSGatewayEndpoint != "" {
		gateway, err = websocket.NewAWSGatewayClient(ctx, cfg.AWS.WSGatewayEndpoint, cfg.AWS.Region)
		if err != nil {
			log.Fatalf("failed to init gateway client: %v", err)
		}
	}

	// Repos
	tx := repository.NewTransactor(db)
	noteRepo := repository.NewNoteRepository(db)
	versionRepo := repository.NewVersionRepository(db)
	userRepo := repository.NewUserRepository(db)
	connRepo := repository.NewConnectionRepository(db)

	// Services
	wsService := service.NewWebSocketService(connRepo, userRepo, gateway)
	userService := service.NewUserService(userRepo, wsService, validate)
	noteService := service.NewNoteService(noteRepo, versionRepo, userRepo, tx, wsService, validate,
		cfg.Versioning.PointerMoveAttempts)
	exportService := service.NewExportService(noteRepo, versionRepo, archive)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	handler.Register(e, &handler.Routes{
		Notes:       handler.NewNoteDefault(noteService, exportService),
		Users:       handler.NewUserDefault(userService),
		WebSocket:   handler.NewWSDefault(wsService),
		Maintenance: handler.NewMaintenanceDefault(noteService),
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		jobs.NewNoteRepairer(noteService, cfg.Versioning.RepairInterval).Start(ctx)
		return nil
	})

	g.Go(func() error {
		jobs.NewConnectionCleaner(wsService).Start(ctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Errorf("server stopped: %v", err)
	}
}
