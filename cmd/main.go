package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	bookingpb "github.com/Leganyst/lesson-booking/internal/api/booking/v1"
	"github.com/Leganyst/lesson-booking/internal/audit"
	"github.com/Leganyst/lesson-booking/internal/calendarsync"
	"github.com/Leganyst/lesson-booking/internal/config"
	"github.com/Leganyst/lesson-booking/internal/db"
	"github.com/Leganyst/lesson-booking/internal/events"
	"github.com/Leganyst/lesson-booking/internal/httpapi"
	"github.com/Leganyst/lesson-booking/internal/model"
	"github.com/Leganyst/lesson-booking/internal/obs"
	"github.com/Leganyst/lesson-booking/internal/payment"
	"github.com/Leganyst/lesson-booking/internal/repository"
	"github.com/Leganyst/lesson-booking/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// .env необязателен, в контейнере переменные приходят из окружения.
	_ = godotenv.Load()

	// 1. Конфиг.
	appCfg, err := config.LoadAppConfig()
	if err != nil {
		slog.Error("load app config", "error", err)
		os.Exit(1)
	}
	logger := setupLogger(appCfg)
	slog.SetDefault(logger)

	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		logger.Error("load db config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Трейсинг.
	shutdownTracer, err := obs.InitTracer(ctx, obs.TracerConfig{
		ServiceName: appCfg.ServiceName,
		Environment: appCfg.Environment,
		Endpoint:    appCfg.OTLPEndpoint,
	}, logger)
	if err != nil {
		logger.Error("init tracer", "error", err)
		os.Exit(1)
	}

	// 3. БД и миграции.
	gormDB, err := db.NewGormDB(dbCfg)
	if err != nil {
		logger.Error("init db", "error", err)
		os.Exit(1)
	}
	if err := model.AutoMigrate(gormDB); err != nil {
		logger.Error("auto migrate", "error", err)
		os.Exit(1)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Error("sql DB", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	// 4. Репозитории.
	bookingRepo := repository.NewGormBookingRepository(gormDB)
	auditRepo := repository.NewGormAuditRepository(gormDB)
	instructorRepo := repository.NewGormInstructorRepository(gormDB)
	customerRepo := repository.NewGormCustomerRepository(gormDB)
	connectionRepo := repository.NewGormCalendarConnectionRepository(gormDB)

	// 5. Аудит и события.
	var recorderOpts []audit.Option
	if appCfg.RabbitURL != "" {
		publisher, err := events.NewPublisher(appCfg.RabbitURL, appCfg.BookingExchange)
		if err != nil {
			logger.Error("connect rabbitmq", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		recorderOpts = append(recorderOpts, audit.WithPublisher(publisher))
		logger.Info("booking events enabled", "exchange", appCfg.BookingExchange)
	}
	recorder := audit.NewRecorder(auditRepo, logger, recorderOpts...)

	// 6. Внешние адаптеры.
	calendarClient := calendarsync.NewClient(appCfg.CalendarAPIURL, appCfg.AdapterTimeout)

	var payments service.PaymentGateway
	if appCfg.PaymentsEnabled() {
		gw, err := payment.NewOmiseGateway(appCfg.OmisePublicKey, appCfg.OmiseSecretKey, appCfg.AdapterTimeout)
		if err != nil {
			logger.Error("init omise", "error", err)
			os.Exit(1)
		}
		payments = gw
	} else {
		logger.Warn("omise keys are not set, payment sync disabled")
	}

	// 7. Сервис бронирований и sweeper.
	bookingSvc := service.NewBookingService(service.Deps{
		Bookings:       bookingRepo,
		Instructors:    instructorRepo,
		Customers:      customerRepo,
		Connections:    connectionRepo,
		Calendar:       calendarClient,
		Payments:       payments,
		Audit:          recorder,
		Logger:         logger,
		AdapterTimeout: appCfg.AdapterTimeout,
	})

	sweeper := service.NewExpirySweeper(bookingSvc, bookingRepo, appCfg.ExpirySweepInterval, logger)
	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		sweeper.Run(ctx)
	}()

	// 8. gRPC-сервер.
	grpcServer := grpc.NewServer()
	bookingpb.RegisterBookingServiceServer(grpcServer, service.NewBookingGRPCServer(bookingSvc, logger))
	if !appCfg.IsProduction() {
		reflection.Register(grpcServer)
	}

	lis, err := net.Listen("tcp", appCfg.GRPCAddr)
	if err != nil {
		logger.Error("listen grpc", "addr", appCfg.GRPCAddr, "error", err)
		os.Exit(1)
	}
	go func() {
		logger.Info("gRPC server listening", "addr", appCfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc serve", "error", err)
			stop()
		}
	}()

	// 9. HTTP API для чтения.
	router := httpapi.NewRouter(
		httpapi.NewHandler(bookingRepo, auditRepo, instructorRepo, logger),
		logger,
		appCfg.IsProduction(),
	)
	httpServer := &http.Server{
		Addr:              appCfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", "addr", appCfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	// 10. Грейсфул-шатдаун по сигналу.
	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	grpcServer.GracefulStop()
	<-sweeperDone

	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Error("tracer shutdown", "error", err)
	}
}

func setupLogger(cfg *config.AppConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler).With("service", cfg.ServiceName, "env", cfg.Environment)
}
