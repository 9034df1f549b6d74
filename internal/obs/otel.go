package obs

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const serviceVersion = "0.1.0"

// TracerConfig задаёт экспорт трейсов. Пустой Endpoint выключает экспорт.
type TracerConfig struct {
	ServiceName string
	Environment string
	Endpoint    string
}

// InitTracer настраивает глобальный TracerProvider и возвращает функцию остановки.
// Без endpoint остаётся no-op провайдер по умолчанию.
func InitTracer(ctx context.Context, cfg TracerConfig, logger *slog.Logger) (func(context.Context) error, error) {
	if cfg.Endpoint == "" {
		logger.Info("tracing disabled: OTEL_EXPORTER_OTLP_ENDPOINT is empty")
		return func(context.Context) error { return nil }, nil
	}

	conn, err := grpc.NewClient(cfg.Endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("otlp dial: %w", err)
	}
	exp, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(serviceVersion),
			semconv.DeploymentEnvironmentKey.String(cfg.Environment),
		),
	)
	if err != nil {
		logger.Warn("otel resource create failed", "error", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	logger.Info("tracing enabled", "endpoint", cfg.Endpoint, "service", cfg.ServiceName)

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		_ = conn.Close()
		return err
	}, nil
}
