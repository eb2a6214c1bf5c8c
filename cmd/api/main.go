package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	server "storeapi/internal/adapter/http"
	"storeapi/internal/core/telemetry"
	"storeapi/pkg/config"
)

func main() {
	ctx := context.Background()

	logger, err := config.NewLokiLogger("storeapi", config.GetEnv("LOKI_URL", "http://localhost:3100"))

	if err != nil {
		log.Fatal("Failed to initialize Loki logger:", err)
	}

	defer logger.Sync()

	tel, err := telemetry.InitTelemetry(telemetry.TelemetryConfig{
		ServiceName:    "storeapi",
		ServiceVersion: "1.0.0",
		MetricsPort:    config.GetEnv("METRICS_PORT", "9091"),
		OTLPEndpoint:   config.GetEnv("OTLP_ENDPOINT", "localhost:4317"),
	})

	if err != nil {
		log.Fatal("Failed to initialize telemetry:", err)
	}

	defer tel.Shutdown(ctx)

	metrics := telemetry.NewAppMetrics(tel.PrometheusRegistry)
	metrics.StartSystemMetrics(ctx)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		server.StartServerWithConfig(metrics, logger, config.Load())
	}()

	<-c
	logger.Logger.Info("Shutting down gracefully...")
}
