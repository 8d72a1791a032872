package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"

	"github.com/swsaga/progression-api/internal/catalog"
	"github.com/swsaga/progression-api/internal/config"
	"github.com/swsaga/progression-api/internal/events"
	"github.com/swsaga/progression-api/internal/orchestrators/progression"
	"github.com/swsaga/progression-api/internal/pkg/clock"
	"github.com/swsaga/progression-api/internal/pkg/idgen"
	redisclient "github.com/swsaga/progression-api/internal/redis"
	characterrepo "github.com/swsaga/progression-api/internal/repositories/character"
	sessionrepo "github.com/swsaga/progression-api/internal/repositories/session"
	snapshotrepo "github.com/swsaga/progression-api/internal/repositories/snapshot"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the gRPC server",
	Long:  `Start the progression gRPC server with the Redis-backed character store and the embedded content catalog.`,
	RunE:  runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal, gracefully stopping...")
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// TODO: register the progression service handler here once the proto
	// surface is published; until then the orchestrator is reachable through
	// the admin commands and the server exposes health and reflection only.
	if _, err := buildOrchestrator(cfg); err != nil {
		return err
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.UnaryServerInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(grpc_logging.LoggerFunc(logFunc)),
			grpc_recovery.StreamServerInterceptor(),
		),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(srv)

	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("Metrics listening on %s...", cfg.MetricsAddr)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server failed", "error", err.Error())
		}
	}()

	errChan := make(chan error, 1)
	go func() {
		log.Printf("gRPC server starting on port %d...", cfg.GRPCPort)
		if err := srv.Serve(lis); err != nil {
			errChan <- fmt.Errorf("failed to serve: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Println("Shutting down gRPC server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", "error", err.Error())
		}

		stopped := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(stopped)
		}()

		select {
		case <-shutdownCtx.Done():
			log.Println("Graceful shutdown timeout exceeded, forcing stop")
			srv.Stop()
		case <-stopped:
			log.Println("Server stopped gracefully")
		}

		return nil
	case err := <-errChan:
		return err
	}
}

// buildOrchestrator wires the Redis repositories, the embedded catalog, and
// the event bus into a progression orchestrator
func buildOrchestrator(cfg *config.Config) (*progression.Orchestrator, error) {
	client, err := redisclient.NewClient(cfg.RedisAddr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	clk := clock.New()

	charRepo, err := characterrepo.NewRedis(&characterrepo.RedisConfig{
		Client: client,
		Clock:  clk,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create character repository: %w", err)
	}

	contentCatalog, err := catalog.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load content catalog: %w", err)
	}

	bus := events.NewBus()
	bus.Subscribe(events.TopicSessionCompleted, func(ctx context.Context, event events.Event) error {
		slog.InfoContext(ctx, "progression session completed",
			"character_id", event.CharacterID,
			"mode", string(event.Mode))
		return nil
	})

	return progression.New(&progression.Config{
		CharacterRepo: charRepo,
		SessionRepo:   sessionrepo.NewRedis(client),
		SnapshotRepo:  snapshotrepo.NewRedis(client),
		Catalog:       contentCatalog,
		Bus:           bus,
		Clock:         clk,
		IDGenerator:   idgen.NewUUID("char"),
	})
}

func logFunc(ctx context.Context, level grpc_logging.Level, msg string, fields ...any) {
	log.Printf("[%v] %s %v", level, msg, fields)
}
