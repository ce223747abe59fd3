package main

import (
	"context"
	"log"
	"os"

	tactivity "go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/yourorg/bucket-upload/internal/activities"
	"github.com/yourorg/bucket-upload/internal/config"
	"github.com/yourorg/bucket-upload/internal/logging"
	bumetrics "github.com/yourorg/bucket-upload/internal/metrics"
	"github.com/yourorg/bucket-upload/internal/storage"
	"github.com/yourorg/bucket-upload/internal/workflow"
)

func main() {
	// Support both TEMPORAL_TARGET_HOST and TEMPORAL_ADDRESS for compatibility
	taddr := getenv("TEMPORAL_TARGET_HOST", getenv("TEMPORAL_ADDRESS", "localhost:7233"))
	ns := getenv("TEMPORAL_NAMESPACE", "default")
	q := getenv("TEMPORAL_TASK_QUEUE", "uploads")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}

	zl := logging.New(cfg.LogLevel)
	defer zl.Sync()

	bumetrics.Init()
	go func() {
		if err := bumetrics.Serve(cfg.MetricsAddr); err != nil {
			zl.Warn("metrics server stopped", zap.Error(err))
		}
	}()

	s3c, err := storage.NewS3Client(context.Background(), cfg)
	if err != nil {
		zl.Fatal("s3 init", zap.Error(err))
	}
	up := storage.NewS3Uploader(s3c, cfg.Bucket, zl)

	c, err := client.Dial(client.Options{HostPort: taddr, Namespace: ns, Logger: logging.NewTemporalLogger(zl)})
	if err != nil {
		zl.Fatal("temporal client", zap.Error(err))
	}
	defer c.Close()

	w := worker.New(c, q, worker.Options{})
	acts := activities.New(activities.Config{Uploader: up})
	w.RegisterActivityWithOptions(acts.UploadObject, tactivity.RegisterOptions{Name: workflow.UploadActivityName})
	w.RegisterWorkflow(workflow.UploadWorkflow)

	zl.Info("worker started",
		zap.String("namespace", ns),
		zap.String("taskQueue", q),
		zap.String("bucket", cfg.Bucket),
		zap.Bool("production", cfg.IsProduction()),
		zap.String("metrics", cfg.MetricsAddr))
	if err := w.Run(worker.InterruptCh()); err != nil {
		zl.Fatal("worker failed", zap.Error(err))
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
