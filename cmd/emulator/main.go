package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/yourorg/bucket-upload/internal/emulator"
	"github.com/yourorg/bucket-upload/internal/logging"
	bumetrics "github.com/yourorg/bucket-upload/internal/metrics"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading from environment")
	}
	addr := getenv("EMULATOR_ADDR", ":4572")
	dataDir := os.Getenv("EMULATOR_DATA_DIR")

	zl := logging.New(getenv("LOG_LEVEL", "info"))
	defer zl.Sync()

	bumetrics.Init()
	go func() {
		if err := bumetrics.Serve(getenv("METRICS_ADDR", ":9091")); err != nil {
			zl.Warn("metrics server stopped", zap.Error(err))
		}
	}()

	store, err := emulator.OpenStore(dataDir)
	if err != nil {
		zl.Fatal("open store", zap.String("dir", dataDir), zap.Error(err))
	}
	defer store.Close()

	// Pre-create buckets so uploads work without a CreateBucket call.
	for _, b := range strings.Split(getenv("EMULATOR_BUCKETS", os.Getenv("AWS_BUCKET_NAME")), ",") {
		if b = strings.TrimSpace(b); b == "" {
			continue
		}
		if err := store.CreateBucket(b); err != nil {
			zl.Fatal("create bucket", zap.String("bucket", b), zap.Error(err))
		}
		zl.Info("bucket ready", zap.String("bucket", b))
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      emulator.NewHandler(store, zl),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		zl.Info("emulator listening", zap.String("addr", addr), zap.Bool("inMemory", dataDir == ""))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zl.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("forced shutdown", zap.Error(err))
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
