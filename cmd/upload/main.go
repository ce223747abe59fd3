package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/smithy-go"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/yourorg/bucket-upload/internal/config"
	iopkg "github.com/yourorg/bucket-upload/internal/iopkg"
	"github.com/yourorg/bucket-upload/internal/logging"
	"github.com/yourorg/bucket-upload/internal/storage"
	"github.com/yourorg/bucket-upload/internal/types"
	"github.com/yourorg/bucket-upload/internal/workflow"
)

func main() {
	name := flag.String("name", "", "object name; defaults to the source file name")
	viaTemporal := flag.Bool("temporal", false, "run the upload as a workflow on the worker instead of in-process")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-name N] [-temporal] <path|->\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	src := flag.Arg(0)
	if *name == "" {
		*name = iopkg.BaseName(src)
	}
	if *name == "" {
		log.Fatal("-name is required when reading from stdin")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl := logging.New(cfg.LogLevel)
	defer zl.Sync()

	ctx := context.Background()
	if *viaTemporal {
		if err := runWorkflow(ctx, zl, src, *name); err != nil {
			zl.Fatal("workflow upload failed", zap.Error(err))
		}
		return
	}

	data, err := iopkg.ReadPayload(src)
	if err != nil {
		zl.Fatal("read payload", zap.String("source", src), zap.Error(err))
	}
	s3c, err := storage.NewS3Client(ctx, cfg)
	if err != nil {
		zl.Fatal("s3 init", zap.Error(err))
	}
	up := storage.NewS3Uploader(s3c, cfg.Bucket, zl)
	out, err := up.Upload(ctx, data, *name)
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) {
			zl.Fatal("upload failed", zap.String("code", ae.ErrorCode()), zap.String("message", ae.ErrorMessage()))
		}
		zl.Fatal("upload failed", zap.Error(err))
	}
	fmt.Printf("key=%s etag=%s version=%s\n",
		storage.ObjectKey(cfg.Bucket, *name), aws.ToString(out.ETag), aws.ToString(out.VersionId))
}

// runWorkflow hands the source path to the worker, so it must be readable there.
func runWorkflow(ctx context.Context, zl *zap.Logger, src, name string) error {
	p := types.UploadParams{Name: name, SourceURI: src}
	if src == iopkg.Stdin {
		b, err := iopkg.ReadPayload(src)
		if err != nil {
			return err
		}
		p = types.UploadParams{Name: name, Data: b}
	}

	c, err := client.Dial(client.Options{
		HostPort:  getenv("TEMPORAL_ADDRESS", "localhost:7233"),
		Namespace: getenv("TEMPORAL_NAMESPACE", "default"),
		Logger:    logging.NewTemporalLogger(zl),
	})
	if err != nil {
		return fmt.Errorf("temporal client: %w", err)
	}
	defer c.Close()

	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		TaskQueue: getenv("TEMPORAL_TASK_QUEUE", "uploads"),
	}, workflow.UploadWorkflow, p)
	if err != nil {
		return fmt.Errorf("start workflow: %w", err)
	}
	var res types.UploadResult
	if err := run.Get(ctx, &res); err != nil {
		return err
	}
	fmt.Printf("key=%s etag=%s version=%s workflow=%s\n", res.Key, res.ETag, res.VersionID, run.GetID())
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
