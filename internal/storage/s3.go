package storage

import (
	"bytes"
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/yourorg/bucket-upload/internal/config"
	"github.com/yourorg/bucket-upload/internal/metrics"
)

// NewS3Client creates an S3 client for cfg.
// Static credentials are used when configured, otherwise the SDK default chain.
// A LocalEndpoint switches to path-style requests against the emulator URL.
func NewS3Client(ctx context.Context, cfg config.Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.HasStaticCredentials() {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg, endpointOptions(cfg.Endpoint)), nil
}

func endpointOptions(ep config.Endpoint) func(*s3.Options) {
	return func(o *s3.Options) {
		local, ok := ep.(config.LocalEndpoint)
		if !ok {
			return
		}
		o.BaseEndpoint = aws.String(local.URL)
		o.UsePathStyle = true
		// Emulators do not decode aws-chunked trailing checksums.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	}
}

// S3Uploader puts payloads into a single bucket.
type S3Uploader struct {
	client PutObjectAPI
	bucket string
	log    *zap.Logger
}

// NewS3Uploader binds client to bucket. A nil logger disables logging.
func NewS3Uploader(client PutObjectAPI, bucket string, log *zap.Logger) *S3Uploader {
	if log == nil {
		log = zap.NewNop()
	}
	return &S3Uploader{client: client, bucket: bucket, log: log}
}

// Bucket returns the bucket uploads go to.
func (u *S3Uploader) Bucket() string { return u.bucket }

// Upload issues one PutObject for data under ObjectKey(bucket, name).
// The client's output and error are returned exactly as received.
func (u *S3Uploader) Upload(ctx context.Context, data []byte, name string) (*s3.PutObjectOutput, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	key := ObjectKey(u.bucket, name)

	start := time.Now()
	out, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	metrics.Uploads.Inc()
	metrics.UploadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UploadFailures.Inc()
		u.log.Warn("upload failed", zap.String("bucket", u.bucket), zap.String("key", key), zap.Error(err))
		return nil, err
	}
	metrics.UploadedBytes.Add(float64(len(data)))
	u.log.Debug("uploaded", zap.String("bucket", u.bucket), zap.String("key", key), zap.Int("bytes", len(data)))
	return out, nil
}

var _ Uploader = (*S3Uploader)(nil)
