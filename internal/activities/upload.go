package activities

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	iopkg "github.com/yourorg/bucket-upload/internal/iopkg"
	"github.com/yourorg/bucket-upload/internal/storage"
	"github.com/yourorg/bucket-upload/internal/types"
)

type Config struct {
	Uploader storage.Uploader
}

type Activities struct {
	cfg Config
}

func New(cfg Config) *Activities { return &Activities{cfg: cfg} }

// UploadObject stores one payload and reports where it went.
// Bad input is returned as a non-retryable application error.
func (a *Activities) UploadObject(ctx context.Context, p types.UploadParams) (types.UploadResult, error) {
	if p.Name == "" {
		return types.UploadResult{}, temporal.NewNonRetryableApplicationError("upload name is empty", "InvalidParams", storage.ErrEmptyName)
	}

	data := p.Data
	if p.SourceURI != "" {
		if len(p.Data) > 0 {
			return types.UploadResult{}, temporal.NewNonRetryableApplicationError("upload has both data and source", "InvalidParams", nil)
		}
		b, err := iopkg.ReadPayload(p.SourceURI)
		if err != nil {
			return types.UploadResult{}, fmt.Errorf("read %s: %w", p.SourceURI, err)
		}
		data = b
	}

	out, err := a.cfg.Uploader.Upload(ctx, data, p.Name)
	if err != nil {
		if errors.Is(err, storage.ErrEmptyName) {
			return types.UploadResult{}, temporal.NewNonRetryableApplicationError(err.Error(), "InvalidParams", err)
		}
		return types.UploadResult{}, err
	}

	bucket := a.cfg.Uploader.Bucket()
	res := types.UploadResult{
		Bucket: bucket,
		Key:    storage.ObjectKey(bucket, p.Name),
		Size:   int64(len(data)),
	}
	if out != nil {
		res.ETag = aws.ToString(out.ETag)
		res.VersionID = aws.ToString(out.VersionId)
	}
	activity.GetLogger(ctx).Info("Uploaded object", "key", res.Key, "bytes", res.Size)
	return res, nil
}
