// Package storage uploads payloads to an S3-compatible bucket.
package storage

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrEmptyName is returned when Upload is called without an object name.
var ErrEmptyName = errors.New("storage: object name is empty")

// Uploader stores a payload under a name and returns the provider acknowledgement.
type Uploader interface {
	// Bucket is the bucket every upload goes to.
	Bucket() string
	Upload(ctx context.Context, data []byte, name string) (*s3.PutObjectOutput, error)
}

// PutObjectAPI is the subset of the s3 client used for uploads; allows test fakes.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ObjectKey returns the key an upload of name is stored under.
// The bucket is repeated in the key because LocalStack needs it and
// production keeps the same layout.
func ObjectKey(bucket, name string) string {
	return bucket + "/" + name
}
