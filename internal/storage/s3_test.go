package storage

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yourorg/bucket-upload/internal/config"
	"github.com/yourorg/bucket-upload/internal/metrics"
)

type fakeS3 struct {
	mu      sync.Mutex
	calls   int
	buckets []string
	keys    []string
	bodies  [][]byte
	out     *s3.PutObjectOutput
	err     error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.buckets = append(f.buckets, aws.ToString(in.Bucket))
	f.keys = append(f.keys, aws.ToString(in.Key))
	var b []byte
	if in.Body != nil {
		b, _ = io.ReadAll(in.Body)
	}
	f.bodies = append(f.bodies, b)
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func TestObjectKey(t *testing.T) {
	if got := ObjectKey("my-bucket", "report.csv"); got != "my-bucket/report.csv" {
		t.Fatalf("ObjectKey=%q", got)
	}
	if got := ObjectKey("b", "dir/name.txt"); got != "b/dir/name.txt" {
		t.Fatalf("ObjectKey=%q", got)
	}
}

func TestUploadSinglePut(t *testing.T) {
	want := &s3.PutObjectOutput{ETag: aws.String(`"abc"`)}
	f := &fakeS3{out: want}
	u := NewS3Uploader(f, "my-bucket", nil)

	got, err := u.Upload(context.Background(), []byte("a,b,c\n"), "report.csv")
	if err != nil {
		t.Fatalf("Upload err: %v", err)
	}
	if got != want {
		t.Fatalf("response was not returned as-is: %p vs %p", got, want)
	}
	if f.calls != 1 {
		t.Fatalf("calls=%d; want 1", f.calls)
	}
	if f.buckets[0] != "my-bucket" {
		t.Fatalf("bucket %q", f.buckets[0])
	}
	if f.keys[0] != "my-bucket/report.csv" {
		t.Fatalf("key %q", f.keys[0])
	}
	if string(f.bodies[0]) != "a,b,c\n" {
		t.Fatalf("body %q", string(f.bodies[0]))
	}
}

func TestUploadEmptyPayload(t *testing.T) {
	f := &fakeS3{out: &s3.PutObjectOutput{}}
	u := NewS3Uploader(f, "b", nil)
	if _, err := u.Upload(context.Background(), nil, "empty"); err != nil {
		t.Fatalf("Upload err: %v", err)
	}
	if f.calls != 1 || len(f.bodies[0]) != 0 {
		t.Fatalf("calls=%d body=%q", f.calls, f.bodies[0])
	}
}

func TestUploadErrorPassthrough(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "NoSuchBucket", Message: "The specified bucket does not exist"}
	f := &fakeS3{err: apiErr}
	u := NewS3Uploader(f, "missing", nil)

	before := testutil.ToFloat64(metrics.UploadFailures)
	out, err := u.Upload(context.Background(), []byte("x"), "x.bin")
	if err != apiErr {
		t.Fatalf("error was modified: %v", err)
	}
	if out != nil {
		t.Fatalf("expected nil output on failure")
	}
	if f.calls != 1 {
		t.Fatalf("calls=%d; want exactly one attempt", f.calls)
	}
	if d := testutil.ToFloat64(metrics.UploadFailures) - before; d != 1 {
		t.Fatalf("failure counter delta=%v", d)
	}
}

func TestUploadContextError(t *testing.T) {
	f := &fakeS3{err: context.Canceled}
	u := NewS3Uploader(f, "b", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := u.Upload(ctx, []byte("x"), "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v", err)
	}
}

func TestUploadEmptyName(t *testing.T) {
	f := &fakeS3{}
	u := NewS3Uploader(f, "b", nil)
	if _, err := u.Upload(context.Background(), []byte("x"), ""); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("err=%v; want ErrEmptyName", err)
	}
	if f.calls != 0 {
		t.Fatalf("empty name must not reach the store")
	}
}

func TestUploadConcurrent(t *testing.T) {
	f := &fakeS3{out: &s3.PutObjectOutput{}}
	u := NewS3Uploader(f, "b", nil)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = u.Upload(context.Background(), []byte("p"), "n")
		}()
	}
	wg.Wait()
	if f.calls != 16 {
		t.Fatalf("calls=%d", f.calls)
	}
}

func TestUploadBytesCounter(t *testing.T) {
	f := &fakeS3{out: &s3.PutObjectOutput{}}
	u := NewS3Uploader(f, "b", nil)
	before := testutil.ToFloat64(metrics.UploadedBytes)
	if _, err := u.Upload(context.Background(), []byte("12345"), "n"); err != nil {
		t.Fatal(err)
	}
	if d := testutil.ToFloat64(metrics.UploadedBytes) - before; d != 5 {
		t.Fatalf("bytes delta=%v", d)
	}
}

func TestEndpointOptions(t *testing.T) {
	var o s3.Options
	endpointOptions(config.LocalEndpoint{URL: "http://localhost:4572"})(&o)
	if aws.ToString(o.BaseEndpoint) != "http://localhost:4572" || !o.UsePathStyle {
		t.Fatalf("local options: endpoint=%q pathStyle=%v", aws.ToString(o.BaseEndpoint), o.UsePathStyle)
	}
	if o.RequestChecksumCalculation != aws.RequestChecksumCalculationWhenRequired {
		t.Fatalf("checksum calculation=%v", o.RequestChecksumCalculation)
	}

	var d s3.Options
	endpointOptions(config.DefaultEndpoint{})(&d)
	if d.BaseEndpoint != nil || d.UsePathStyle {
		t.Fatalf("default endpoint must leave options untouched")
	}
}

func TestNewS3ClientLocal(t *testing.T) {
	cfg := config.Config{
		AccessKeyID: "AKIDTEST",
		SecretKey:   "secret",
		Bucket:      "b",
		Region:      "us-east-1",
		Endpoint:    config.LocalEndpoint{URL: "http://localhost:4572"},
	}
	cl, err := NewS3Client(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewS3Client: %v", err)
	}
	o := cl.Options()
	if aws.ToString(o.BaseEndpoint) != "http://localhost:4572" || !o.UsePathStyle || o.Region != "us-east-1" {
		t.Fatalf("client options: %+v", o)
	}
	creds, err := o.Credentials.Retrieve(context.Background())
	if err != nil {
		t.Fatalf("credentials: %v", err)
	}
	if creds.AccessKeyID != "AKIDTEST" || creds.SecretAccessKey != "secret" {
		t.Fatalf("static credentials not applied: %+v", creds)
	}
}
