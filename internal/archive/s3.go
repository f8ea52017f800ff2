package archive

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	inoerrors "github.com/inocensus/inocensus/internal/errors"
	"github.com/inocensus/inocensus/internal/query"
	"github.com/inocensus/inocensus/pkg/types"
)

const defaultRegion = "us-east-1"

// S3Archive keeps file content in an S3-compatible bucket
type S3Archive struct {
	client *minio.Client
	bucket string
	region string

	mu    sync.Mutex
	ready bool
}

// NewS3Archive creates an archive client. No request is made until the
// first Put or Get.
func NewS3Archive(cfg types.ArchiveConfig) (*S3Archive, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("archive endpoint is required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("archive access key and secret key are required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = defaultRegion
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, inoerrors.NewConnectionError("archive", err.Error(),
			"Check ARCHIVE_ENDPOINT; it must be host[:port] without a scheme.")
	}

	return &S3Archive{client: client, bucket: bucket, region: region}, nil
}

// ensureBucket creates the bucket on first use. A failure is not
// remembered, so the next call tries again.
func (a *S3Archive) ensureBucket(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ready {
		return nil
	}

	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return inoerrors.NewConnectionError("archive", err.Error(),
			"Verify the archive endpoint is reachable and the credentials are valid.")
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: a.region}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
		}
	}
	a.ready = true
	return nil
}

// Put stores content under the object key of ref
func (a *S3Archive) Put(ctx context.Context, ref query.FileRef, content string) error {
	if err := a.ensureBucket(ctx); err != nil {
		return err
	}
	key, err := ObjectKey(ref)
	if err != nil {
		return err
	}
	_, err = a.client.PutObject(ctx, a.bucket, key, strings.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: "text/plain; charset=utf-8"})
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", key, err)
	}
	return nil
}

// Get returns the content stored for ref
func (a *S3Archive) Get(ctx context.Context, ref query.FileRef) (string, error) {
	if err := a.ensureBucket(ctx); err != nil {
		return "", err
	}
	key, err := ObjectKey(ref)
	if err != nil {
		return "", err
	}
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return string(data), nil
}

// Bucket returns the bucket name
func (a *S3Archive) Bucket() string {
	return a.bucket
}

// ObjectKey returns "<repo>/<ref>/<path>" with the path cleaned so it
// cannot climb out of its prefix
func ObjectKey(ref query.FileRef) (string, error) {
	repo := strings.Trim(strings.TrimSpace(ref.Repo), "/")
	branch := strings.TrimSpace(ref.Branch())
	p := strings.TrimSpace(ref.Path)
	if repo == "" || branch == "" || p == "" {
		return "", fmt.Errorf("incomplete file reference %q", ref.Key())
	}
	cleaned := strings.TrimPrefix(path.Clean("/"+p), "/")
	if cleaned == "" {
		return "", fmt.Errorf("invalid path %q", p)
	}
	return repo + "/" + branch + "/" + cleaned, nil
}
