package testutil

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcminio "github.com/testcontainers/testcontainers-go/modules/minio"

	"github.com/inocensus/inocensus/pkg/types"
)

const (
	// MinioImage is the Docker image used for S3-compatible test containers
	MinioImage = "minio/minio:RELEASE.2024-01-16T16-07-38Z"

	minioUser     = "inocensus"
	minioPassword = "inocensus-secret"
)

// SetupMinioContainer starts a MinIO server and returns an archive
// configuration pointing at it, with bucket as the target bucket. Skipped
// like SetupPostgresContainer.
func SetupMinioContainer(t *testing.T, bucket string) types.ArchiveConfig {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	container, err := tcminio.Run(ctx,
		MinioImage,
		tcminio.WithUsername(minioUser),
		tcminio.WithPassword(minioPassword),
	)
	if err != nil {
		t.Fatalf("Failed to start MinIO container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get MinIO endpoint: %v", err)
	}
	return types.ArchiveConfig{
		Endpoint:  endpoint,
		AccessKey: minioUser,
		SecretKey: minioPassword,
		Bucket:    bucket,
	}
}
