package writerbackends

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"vidbatch/logger"
	"vidbatch/models"
)

// Publish copies one finished video, read from reader, to dest under name.
func Publish(ctx context.Context, dest models.Destination, name string, reader io.Reader) error {
	switch dest.Type {
	case "local":
		if err := writeLocal(dest.Settings, name, reader); err != nil {
			return fmt.Errorf("failed to publish to local folder: %w", err)
		}
	case "s3":
		if err := uploadToS3(ctx, dest.Settings, name, reader); err != nil {
			return fmt.Errorf("failed to upload to S3: %w", err)
		}
	case "gcs":
		if err := uploadToGCS(ctx, dest.Settings, name, reader); err != nil {
			return fmt.Errorf("failed to upload to GCS: %w", err)
		}
	case "sftp":
		if err := uploadToSFTP(ctx, dest.Settings, name, reader); err != nil {
			return fmt.Errorf("failed to upload to SFTP: %w", err)
		}
	default:
		return fmt.Errorf("unknown backend type: %s", dest.Type)
	}
	return nil
}

// PublishFiles publishes every path under its base name, stopping at the
// first error. It returns the paths that were published.
func PublishFiles(ctx context.Context, dest models.Destination, paths []string) ([]string, error) {
	var done []string
	for _, path := range paths {
		select {
		case <-ctx.Done():
			return done, fmt.Errorf("publishing cancelled: %w", ctx.Err())
		default:
		}

		f, err := os.Open(path)
		if err != nil {
			return done, fmt.Errorf("failed to open file %s: %w", path, err)
		}
		err = Publish(ctx, dest, filepath.Base(path), f)
		f.Close()
		if err != nil {
			return done, fmt.Errorf("failed to publish %s to %s: %w", path, dest.Type, err)
		}
		done = append(done, path)
	}
	logger.Infof("Published %d files to %s destination", len(done), dest.Type)
	return done, nil
}
