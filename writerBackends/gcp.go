package writerbackends

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"vidbatch/logger"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// uploadToGCS streams a video to a GCS object using a base64-encoded service
// account key from settings["credentialsJSON"].
func uploadToGCS(ctx context.Context, settings map[string]string, name string, reader io.Reader) error {
	credentialsJSON, err := base64.StdEncoding.DecodeString(settings["credentialsJSON"])
	if err != nil {
		return fmt.Errorf("decode credentialsJSON: %w", err)
	}
	bucketName := settings["bucket"]
	objectName := objectKey(settings, name)

	client, err := storage.NewClient(ctx, option.WithCredentialsJSON(credentialsJSON))
	if err != nil {
		return fmt.Errorf("storage.NewClient: %w", err)
	}
	defer client.Close()

	wc := client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	wc.ContentType = "video/mp4"

	if _, err = io.Copy(wc, reader); err != nil {
		wc.Close()
		return fmt.Errorf("io.Copy: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %w", err)
	}

	logger.Infof("Uploaded object '%s' to bucket '%s'", objectName, bucketName)
	return nil
}
