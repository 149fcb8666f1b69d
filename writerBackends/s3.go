package writerbackends

import (
	"context"
	"fmt"
	"io"
	"path"

	"vidbatch/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// objectKey joins the optional prefix setting with the file name.
func objectKey(settings map[string]string, name string) string {
	if prefix := settings["prefix"]; prefix != "" {
		return path.Join(prefix, name)
	}
	return name
}

// uploadToS3 streams a video to S3 with a client built from static keys.
func uploadToS3(ctx context.Context, settings map[string]string, name string, reader io.Reader) error {
	creds := credentials.NewStaticCredentialsProvider(settings["accessKey"], settings["secretKey"], "")
	bucket := settings["bucket"]
	key := objectKey(settings, name)

	s3Client := s3.New(s3.Options{
		Region:      settings["region"],
		Credentials: creds,
	})

	uploader := manager.NewUploader(s3Client)
	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String("video/mp4"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s to bucket %s: %w", key, bucket, err)
	}

	logger.Infof("Uploaded object '%s' to bucket '%s'", key, bucket)
	return nil
}
