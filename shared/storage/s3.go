package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// S3Store keeps PDF menus in an S3 bucket
type S3Store struct {
	bucket   string
	prefix   string
	uploader *s3manager.Uploader
}

// NewS3Store creates an uploader for the bucket in the given region
func NewS3Store(region, bucket string) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET must be set for the s3 upload backend")
	}
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &S3Store{
		bucket:   bucket,
		prefix:   "pdfs",
		uploader: s3manager.NewUploader(sess),
	}, nil
}

// Upload streams the file to S3 under a fresh key and returns that key
func (s *S3Store) Upload(ctx context.Context, filename string, r io.Reader, size int64, progress ProgressFunc) (string, error) {
	key := path.Join(s.prefix, time.Now().UTC().Format("2006/01"), uuid.New().String()+".pdf")

	out, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(key),
		Body:               NewProgressReader(r, size, progress),
		ContentType:        aws.String(PDFContentType),
		ContentDisposition: aws.String(fmt.Sprintf("inline; filename=%q", path.Base(filename))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s to S3: %w", filename, err)
	}

	logrus.WithFields(logrus.Fields{"bucket": s.bucket, "key": key}).Infof("Uploaded PDF to %s", out.Location)
	return key, nil
}
