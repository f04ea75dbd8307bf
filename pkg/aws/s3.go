package aws

import (
	"items/pkg/config"
	"time"

	"github.com/gofiber/storage/s3/v2"
)

type S3 struct {
	bucket *s3.Storage
}

func NewS3Bucket(cfg *config.AppConfig) *S3 {
	storage := s3.New(s3.Config{
		Endpoint: cfg.AWSEndpoint,
		Bucket:   cfg.AWSBucket,
		Region:   cfg.AWSDefaultRegion,
		Credentials: s3.Credentials{
			AccessKey:       cfg.AWSAccessKey,
			SecretAccessKey: cfg.AWSSecretKey,
		},
		MaxAttempts:    3,
		RequestTimeout: time.Second * 10,
		Reset:          false,
	})

	return &S3{
		bucket: storage,
	}
}

// Upload stores data under key without expiry.
func (s *S3) Upload(key string, data []byte) error {
	return s.bucket.Set(key, data, 0)
}

func (s *S3) Download(key string) ([]byte, error) {
	return s.bucket.Get(key)
}

func (s *S3) Delete(key string) error {
	return s.bucket.Delete(key)
}

func (s *S3) Close() error {
	return s.bucket.Close()
}
