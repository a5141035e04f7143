package app

import (
	"bytes"
	"context"
	"log"
	"strings"

	appconfig "github.com/skozushko/brand-ambassador/app/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore wraps the S3 client for headshot and intro-video uploads.
// Works against any S3-compatible endpoint (path-style addressing for
// self-hosted backends).
type ObjectStore struct {
	client        *s3.Client
	publicBaseURL string
}

var store *ObjectStore

// MustInitStorage builds the shared object store from config. Fatal on
// misconfiguration, same contract as MustInitDB.
func MustInitStorage() {
	cfg, err := appconfig.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config for storage: %v", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Storage.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Storage.AccessKeyID, cfg.Storage.SecretAccessKey, "",
		)),
	)
	if err != nil {
		log.Fatalf("failed to init storage credentials: %v", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})

	store = &ObjectStore{
		client:        client,
		publicBaseURL: strings.TrimRight(cfg.Storage.PublicBaseURL, "/"),
	}
}

// Upload writes the object and returns its public URL.
func (s *ObjectStore) Upload(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return s.URL(bucket, key), nil
}

// Delete removes an object. Missing keys are not an error.
func (s *ObjectStore) Delete(ctx context.Context, bucket, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return err
}

// URL returns the public URL for a stored object.
func (s *ObjectStore) URL(bucket, key string) string {
	return s.publicBaseURL + "/" + bucket + "/" + key
}
