// Package archive uploads dated copies of the audit log to S3-compatible storage.
package archive

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Settings locate the bucket. Endpoint is optional for AWS, required for R2/MinIO.
type Settings struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver writes audit logs under audit/<templeID>/.
type S3Archiver struct {
	client putObjectAPI
	bucket string
}

// NewS3Archiver builds a client from static credentials.
func NewS3Archiver(ctx context.Context, s Settings) (*S3Archiver, error) {
	if s.Bucket == "" {
		return nil, fmt.Errorf("archive bucket is not configured")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.AccessKey, s.SecretKey, "")),
		awsconfig.WithRegion(s.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to configure s3 client: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Archiver{client: client, bucket: s.Bucket}, nil
}

// ObjectKey is the key a log uploaded at `at` is stored under.
func ObjectKey(templeID string, at time.Time) string {
	return fmt.Sprintf("audit/%s/%s_%s.log", templeID, templeID, at.UTC().Format("20060102_150405"))
}

// Upload stores data and returns its key. The SHA-256 of the content travels as object metadata
// so auditors can compare the copy with the live file.
func (a *S3Archiver) Upload(ctx context.Context, templeID string, data []byte, at time.Time) (string, error) {
	key := ObjectKey(templeID, at)
	sum := sha256.Sum256(data)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("text/plain; charset=utf-8"),
		Metadata:    map[string]string{"sha256": hex.EncodeToString(sum[:])},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return key, nil
}
