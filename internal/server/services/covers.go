package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/boulin/eventverse/internal/server/config"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// CoverStorage hands out upload targets for event cover images.
type CoverStorage interface {
	// PresignPut returns a URL the client can PUT the object key to.
	PresignPut(ctx context.Context, key string) (string, error)
	// PublicURL is where the object key can be downloaded from.
	PublicURL(key string) string
}

// S3Covers stores covers in an S3-compatible bucket (MinIO in development).
type S3Covers struct {
	config *sc.Config
}

func NewS3Covers(config *sc.Config) *S3Covers {
	return &S3Covers{config: config}
}

// CoverKey returns a fresh object key under the event's prefix.
func CoverKey(eventID string) string {
	d := time.Now().UTC()
	return fmt.Sprintf("events/%s/%d%02d%02d-%s", eventID, d.Year(), d.Month(), d.Day(), uuid.NewString())
}

func (s *S3Covers) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

func (s *S3Covers) PresignPut(ctx context.Context, key string) (string, error) {
	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.CoverUploadValidity))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

func (s *S3Covers) PublicURL(key string) string {
	return strings.TrimRight(s.config.CoverPublicURL(), "/") + "/" + key
}
