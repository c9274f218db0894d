package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	sc "github.com/aguerraochoa/Speakance-sub000/internal/server/config"
)

// StorageService hands out presigned PUT/DELETE URLs for voice audio
// artifacts. The client uploads directly to object storage and only the key
// travels through the parse request.
type StorageService struct {
	cfg *sc.Config
}

func NewStorageService(cfg *sc.Config) *StorageService {
	return &StorageService{cfg: cfg}
}

// AudioObjectKey builds the per-user, date-partitioned key for one capture.
func AudioObjectKey(userID string, day time.Time) string {
	return fmt.Sprintf("users/%s/%d/%d/%d/%v", userID, day.Year(), day.Month(), day.Day(), uuid.New())
}

func (s *StorageService) presignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(s.cfg.S3.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.cfg.S3.AccessKey,
			s.cfg.S3.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.cfg.S3.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.cfg.S3.BaseEndpoint)
		}
	})

	return s3.NewPresignClient(client), nil
}

// PresignedPutURL returns a fresh object key and a URL the client can PUT the
// audio file to.
func (s *StorageService) PresignedPutURL(ctx context.Context, userID string) (string, string, error) {
	presignClient, err := s.presignClient(ctx)
	if err != nil {
		return "", "", err
	}

	bucket := s.cfg.S3.Bucket
	key := AudioObjectKey(userID, time.Now().UTC())

	req, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// PresignedDeleteURL supports best-effort remote cleanup of purged tombstones.
func (s *StorageService) PresignedDeleteURL(ctx context.Context, key string) (string, error) {
	presignClient, err := s.presignClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.cfg.S3.Bucket

	req, err := presignClient.PresignDeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}
