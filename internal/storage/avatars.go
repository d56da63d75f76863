package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/namisapo/minna-diary-backend/internal/config"
)

const MaxAvatarSize = 5 * 1024 * 1024

var (
	ErrAvatarTooLarge = errors.New("avatar must be 5MB or smaller")
	ErrAvatarBadType  = errors.New("avatar must be a JPEG or PNG image")
)

// AvatarStore uploads user avatars to an S3-compatible bucket and derives
// the public URL stored on the profile. Objects are keyed by user id so an
// upload overwrites the previous avatar and delete needs no lookup.
type AvatarStore struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewAvatarStore(cfg *config.Config) (*AvatarStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := strings.TrimSuffix(cfg.S3PublicURL, "/")
	if publicURL == "" {
		publicURL = strings.TrimSuffix(cfg.S3BaseEndpoint, "/") + "/" + cfg.S3Bucket
	}

	return &AvatarStore{
		client:    client,
		bucket:    cfg.S3Bucket,
		publicURL: publicURL,
	}, nil
}

// ExtensionFor maps an accepted content type to the stored file extension.
func ExtensionFor(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg":
		return "jpg", nil
	case "image/png":
		return "png", nil
	default:
		return "", ErrAvatarBadType
	}
}

func avatarKey(userID uuid.UUID, ext string) string {
	return fmt.Sprintf("avatars/%s.%s", userID, ext)
}

func (s *AvatarStore) Upload(ctx context.Context, userID uuid.UUID, contentType string, size int64, body io.Reader) (string, error) {
	if size > MaxAvatarSize {
		return "", ErrAvatarTooLarge
	}
	ext, err := ExtensionFor(contentType)
	if err != nil {
		return "", err
	}

	key := avatarKey(userID, ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	return s.publicURL + "/" + key, nil
}

// Delete removes both possible objects for the user; a missing key is not
// an error for S3 deletes.
func (s *AvatarStore) Delete(ctx context.Context, userID uuid.UUID) error {
	for _, ext := range []string{"jpg", "png"} {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(avatarKey(userID, ext)),
		})
		if err != nil {
			return fmt.Errorf("failed to delete avatar: %w", err)
		}
	}
	return nil
}
