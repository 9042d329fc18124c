package blob

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"notes-backend/application/ports"
	pkgerrors "notes-backend/pkg/errors"
)

// S3Store implements ports.BlobStore on an S3 bucket. All calls run
// through a circuit breaker so a misbehaving bucket degrades uploads
// quickly instead of tying up request handlers.
type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewS3Store creates an S3-backed blob store. baseURL overrides the
// public URL prefix; when empty the standard virtual-hosted URL for
// the bucket is used.
func NewS3Store(client *s3.Client, bucket, region, baseURL string, logger *zap.Logger) *S3Store {
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "s3-blob-store",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.8
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("blob store circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &S3Store{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		breaker: breaker,
		logger:  logger,
	}
}

// Upload stores the payload under a freshly generated key and returns
// the opaque blob reference plus its public URL.
func (s *S3Store) Upload(ctx context.Context, data []byte, meta ports.BlobMetadata) (ports.BlobUpload, error) {
	key := fmt.Sprintf("attachments/%s/%s", uuid.New().String(), sanitizeFilename(meta.Filename))

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if meta.ContentType != "" {
		input.ContentType = aws.String(meta.ContentType)
	}

	_, err := s.breaker.Execute(func() (interface{}, error) {
		return s.client.PutObject(ctx, input)
	})
	if err != nil {
		return ports.BlobUpload{}, pkgerrors.NewExternalError("s3", err)
	}

	return ports.BlobUpload{
		Ref: key,
		URL: s.baseURL + "/" + key,
	}, nil
}

// Release deletes the blob behind the reference. Deleting a key that
// is already gone succeeds, which keeps cleanup retries idempotent.
func (s *S3Store) Release(ctx context.Context, ref string) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(ref),
		})
	})
	if err != nil {
		return pkgerrors.NewExternalError("s3", err)
	}
	return nil
}

// sanitizeFilename strips path separators and characters that would
// produce awkward S3 keys, falling back to a generic name.
func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	cleaned = strings.Trim(cleaned, "._")
	if cleaned == "" {
		return "attachment"
	}
	return cleaned
}
