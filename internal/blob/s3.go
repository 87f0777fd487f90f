package blob

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config carries everything needed to reach an S3-compatible store.
// Endpoint is optional: empty means real AWS S3, otherwise it points at
// MinIO, Supabase Storage, or any other compatible endpoint.
type S3Config struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string // prefix joined with the storage key to form the public URL
}

// S3Store uploads photos to a bucket and hands back public URLs.
type S3Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

var _ Uploader = (*S3Store)(nil)

// NewS3Store builds the client once at startup; the AWS SDK's client is
// safe for concurrent use, so one instance serves all requests.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("blob: loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// Bucket-in-path addressing; virtual-host style needs DNS
			// per bucket, which MinIO-style deployments rarely have.
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload writes the file under a fresh storage key and returns its public
// URL. The key is new per attempt, so a retried upload never collides with
// the debris of a failed one.
func (s *S3Store) Upload(ctx context.Context, filename, contentType string, body io.Reader) (*Object, error) {
	key := storageKey(filename, time.Now())

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("blob: uploading %s: %w", key, err)
	}

	return &Object{
		URL:      s.publicBaseURL + "/" + key,
		Pathname: key,
	}, nil
}
