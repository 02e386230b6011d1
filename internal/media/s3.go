package media

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Store serves fallback media from an S3-compatible bucket (MinIO, Garage)
// for deployments that keep prefetched files off the server host. Object keys
// are the same sanitized filenames the disk layout uses.
type S3Store struct {
	presigner *s3.PresignClient
	bucket    string
	expiry    time.Duration
}

type S3Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Region == "" {
		cfg.Region = "eu-central-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return &S3Store{
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		expiry:    1 * time.Hour,
	}, nil
}

func (s *S3Store) Serve(w http.ResponseWriter, r *http.Request, filename string) {
	if filename == "" || strings.ContainsAny(filename, `/\`) {
		http.NotFound(w, r)
		return
	}

	req, err := s.presigner.PresignGetObject(r.Context(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(filename),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		http.Error(w, "media unavailable", http.StatusBadGateway)
		return
	}

	http.Redirect(w, r, req.URL, http.StatusTemporaryRedirect)
}
