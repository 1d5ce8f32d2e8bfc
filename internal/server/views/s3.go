package views

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options configure the client behind S3Source. With an empty AccessKey
// the default AWS credential chain is used.
type S3Options struct {
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

type objectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// seams for tests
var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
)

// S3Source reads pages from objects under Location.Prefix in Location.Bucket.
type S3Source struct {
	Location S3Location
	client   objectGetter
}

// NewS3Source builds an S3 client from opts.
func NewS3Source(ctx context.Context, loc S3Location, opts S3Options) (*S3Source, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
			// MinIO and most self-hosted endpoints do not serve virtual-hosted buckets.
			o.UsePathStyle = true
		}
	})

	return &S3Source{Location: loc, client: client}, nil
}

func (s *S3Source) key(name string) string {
	if s.Location.Prefix == "" {
		return name
	}
	return path.Join(s.Location.Prefix, name)
}

func (s *S3Source) Read(ctx context.Context, name string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Location.Bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get %s/%s: %w", s.Location.Bucket, s.key(name), err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}
