package fetch

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// stpubdata (the public MAST mirror) lives in us-east-1 and allows
// anonymous reads.
const defaultS3Region = "us-east-1"

// S3API is the subset of the S3 client the fetcher needs; tests supply a fake.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Fetcher reads cloud-hosted products from an object store via s3:// URIs.
type S3Fetcher struct {
	client S3API
}

// S3Option adjusts how the underlying AWS client is constructed.
type S3Option func(*s3Options)

type s3Options struct {
	region           string
	accessKey        string
	secretKey        string
	endpointOverride string
}

// WithS3Region sets the bucket region.
func WithS3Region(region string) S3Option {
	return func(o *s3Options) { o.region = region }
}

// WithS3Credentials switches from anonymous to static credentials, for
// buckets that require authenticated access.
func WithS3Credentials(accessKey, secretKey string) S3Option {
	return func(o *s3Options) {
		o.accessKey = accessKey
		o.secretKey = secretKey
	}
}

// WithS3Endpoint points the client at a non-AWS endpoint (minio, test stubs).
func WithS3Endpoint(endpoint string) S3Option {
	return func(o *s3Options) { o.endpointOverride = endpoint }
}

// NewS3Fetcher builds a fetcher against the public archive bucket. Without
// credentials it signs nothing (anonymous access).
func NewS3Fetcher(ctx context.Context, opts ...S3Option) (*S3Fetcher, error) {
	o := s3Options{region: defaultS3Region}
	for _, fn := range opts {
		fn(&o)
	}

	var provider aws.CredentialsProvider = aws.AnonymousCredentials{}
	if o.accessKey != "" {
		provider = credentials.NewStaticCredentialsProvider(o.accessKey, o.secretKey, "")
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(o.region),
		awsconfig.WithCredentialsProvider(provider),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(so *s3.Options) {
		if o.endpointOverride != "" {
			so.BaseEndpoint = aws.String(o.endpointOverride)
			so.UsePathStyle = true
		}
	})

	return &S3Fetcher{client: client}, nil
}

// NewS3FetcherFromAPI wires a prebuilt client; used by tests.
func NewS3FetcherFromAPI(client S3API) *S3Fetcher {
	return &S3Fetcher{client: client}
}

// ParseS3URI splits s3://bucket/key into its parts.
func ParseS3URI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 uri: %s", uri)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed s3 uri: %s", uri)
	}
	return bucket, key, nil
}

func (s *S3Fetcher) Fetch(ctx context.Context, source, dest string) error {
	bucket, key, err := ParseS3URI(source)
	if err != nil {
		return err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("get %s: %w", source, err)
	}
	defer out.Body.Close()

	return writeAtomic(dest, out.Body)
}
