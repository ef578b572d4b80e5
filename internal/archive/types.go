package archive

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type Config struct {
	Bucket string
	Prefix string
	// empty falls back to the AWS default chain
	Region string
	// for S3-compatible stores such as MinIO
	Endpoint     string
	UsePathStyle bool
}

// the subset of *s3.Client the archive calls
type objectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}
