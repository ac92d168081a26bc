package s3

import (
	"context"
	"fmt"
	"io"

	"github.com/OFFIS-RIT/kblink/pkg/loader"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// objectGetter is the subset of *s3.Client used by the loader.
type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3FileLoader streams objects addressed as s3://bucket/key.
//
// Objects are not buffered: label and vector files are read once, line by
// line, and can be several gigabytes large.
type S3FileLoader struct {
	client objectGetter
}

// NewS3FileLoaderWithClient creates a new S3FileLoader using an existing
// s3.Client, typically the one built by internal/storage.
func NewS3FileLoaderWithClient(client *s3.Client) *S3FileLoader {
	return &S3FileLoader{client: client}
}

// Open implements loader.FileLoader.
func (l *S3FileLoader) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	bucket, key, err := loader.SplitS3URI(path)
	if err != nil {
		return nil, err
	}

	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	return out.Body, nil
}
