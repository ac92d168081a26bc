package s3

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeGetter struct {
	bucket, key string
	body        []byte
}

func (f *fakeGetter) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket = *in.Bucket
	f.key = *in.Key
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(f.body))}, nil
}

func TestOpenSplitsURI(t *testing.T) {
	g := &fakeGetter{body: []byte("10\tfoo\n")}
	l := &S3FileLoader{client: g}

	rc, err := l.Open(context.Background(), "s3://kb-dumps/nell/names.txt.gz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer rc.Close()

	if g.bucket != "kb-dumps" || g.key != "nell/names.txt.gz" {
		t.Fatalf("unexpected bucket/key: %q %q", g.bucket, g.key)
	}
	b, _ := io.ReadAll(rc)
	if string(b) != "10\tfoo\n" {
		t.Fatalf("unexpected body %q", b)
	}
}

func TestOpenRejectsLocalPath(t *testing.T) {
	l := &S3FileLoader{client: &fakeGetter{}}
	if _, err := l.Open(context.Background(), "/tmp/names.txt"); err == nil {
		t.Fatal("expected error for non s3 path")
	}
}
