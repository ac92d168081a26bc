package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/OFFIS-RIT/kblink/pkg/checkpoint"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakePutter struct {
	bucket, key, contentType string
	body                     []byte
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.bucket = *in.Bucket
	f.key = *in.Key
	f.contentType = *in.ContentType
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = b
	return &s3.PutObjectOutput{}, nil
}

func TestCreateLocal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.tsv")
	w, err := NewWriter(nil).Create(context.Background(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := io.WriteString(w, "10\t11\t5\t1\n"); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "10\t11\t5\t1\n" {
		t.Fatalf("unexpected file content %q", b)
	}
}

func TestCreateS3UploadsOnClose(t *testing.T) {
	p := &fakePutter{}
	w, err := NewWriter(p).Create(context.Background(), "s3://results/run/correspondence.msgpack.gz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := w.Write([]byte("blob")); err != nil {
		t.Fatal(err)
	}
	if p.key != "" {
		t.Fatal("expected no upload before close")
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	if p.bucket != "results" || p.key != "run/correspondence.msgpack.gz" {
		t.Fatalf("unexpected target %q %q", p.bucket, p.key)
	}
	if p.contentType != "application/gzip" || string(p.body) != "blob" {
		t.Fatalf("unexpected upload %q %q", p.contentType, p.body)
	}
}

func TestCreateS3WithoutClient(t *testing.T) {
	if _, err := NewWriter(nil).Create(context.Background(), "s3://results/out.tsv"); err == nil {
		t.Fatal("expected error without s3 client")
	}
}

func TestFailedCheckpointIsNotUploaded(t *testing.T) {
	p := &fakePutter{}
	err := checkpoint.SaveFile(context.Background(), NewWriter(p), "s3://results/c.msgpack.gz", checkpoint.KindCorrespondence, make(chan int))
	if err == nil {
		t.Fatal("expected encode error")
	}
	if p.key != "" || p.body != nil {
		t.Fatalf("expected no upload, got %q with %d bytes", p.key, len(p.body))
	}
}

func TestAbortS3DropsBuffer(t *testing.T) {
	p := &fakePutter{}
	w, err := NewWriter(p).Create(context.Background(), "s3://results/out.tsv")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(w, "10\t11\t5\t"); err != nil {
		t.Fatal(err)
	}
	if err := w.(checkpoint.Aborter).Abort(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if p.key != "" {
		t.Fatal("expected aborted writer not to upload")
	}
}

func TestAbortLocalRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.tsv")
	w, err := NewWriter(nil).Create(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.WriteString(w, "partial"); err != nil {
		t.Fatal(err)
	}
	if err := w.(checkpoint.Aborter).Abort(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be removed, stat returned %v", path, err)
	}
}
