package loader

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"testing"
)

type memLoader map[string][]byte

func (m memLoader) Open(_ context.Context, path string) (io.ReadCloser, error) {
	b, ok := m[path]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func gz(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write([]byte(s)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestOpenTextDetectsCompression(t *testing.T) {
	l := memLoader{
		"plain.txt":   []byte("10\tfoo\n"),
		"names.gz":    gz(t, "10\tfoo\n"),
		"misnamed.gz": []byte("10\tfoo\n"),
		"empty":       {},
	}

	tests := []struct {
		path string
		want string
	}{
		{path: "plain.txt", want: "10\tfoo\n"},
		{path: "names.gz", want: "10\tfoo\n"},
		{path: "misnamed.gz", want: "10\tfoo\n"},
		{path: "empty", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rc, err := OpenText(context.Background(), l, tt.path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer rc.Close()
			got, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("unexpected read error: %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("unexpected content: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOpenTextMissingFile(t *testing.T) {
	if _, err := OpenText(context.Background(), memLoader{}, "nope"); err == nil {
		t.Fatal("expected error")
	}
}

func TestMuxRoutes(t *testing.T) {
	m := &Mux{
		Local: memLoader{"a.txt": []byte("local")},
		S3:    memLoader{"s3://bucket/a.txt": []byte("remote")},
	}

	for path, want := range map[string]string{"a.txt": "local", "s3://bucket/a.txt": "remote"} {
		rc, err := m.Open(context.Background(), path)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", path, err)
		}
		got, _ := io.ReadAll(rc)
		rc.Close()
		if string(got) != want {
			t.Fatalf("unexpected content for %s: %q", path, got)
		}
	}

	if _, err := (&Mux{Local: memLoader{}}).Open(context.Background(), "s3://bucket/x"); err == nil {
		t.Fatal("expected error without s3 loader")
	}
}

func TestSplitS3URI(t *testing.T) {
	tests := []struct {
		uri     string
		bucket  string
		key     string
		wantErr bool
	}{
		{uri: "s3://kb/nell/names.txt.gz", bucket: "kb", key: "nell/names.txt.gz"},
		{uri: "s3://kb", wantErr: true},
		{uri: "s3:///key", wantErr: true},
		{uri: "/local/file", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			b, k, err := SplitS3URI(tt.uri)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s", tt.uri)
				}
				return
			}
			if err != nil || b != tt.bucket || k != tt.key {
				t.Fatalf("unexpected split: %q %q %v", b, k, err)
			}
		})
	}
}
