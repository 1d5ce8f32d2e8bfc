package views

import (
	"context"
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed templates/*.html
var embedded embed.FS

// Source yields page bodies by file name.
type Source interface {
	Read(ctx context.Context, name string) ([]byte, error)
}

// FSSource reads pages from an fs.FS.
type FSSource struct {
	FS fs.FS
}

func (s FSSource) Read(_ context.Context, name string) ([]byte, error) {
	return fs.ReadFile(s.FS, name)
}

// Embedded returns the pages compiled into the binary.
func Embedded() Source {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return FSSource{FS: sub}
}

// DirSource reads pages from a directory on disk.
type DirSource struct {
	Dir string
}

func (s DirSource) Read(_ context.Context, name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.Dir, name))
}

// S3Location is a parsed s3://bucket/prefix reference.
type S3Location struct {
	Bucket string
	Prefix string
}

// ParseS3URL splits "s3://bucket/some/prefix". ok is false for anything
// that is not an s3 URL with a bucket.
func ParseS3URL(raw string) (loc S3Location, ok bool) {
	rest, found := strings.CutPrefix(raw, "s3://")
	if !found {
		return S3Location{}, false
	}
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return S3Location{}, false
	}
	return S3Location{Bucket: bucket, Prefix: strings.Trim(prefix, "/")}, true
}

// SourceFor picks the page source for a configured views location: empty
// means the embedded pages, "s3://" an S3 bucket, anything else a directory.
func SourceFor(ctx context.Context, location string, opts S3Options) (Source, error) {
	if location == "" {
		return Embedded(), nil
	}
	if loc, ok := ParseS3URL(location); ok {
		return NewS3Source(ctx, loc, opts)
	}
	return DirSource{Dir: location}, nil
}
