package storage

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"golang.org/x/xerrors"
)

type Storage interface {
	// Put stores data with the given key and returns the storage URL
	Put(ctx context.Context, key string, data []byte) (string, error)
	// Get retrieves data from the given storage URL
	Get(ctx context.Context, url string) ([]byte, error)
}

var ErrUnsupported = xerrors.New("unsupported operation")

const (
	BackendFile = "file"
	BackendS3   = "s3"
)

type Config struct {
	Backend string
	File    FileConfig
	S3      S3Config
	HTTP    HTTPConfig
}

// New returns a Storage that writes to the configured backend and reads from whichever
// backend the URL scheme names: s3:// URLs go to S3, http(s):// URLs are fetched, anything
// else is a local path.
func New(ctx context.Context, c Config) (Storage, error) {
	file, err := NewFileStorage(ctx, c.File)
	if err != nil {
		return nil, xerrors.Errorf("failed to create file storage backend: %w", err)
	}

	r := &router{
		file: file,
		http: NewHTTPStorage(c.HTTP),
	}

	switch c.Backend {
	case "", BackendFile:
		r.put = file
	case BackendS3:
		s3, err := NewS3Storage(ctx, c.S3)
		if err != nil {
			return nil, xerrors.Errorf("failed to create S3 storage backend: %w", err)
		}
		r.s3 = s3
		r.put = s3
	default:
		return nil, xerrors.Errorf("unknown storage backend %q", c.Backend)
	}
	return r, nil
}

type router struct {
	put  Storage
	file Storage
	s3   Storage
	http Storage
}

func (r *router) Put(ctx context.Context, key string, data []byte) (string, error) {
	return r.put.Put(ctx, key, data)
}

func (r *router) Get(ctx context.Context, url string) ([]byte, error) {
	switch {
	case strings.HasPrefix(url, "s3://"):
		if r.s3 == nil {
			return nil, xerrors.Errorf("cannot read %s without the s3 backend: %w", url, ErrUnsupported)
		}
		return r.s3.Get(ctx, url)
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return r.http.Get(ctx, url)
	default:
		return r.file.Get(ctx, url)
	}
}

// DiffKey names a rendered diff of the two inputs. The same pair always lands under the
// same prefix so successive runs sort by time.
func DiffKey(baseline string, target string, now time.Time, ext string) string {
	h := sha256.Sum256([]byte(baseline + target))
	return fmt.Sprintf("diff/%x/%s.%s", h[:8], now.Format("20060102150405"), ext)
}
