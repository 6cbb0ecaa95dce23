package source

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Identity describes where a source came from. It keys the probe cache.
type Identity struct {
	URI  string
	Size int64
	// Tag changes whenever the content changes: the modification time of a
	// file, the ETag of an S3 object.
	Tag string
}

// OpenOptions configures Open.
type OpenOptions struct {
	// S3 is required to open s3:// URIs.
	S3 S3Client

	// WindowSize overrides DefaultWindowSize.
	WindowSize int
}

// Open resolves uri to a seekable source. The caller must Close it.
//
// Supported forms are plain paths, file:// URLs and s3://bucket/key.
func Open(ctx context.Context, uri string, opts OpenOptions) (*ReaderAt, Identity, error) {
	var ropts []ReaderAtOption
	if opts.WindowSize > 0 {
		ropts = append(ropts, WithWindowSize(opts.WindowSize))
	}

	if strings.HasPrefix(uri, "s3://") {
		bucket, key, err := ParseS3URI(uri)
		if err != nil {
			return nil, Identity{}, err
		}
		if opts.S3 == nil {
			return nil, Identity{}, fmt.Errorf("source: %s: no S3 client configured", uri)
		}
		obj, err := OpenS3(ctx, opts.S3, bucket, key)
		if err != nil {
			return nil, Identity{}, err
		}
		id := Identity{URI: uri, Size: obj.Size(), Tag: obj.ETag()}
		return NewReaderAt(obj, obj.Size(), ropts...), id, nil
	}

	path := uri
	if strings.HasPrefix(uri, "file://") {
		u, err := url.Parse(uri)
		if err != nil {
			return nil, Identity{}, fmt.Errorf("source: parse %s: %w", uri, err)
		}
		path = u.Path
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, Identity{}, fmt.Errorf("source: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, Identity{}, fmt.Errorf("source: stat %s: %w", path, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, Identity{}, fmt.Errorf("source: %s is a directory", path)
	}
	id := Identity{
		URI:  path,
		Size: info.Size(),
		Tag:  info.ModTime().UTC().Format("20060102T150405.000000000Z"),
	}
	ropts = append(ropts, WithCloser(f))
	return NewReaderAt(f, info.Size(), ropts...), id, nil
}

// ParseS3URI splits s3://bucket/key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("source: %q is not an s3:// URI", uri)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("source: %q: want s3://bucket/key", uri)
	}
	return bucket, key, nil
}
