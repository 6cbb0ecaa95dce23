package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Client abstracts the S3 API operations used by [S3Object].
// The [s3.Client] type satisfies this interface.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Object reads byte ranges of one S3 object with ranged GetObject calls.
// It implements io.ReaderAt and ContextReaderAt.
type S3Object struct {
	client S3Client
	bucket string
	key    string
	size   int64
	etag   string
}

// OpenS3 stats the object and returns a reader for it.
// Returns an error wrapping os.ErrNotExist if the key does not exist.
func OpenS3(ctx context.Context, client S3Client, bucket, key string) (*S3Object, error) {
	out, err := client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, fmt.Errorf("source: s3 head %s/%s: %w", bucket, key, os.ErrNotExist)
		}
		return nil, fmt.Errorf("source: s3 head %s/%s: %w", bucket, key, err)
	}
	size := aws.ToInt64(out.ContentLength)
	if size < 0 {
		return nil, fmt.Errorf("source: s3 head %s/%s: unknown content length", bucket, key)
	}
	return &S3Object{
		client: client,
		bucket: bucket,
		key:    key,
		size:   size,
		etag:   aws.ToString(out.ETag),
	}, nil
}

// Size returns the object size in bytes.
func (o *S3Object) Size() int64 { return o.size }

// ETag returns the object's entity tag as reported by HeadObject.
func (o *S3Object) ETag() string { return o.etag }

// ReadAt implements io.ReaderAt.
func (o *S3Object) ReadAt(p []byte, off int64) (int, error) {
	return o.ReadAtContext(context.Background(), p, off)
}

// ReadAtContext reads len(p) bytes at off with a single ranged GetObject.
func (o *S3Object) ReadAtContext(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off >= o.size {
		return 0, io.EOF
	}
	last := off + int64(len(p)) - 1
	if last >= o.size {
		last = o.size - 1
	}
	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", off, last)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return 0, fmt.Errorf("source: s3 get %s/%s: %w", o.bucket, o.key, os.ErrNotExist)
		}
		return 0, fmt.Errorf("source: s3 get %s/%s: %w", o.bucket, o.key, err)
	}
	defer out.Body.Close()

	want := int(last - off + 1)
	n, err := io.ReadFull(out.Body, p[:want])
	if err != nil {
		return n, fmt.Errorf("source: s3 get %s/%s: %w", o.bucket, o.key, err)
	}
	if want < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// isS3NotFound reports whether err indicates the S3 object does not exist.
func isS3NotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return true
		}
	}
	return false
}

var (
	_ io.ReaderAt     = (*S3Object)(nil)
	_ ContextReaderAt = (*S3Object)(nil)
)
