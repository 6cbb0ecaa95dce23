package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// apiError implements smithy.APIError for test assertions.
type apiError struct {
	code string
	msg  string
}

func (e *apiError) Error() string                 { return e.msg }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.msg }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

var (
	errNoSuchKey = &apiError{code: "NoSuchKey", msg: "no such key"}
	errNotFound  = &apiError{code: "NotFound", msg: "not found"}
)

// mockS3 is an in-memory S3 backend that honors Range headers.
type mockS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	ranges  []string

	getErr error
}

func newMockS3() *mockS3 {
	return &mockS3{objects: make(map[string][]byte)}
}

func (m *mockS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errNoSuchKey
	}
	if in.Range != nil {
		m.ranges = append(m.ranges, *in.Range)
		var first, last int
		if _, err := fmt.Sscanf(*in.Range, "bytes=%d-%d", &first, &last); err != nil {
			return nil, err
		}
		data = data[first : last+1]
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

func (m *mockS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, errNotFound
	}
	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(data))),
		ETag:          aws.String(fmt.Sprintf(`"%x"`, len(data))),
	}, nil
}

func TestS3Object(t *testing.T) {
	mock := newMockS3()
	mock.objects["media/a.opus"] = digits()
	ctx := context.Background()

	obj, err := OpenS3(ctx, mock, "media", "a.opus")
	if err != nil {
		t.Fatal(err)
	}
	if obj.Size() != 10 || obj.ETag() != `"a"` {
		t.Errorf("Size() = %d, ETag() = %q", obj.Size(), obj.ETag())
	}

	p := make([]byte, 4)
	n, err := obj.ReadAtContext(ctx, p, 3)
	if err != nil || n != 4 || p[0] != 3 {
		t.Fatalf("ReadAt(3) = %d, %v, %v", n, p, err)
	}
	n, err = obj.ReadAt(p, 8)
	if err != io.EOF || n != 2 || p[1] != 9 {
		t.Errorf("ReadAt(8) = %d, %v, want 2, io.EOF", n, err)
	}
	if _, err := obj.ReadAt(p, 10); err != io.EOF {
		t.Errorf("ReadAt(10) error = %v, want io.EOF", err)
	}
	want := []string{"bytes=3-6", "bytes=8-9"}
	if len(mock.ranges) != 2 || mock.ranges[0] != want[0] || mock.ranges[1] != want[1] {
		t.Errorf("ranges = %v, want %v", mock.ranges, want)
	}
}

func TestS3Object_AsSource(t *testing.T) {
	mock := newMockS3()
	mock.objects["media/a.opus"] = digits()
	obj, err := OpenS3(context.Background(), mock, "media", "a.opus")
	if err != nil {
		t.Fatal(err)
	}
	sourceContract(t, NewReaderAt(obj, obj.Size(), WithWindowSize(4)))
}

func TestS3Object_NotFound(t *testing.T) {
	mock := newMockS3()
	if _, err := OpenS3(context.Background(), mock, "media", "missing"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("OpenS3 error = %v, want os.ErrNotExist", err)
	}

	mock.objects["media/gone"] = digits()
	obj, err := OpenS3(context.Background(), mock, "media", "gone")
	if err != nil {
		t.Fatal(err)
	}
	delete(mock.objects, "media/gone")
	if _, err := obj.ReadAt(make([]byte, 2), 0); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadAt error = %v, want os.ErrNotExist", err)
	}
}

func TestS3Object_GetError(t *testing.T) {
	mock := newMockS3()
	mock.objects["media/a"] = digits()
	obj, err := OpenS3(context.Background(), mock, "media", "a")
	if err != nil {
		t.Fatal(err)
	}
	mock.getErr = &apiError{code: "SlowDown", msg: "slow down"}
	_, err = obj.ReadAt(make([]byte, 2), 0)
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) || apiErr.ErrorCode() != "SlowDown" {
		t.Errorf("ReadAt error = %v, want SlowDown", err)
	}
	if errors.Is(err, os.ErrNotExist) {
		t.Error("throttling reported as not found")
	}
}
