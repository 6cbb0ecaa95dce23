package probecache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/haivivi/oggextract/pkg/extractor"
	"github.com/haivivi/oggextract/pkg/ogg"
	"github.com/haivivi/oggextract/pkg/source"
	"github.com/vmihailenco/msgpack/v5"
)

func testReport() *ogg.Report {
	return &ogg.Report{
		Codec: "opus",
		Format: extractor.Format{
			MimeType:   extractor.MimeOpus,
			SampleRate: 48000,
			Channels:   2,
			DurationUs: extractor.DurationUnknown,
			InitData:   [][]byte{[]byte("OpusHead"), {0, 1}, {2, 3}},
		},
		DurationUs:  113500,
		Samples:     6,
		Bytes:       24,
		FirstTimeUs: 0,
		LastTimeUs:  100000,
		Seeks:       2,
	}
}

func newBadger(t *testing.T) Store {
	t.Helper()
	s, err := OpenBadger(BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemory(),
		"badger": newBadger(t),
	}
}

func TestStore(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id := source.Identity{URI: "s3://media/a.opus", Size: 1234, Tag: `"etag"`}
			k := Key{Source: id, Settings: Settings{DurationProbe: true}}

			if _, err := s.Get(ctx, k); !errors.Is(err, ErrMiss) {
				t.Fatalf("Get on empty store error = %v, want ErrMiss", err)
			}
			if err := s.Put(ctx, k, testReport()); err != nil {
				t.Fatalf("Put: %v", err)
			}
			rec, err := s.Get(ctx, k)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			want := testReport()
			if rec.Report.DurationUs != want.DurationUs || rec.Report.Codec != want.Codec || rec.Report.Seeks != want.Seeks {
				t.Errorf("Report = %+v, want %+v", rec.Report, *want)
			}
			if got := rec.Report.Format.InitData; len(got) != 3 || string(got[0]) != "OpusHead" {
				t.Errorf("InitData = %q", got)
			}
			if rec.Key != k || !rec.StoredAt.Equal(fixed) {
				t.Errorf("record key = %+v, stored at %v", rec.Key, rec.StoredAt)
			}

			for _, other := range []Key{
				{Source: source.Identity{URI: id.URI, Size: id.Size + 1, Tag: id.Tag}, Settings: k.Settings},
				{Source: source.Identity{URI: id.URI, Size: id.Size, Tag: `"other"`}, Settings: k.Settings},
				{Source: source.Identity{URI: "s3://media/b.opus", Size: id.Size, Tag: id.Tag}, Settings: k.Settings},
				{Source: id, Settings: Settings{}},
				{Source: id, Settings: Settings{DurationProbe: true, VerifyChecksums: true}},
			} {
				if _, err := s.Get(ctx, other); !errors.Is(err, ErrMiss) {
					t.Errorf("Get(%+v) error = %v, want ErrMiss", other, err)
				}
			}

			if err := s.Delete(ctx, k); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := s.Get(ctx, k); !errors.Is(err, ErrMiss) {
				t.Errorf("Get after Delete error = %v, want ErrMiss", err)
			}
			if err := s.Delete(ctx, k); err != nil {
				t.Errorf("second Delete: %v", err)
			}
		})
	}
}

func TestDecode_StaleVersion(t *testing.T) {
	k := Key{Source: source.Identity{URI: "a.opus", Size: 1}}
	b, err := msgpack.Marshal(&Record{Version: recordVersion + 1, Key: k})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := decode(k, b); !errors.Is(err, ErrMiss) {
		t.Errorf("decode error = %v, want ErrMiss", err)
	}
	if _, err := decode(k, []byte{0xC1}); err == nil || errors.Is(err, ErrMiss) {
		t.Errorf("decode of garbage error = %v", err)
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		a, b Key
	}{
		{
			name: "separator in tag",
			a:    Key{Source: source.Identity{URI: "x", Size: 1, Tag: "a:b"}},
			b:    Key{Source: source.Identity{URI: "b:x", Size: 1, Tag: "a"}},
		},
		{
			name: "checksum setting",
			a:    Key{Source: source.Identity{URI: "x"}, Settings: Settings{VerifyChecksums: true}},
			b:    Key{Source: source.Identity{URI: "x"}},
		},
		{
			name: "duration probe setting",
			a:    Key{Source: source.Identity{URI: "x"}, Settings: Settings{DurationProbe: true}},
			b:    Key{Source: source.Identity{URI: "x"}, Settings: Settings{VerifyChecksums: true}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if a, b := key(tt.a), key(tt.b); string(a) == string(b) {
				t.Errorf("keys collide: %q", a)
			}
		})
	}
}

func TestBadger_Persistent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	k := Key{Source: source.Identity{URI: "/tmp/a.opus", Size: 10, Tag: "t"}, Settings: Settings{DurationProbe: true}}
	ctx := context.Background()

	s, err := OpenBadger(BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, k, testReport()); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = OpenBadger(BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, err := s.Get(ctx, k); err != nil {
		t.Errorf("Get after reopen: %v", err)
	}
}

func TestOpenBadger_RequiresDir(t *testing.T) {
	if _, err := OpenBadger(BadgerOptions{}); err == nil {
		t.Error("OpenBadger without Dir succeeded")
	}
}
