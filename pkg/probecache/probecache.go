// Package probecache stores probe reports keyed by source identity and
// extractor settings, so that a stream that has not changed is not read again.
//
// Records are encoded with msgpack. A record is only returned for the exact
// key it was stored under: a different size, modification tag or setting is
// a miss.
package probecache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/haivivi/oggextract/pkg/ogg"
	"github.com/haivivi/oggextract/pkg/source"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrMiss is returned by Get when no record matches the key.
var ErrMiss = errors.New("probecache: miss")

// recordVersion is bumped whenever Record changes incompatibly. Records
// of another version are treated as misses.
const recordVersion = 2

// Store is a probe report cache.
type Store interface {
	// Get returns the report stored for k. Returns ErrMiss if absent.
	Get(ctx context.Context, k Key) (*Record, error)

	// Put stores rep for k, replacing any previous record.
	Put(ctx context.Context, k Key, rep *ogg.Report) error

	// Delete removes the record for k. No error if absent.
	Delete(ctx context.Context, k Key) error

	// Close releases any resources held by the store.
	Close() error
}

// Settings are the extractor options a report depends on.
type Settings struct {
	VerifyChecksums bool `msgpack:"verify_checksums"`
	DurationProbe   bool `msgpack:"duration_probe"`
}

// Key identifies a report: the probed source and the settings it was probed
// with.
type Key struct {
	Source   source.Identity `msgpack:"source"`
	Settings Settings        `msgpack:"settings"`
}

// Record is a cached probe report.
type Record struct {
	Version  int        `msgpack:"v"`
	Key      Key        `msgpack:"key"`
	Report   ogg.Report `msgpack:"report"`
	StoredAt time.Time  `msgpack:"stored_at"`
}

// key encodes k. The URI comes last so that it may contain any byte.
func key(k Key) []byte {
	b := []byte("probe:")
	b = appendFlag(b, k.Settings.VerifyChecksums)
	b = appendFlag(b, k.Settings.DurationProbe)
	b = append(b, ':')
	b = strconv.AppendInt(b, k.Source.Size, 10)
	b = append(b, ':')
	b = strconv.AppendQuote(b, k.Source.Tag)
	b = append(b, ':')
	return append(b, k.Source.URI...)
}

func appendFlag(b []byte, on bool) []byte {
	if on {
		return append(b, '1')
	}
	return append(b, '0')
}

// now is replaced in tests.
var now = time.Now

func encode(k Key, rep *ogg.Report) ([]byte, error) {
	b, err := msgpack.Marshal(&Record{
		Version:  recordVersion,
		Key:      k,
		Report:   *rep,
		StoredAt: now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("probecache: encode %s: %w", k.Source.URI, err)
	}
	return b, nil
}

func decode(k Key, b []byte) (*Record, error) {
	var rec Record
	if err := msgpack.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("probecache: decode %s: %w", k.Source.URI, err)
	}
	if rec.Version != recordVersion || rec.Key != k {
		return nil, ErrMiss
	}
	return &rec, nil
}
