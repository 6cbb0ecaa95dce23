package probecache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/haivivi/oggextract/pkg/ogg"
)

// Badger is a Store backed by BadgerDB v4.
type Badger struct {
	db  *badger.DB
	ttl time.Duration
}

// BadgerOptions configures the BadgerDB store.
type BadgerOptions struct {
	// Dir is the directory for BadgerDB data files.
	// Required unless InMemory is set.
	Dir string

	// InMemory runs BadgerDB without disk persistence.
	InMemory bool

	// TTL expires records after the given duration. Zero keeps them forever.
	TTL time.Duration

	// Logger receives badger warnings and errors. Defaults to slog.Default().
	Logger *slog.Logger
}

// OpenBadger opens the BadgerDB-backed store.
func OpenBadger(bopts BadgerOptions) (*Badger, error) {
	if !bopts.InMemory && bopts.Dir == "" {
		return nil, errors.New("probecache: BadgerOptions.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(bopts.Dir)
	if bopts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	log := bopts.Logger
	if log == nil {
		log = slog.Default()
	}
	dbOpts = dbOpts.WithLogger(badgerLogger{log: log})
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("probecache: open %s: %w", bopts.Dir, err)
	}
	return &Badger{db: db, ttl: bopts.TTL}, nil
}

func (b *Badger) Get(_ context.Context, k Key) (*Record, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(k))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("probecache: get %s: %w", k.Source.URI, err)
	}
	return decode(k, val)
}

func (b *Badger) Put(_ context.Context, k Key, rep *ogg.Report) error {
	val, err := encode(k, rep)
	if err != nil {
		return err
	}
	e := badger.NewEntry(key(k), val)
	if b.ttl > 0 {
		e = e.WithTTL(b.ttl)
	}
	if err := b.db.Update(func(txn *badger.Txn) error { return txn.SetEntry(e) }); err != nil {
		return fmt.Errorf("probecache: put %s: %w", k.Source.URI, err)
	}
	return nil
}

func (b *Badger) Delete(_ context.Context, k Key) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(k))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("probecache: delete %s: %w", k.Source.URI, err)
	}
	return nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}

// badgerLogger forwards badger warnings and errors to slog and drops the
// rest.
type badgerLogger struct {
	log *slog.Logger
}

func (l badgerLogger) Errorf(f string, v ...any) {
	l.log.Error(fmt.Sprintf("badger: "+f, v...))
}

func (l badgerLogger) Warningf(f string, v ...any) {
	l.log.Warn(fmt.Sprintf("badger: "+f, v...))
}

func (badgerLogger) Infof(string, ...any)  {}
func (badgerLogger) Debugf(string, ...any) {}

var (
	_ Store = (*Badger)(nil)
	_ Store = (*Memory)(nil)
)
