package kv

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
)

// Badger is a Store backed by BadgerDB v4.
type Badger struct {
	db   *badger.DB
	opts *Options
}

// BadgerOptions configures the BadgerDB store.
type BadgerOptions struct {
	// Options is the common kv options (separator, etc.).
	Options *Options

	// Dir is the directory for BadgerDB data files.
	// Required unless InMemory is set.
	Dir string

	// InMemory runs BadgerDB in memory-only mode (no disk persistence).
	// Useful for testing with a real badger engine.
	InMemory bool

	// Logger sets the badger logger. If nil, badger's info and debug
	// output is suppressed and warnings go to slog.
	Logger badger.Logger
}

// NewBadger opens a BadgerDB-backed Store.
func NewBadger(bopts BadgerOptions) (*Badger, error) {
	if bopts.Dir == "" && !bopts.InMemory {
		return nil, errors.New("kv: BadgerOptions.Dir is required for on-disk mode")
	}

	dbOpts := badger.DefaultOptions(bopts.Dir).WithInMemory(bopts.InMemory)
	logger := bopts.Logger
	if logger == nil {
		logger = quietLogger{}
	}
	db, err := badger.Open(dbOpts.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("kv: open badger: %w", err)
	}
	return &Badger{db: db, opts: bopts.Options}, nil
}

func (b *Badger) Get(_ context.Context, key Key) ([]byte, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.opts.encode(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case err == nil:
		return val, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, ErrNotFound
	default:
		return nil, err
	}
}

func (b *Badger) Set(_ context.Context, key Key, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(b.opts.encode(key), value)
	})
}

func (b *Badger) Delete(_ context.Context, key Key) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(b.opts.encode(key))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

func (b *Badger) List(_ context.Context, prefix Key) iter.Seq2[Entry, error] {
	// A non-empty prefix is terminated with the separator so "a:b"
	// never picks up "a:bc".
	var scan []byte
	if p := b.opts.encode(prefix); len(p) > 0 {
		scan = append(p, b.opts.sep())
	}

	return func(yield func(Entry, error) bool) {
		err := b.db.View(func(txn *badger.Txn) error {
			io := badger.DefaultIteratorOptions
			io.Prefix = scan
			it := txn.NewIterator(io)
			defer it.Close()

			for it.Seek(scan); it.ValidForPrefix(scan); it.Next() {
				item := it.Item()
				val, err := item.ValueCopy(nil)
				if err != nil {
					if !yield(Entry{}, err) {
						return nil
					}
					continue
				}
				e := Entry{Key: b.opts.decode(item.KeyCopy(nil)), Value: val}
				if !yield(e, nil) {
					return nil
				}
			}
			return nil
		})
		if err != nil {
			yield(Entry{}, err)
		}
	}
}

func (b *Badger) BatchSet(_ context.Context, entries []Entry) error {
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	for _, e := range entries {
		if err := wb.Set(b.opts.encode(e.Key), e.Value); err != nil {
			return err
		}
	}
	return wb.Flush()
}

func (b *Badger) DropAll(_ context.Context) error {
	return b.db.DropAll()
}

func (b *Badger) Close() error {
	return b.db.Close()
}

// quietLogger forwards badger errors and warnings to slog and drops the
// info and debug chatter.
type quietLogger struct{}

func (quietLogger) Errorf(f string, v ...interface{}) { slog.Error("badger: " + sprintf(f, v...)) }
func (quietLogger) Warningf(f string, v ...interface{}) {
	slog.Warn("badger: " + sprintf(f, v...))
}
func (quietLogger) Infof(string, ...interface{})  {}
func (quietLogger) Debugf(string, ...interface{}) {}

// sprintf is fmt.Sprintf with trailing newlines trimmed, since badger's
// logger interface passes printf-style formats that often end in '\n'.
func sprintf(f string, v ...interface{}) string {
	return strings.TrimRight(fmt.Sprintf(f, v...), "\n")
}
