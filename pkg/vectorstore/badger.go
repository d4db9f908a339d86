package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/soundprediction/recommender/pkg/types"
)

// Record keys are record:<collection>\x00<id>. Collection names may not
// contain NUL, so one collection's prefix never matches another's records.
const (
	collectionKeyPrefix = "collection:"
	recordKeyPrefix     = "record:"
	recordKeySeparator  = "\x00"
)

type collectionMeta struct {
	Name       string `json:"name"`
	Dimensions int    `json:"dimensions"`
}

// BadgerStore keeps collections in an embedded badger database and answers
// queries by exhaustive cosine similarity.
type BadgerStore struct {
	db     *badger.DB
	owned  bool
	closed atomic.Bool
}

// OpenBadgerStore opens (or creates) a badger database at path. An empty
// path opens an in-memory database.
func OpenBadgerStore(path string, logger *slog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	if logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: logger.With("component", "badger")})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	return &BadgerStore{db: db, owned: true}, nil
}

// NewBadgerStore wraps an already open database. The caller keeps ownership.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Provider implements Store.
func (s *BadgerStore) Provider() Provider {
	return ProviderBadger
}

// Close implements Store. The database is closed only when the store opened it.
func (s *BadgerStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if s.owned {
		return s.db.Close()
	}
	return nil
}

// Collection implements Store.
func (s *BadgerStore) Collection(ctx context.Context, name string) (Collection, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("collection name is required")
	}

	meta, err := s.collectionMeta(name)
	if err != nil {
		return nil, err
	}
	return &badgerCollection{store: s, meta: meta}, nil
}

func (s *BadgerStore) collectionMeta(name string) (collectionMeta, error) {
	var meta collectionMeta
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(collectionKeyPrefix + name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
		}
		if err != nil {
			return fmt.Errorf("get collection: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		})
	})
	return meta, err
}

// Upsert implements Writer. The first write fixes the collection's
// dimensionality; later records must match it.
func (s *BadgerStore) Upsert(ctx context.Context, collection string, records []Record) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	if strings.TrimSpace(collection) == "" {
		return fmt.Errorf("collection name is required")
	}
	if strings.Contains(collection, recordKeySeparator) {
		return fmt.Errorf("collection name %q contains a NUL byte", collection)
	}
	if len(records) == 0 {
		return nil
	}

	meta, err := s.collectionMeta(collection)
	if errors.Is(err, ErrCollectionNotFound) {
		meta = collectionMeta{Name: collection, Dimensions: len(records[0].Embedding)}
	} else if err != nil {
		return err
	}

	for _, r := range records {
		if r.Document.ID == "" {
			return fmt.Errorf("record ID is required")
		}
		if len(r.Embedding) != meta.Dimensions {
			return fmt.Errorf("%w: record %q has %d dimensions, collection %q has %d",
				ErrDimensionMismatch, r.Document.ID, len(r.Embedding), collection, meta.Dimensions)
		}
	}

	metaData, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	if err := wb.Set([]byte(collectionKeyPrefix+collection), metaData); err != nil {
		return fmt.Errorf("set collection: %w", err)
	}
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.Document.Distance = 0
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal record %q: %w", r.Document.ID, err)
		}
		if err := wb.Set(recordKey(collection, r.Document.ID), data); err != nil {
			return fmt.Errorf("set record %q: %w", r.Document.ID, err)
		}
	}
	return wb.Flush()
}

func recordPrefix(collection string) []byte {
	return []byte(recordKeyPrefix + collection + recordKeySeparator)
}

func recordKey(collection, id string) []byte {
	return append(recordPrefix(collection), id...)
}

type badgerCollection struct {
	store *BadgerStore
	meta  collectionMeta
}

func (c *badgerCollection) Name() string {
	return c.meta.Name
}

func (c *badgerCollection) Query(ctx context.Context, embedding []float32, n int) ([]types.Document, error) {
	if c.store.closed.Load() {
		return nil, ErrStoreClosed
	}
	if len(embedding) != c.meta.Dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection %q has %d",
			ErrDimensionMismatch, len(embedding), c.meta.Name, c.meta.Dimensions)
	}
	n = normalizeResults(n)

	queryNorm := norm(embedding)
	var hits []types.Document

	err := c.store.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = recordPrefix(c.meta.Name)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var r Record
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			}); err != nil {
				return fmt.Errorf("decode record: %w", err)
			}
			if len(r.Embedding) != len(embedding) {
				continue
			}
			r.Document.Distance = 1 - cosine(embedding, queryNorm, r.Embedding)
			hits = append(hits, r.Document)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger query on %q failed: %w", c.meta.Name, err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > n {
		hits = hits[:n]
	}
	if hits == nil {
		hits = []types.Document{}
	}
	return hits, nil
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine returns the cosine similarity of a and b, zero when either is a
// zero vector or their lengths differ.
func cosine(a []float32, aNorm float64, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	bNorm := norm(b)
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (aNorm * bNorm)
}

// badgerLogger routes badger's internal logging to slog.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
