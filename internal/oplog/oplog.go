package oplog

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/pebble"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Errors returned by log operations.
var (
	// ErrClosed indicates the log has been closed.
	ErrClosed = errors.New("log is closed")

	// ErrBadDocID indicates a document id the key schema cannot carry.
	ErrBadDocID = errors.New("bad document id")

	// ErrBadSeq indicates an append that is not the next sequence number.
	ErrBadSeq = errors.New("bad sequence number")
)

// Key prefixes. Operation keys are 'o' + doc + 0x00 + big-endian seq,
// so one document's operations are a contiguous, ordered key range.
const prefixOp = 'o'

var writeOptions = pebble.WriteOptions{Sync: false}

// Snapshot is a cached materialization of a document: its serialized
// tree as of Seq. Replaying a log from a snapshot only needs the
// operations after Seq.
type Snapshot struct {
	Seq  uint64
	Root []byte
}

// Log is a pebble-backed append-only operation log, one ordered
// sequence of raw operation payloads per document. Appends are
// strictly sequential per document; the log rejects gaps and replays.
//
// A small LRU holds recent document snapshots so late joiners replay
// a suffix of the log instead of the whole history.
type Log struct {
	db *pebble.DB
	wo *pebble.WriteOptions

	mu     sync.Mutex
	last   map[string]uint64
	closed bool

	snapshots *lru.Cache[string, Snapshot]

	syncWrites bool
	cacheSize  int
}

// Option configures a Log during Open.
type Option func(*Log)

// WithSyncWrites makes every append wait for the WAL fsync. Slower,
// but survives process crashes without losing acknowledged appends.
func WithSyncWrites() Option {
	return func(l *Log) {
		l.syncWrites = true
	}
}

// WithSnapshotCacheSize sets the number of document snapshots kept in
// memory.
func WithSnapshotCacheSize(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.cacheSize = n
		}
	}
}

// DefaultSnapshotCacheSize is the snapshot cache capacity when no
// option overrides it.
const DefaultSnapshotCacheSize = 128

// Open opens (or creates) a log at dir.
func Open(dir string, opts ...Option) (*Log, error) {
	l := &Log{
		last:      make(map[string]uint64),
		cacheSize: DefaultSnapshotCacheSize,
	}
	for _, opt := range opts {
		opt(l)
	}

	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open oplog at %s: %w", dir, err)
	}
	l.db = db

	wo := writeOptions
	wo.Sync = l.syncWrites
	l.wo = &wo

	l.snapshots, err = lru.New[string, Snapshot](l.cacheSize)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

// Append stores raw as operation seq of doc. Seq must be exactly one
// past the last stored sequence (the first append is seq 1); anything
// else returns ErrBadSeq, so two writers cannot silently interleave.
func (l *Log) Append(doc string, seq uint64, raw []byte) error {
	if err := checkDocID(doc); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}

	last, err := l.lastLocked(doc)
	if err != nil {
		return err
	}
	if seq != last+1 {
		return fmt.Errorf("append %s seq %d after %d: %w", doc, seq, last, ErrBadSeq)
	}

	if err := l.db.Set(opKey(doc, seq), raw, l.wo); err != nil {
		return fmt.Errorf("append %s seq %d: %w", doc, seq, err)
	}
	l.last[doc] = seq
	return nil
}

// Scan calls fn for every stored operation of doc with seq >= from, in
// sequence order. A non-nil error from fn stops the scan and is
// returned.
func (l *Log) Scan(doc string, from uint64, fn func(seq uint64, raw []byte) error) error {
	if err := checkDocID(doc); err != nil {
		return err
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.mu.Unlock()

	lo, hi := docBounds(doc, from)
	it, err := l.db.NewIter(&pebble.IterOptions{
		LowerBound: lo,
		UpperBound: hi,
	})
	if err != nil {
		return fmt.Errorf("scan %s: %w", doc, err)
	}
	defer it.Close()

	for valid := it.First(); valid; valid = it.Next() {
		seq := seqFromKey(it.Key())
		raw, err := it.ValueAndErr()
		if err != nil {
			return fmt.Errorf("scan %s seq %d: %w", doc, seq, err)
		}
		// The value is only valid until the next iterator move.
		buf := make([]byte, len(raw))
		copy(buf, raw)
		if err := fn(seq, buf); err != nil {
			return err
		}
	}
	return it.Error()
}

// LastSeq returns the highest stored sequence number for doc, or 0 when
// the document has no operations.
func (l *Log) LastSeq(doc string) (uint64, error) {
	if err := checkDocID(doc); err != nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, ErrClosed
	}
	return l.lastLocked(doc)
}

// lastLocked resolves the last sequence from the in-memory map, falling
// back to a reverse seek over the document's key range.
func (l *Log) lastLocked(doc string) (uint64, error) {
	if seq, ok := l.last[doc]; ok {
		return seq, nil
	}

	lo, hi := docBounds(doc, 1)
	it, err := l.db.NewIter(&pebble.IterOptions{
		LowerBound: lo,
		UpperBound: hi,
	})
	if err != nil {
		return 0, fmt.Errorf("last seq of %s: %w", doc, err)
	}
	defer it.Close()

	var seq uint64
	if it.Last() {
		seq = seqFromKey(it.Key())
	}
	l.last[doc] = seq
	return seq, nil
}

// CacheSnapshot remembers a materialized document for late-joiner
// replay. Snapshots are advisory: losing one only costs a longer scan.
func (l *Log) CacheSnapshot(doc string, snap Snapshot) {
	l.snapshots.Add(doc, snap)
}

// CachedSnapshot returns the most recent cached snapshot of doc, if
// any.
func (l *Log) CachedSnapshot(doc string) (Snapshot, bool) {
	return l.snapshots.Get(doc)
}

// Close flushes and closes the underlying store. Close is idempotent.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	l.snapshots.Purge()
	return l.db.Close()
}

// checkDocID rejects ids the key schema cannot represent. The zero
// byte terminates the doc id inside operation keys.
func checkDocID(doc string) error {
	if doc == "" || strings.ContainsRune(doc, 0) {
		return fmt.Errorf("%q: %w", doc, ErrBadDocID)
	}
	return nil
}

// opKey builds the key for operation seq of doc.
func opKey(doc string, seq uint64) []byte {
	k := make([]byte, 0, len(doc)+10)
	k = append(k, prefixOp)
	k = append(k, doc...)
	k = append(k, 0)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], seq)
	return append(k, b[:]...)
}

// docBounds returns the key range [lo, hi) holding doc's operations
// with seq >= from.
func docBounds(doc string, from uint64) (lo, hi []byte) {
	lo = opKey(doc, from)
	hi = make([]byte, 0, len(doc)+2)
	hi = append(hi, prefixOp)
	hi = append(hi, doc...)
	hi = append(hi, 1)
	return lo, hi
}

// seqFromKey extracts the sequence number from an operation key.
func seqFromKey(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(key)-8:])
}
