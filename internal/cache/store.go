// Package cache persists corpus embeddings keyed by corpus signature and
// model identifier. Entries are written once per key and replaced wholesale;
// a reader never observes vectors computed for a different corpus or model.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// Key addresses one cache entry. An entry is valid for exactly one
// (signature, model) pair; any mismatch is a miss.
type Key struct {
	Signature string `json:"signature"`
	Model     string `json:"model"`
}

// EntryID derives the stable on-disk name for this key.
func (k Key) EntryID() string {
	data := k.Signature + "|" + k.Model
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(data)).String()
}

// RecordVector pairs an issue id with its embedding, in corpus order.
type RecordVector struct {
	IssueID string    `json:"issue_id"`
	Vector  []float32 `json:"vector"`
}

// Entry is one persisted set of corpus vectors plus the metadata needed to
// verify integrity before use.
type Entry struct {
	Signature string         `json:"signature"`
	Model     string         `json:"model"`
	CreatedAt time.Time      `json:"created_at"`
	RowCount  int            `json:"row_count"`
	Dim       int            `json:"dim"`
	Vectors   []RecordVector `json:"vectors"`
}

// IOError wraps cache I/O failures. Read failures are always recoverable
// (treated as a miss); write failures are fatal only when the caller
// requires persistence.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("cache %s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Stats describes the cache contents for observability.
type Stats struct {
	EntryCount int   `json:"entry_count"`
	TotalBytes int64 `json:"total_bytes_estimate"`
	Keys       []Key `json:"keys"`
}

const entryExt = ".entry.zst"

// Store is a durable, directory-backed embedding cache. It supports
// concurrent readers; Put replaces entries atomically via temp file plus
// rename, so an interrupted write leaves either the old entry or none.
// Eviction is least-recently-used: hits touch the entry file's mtime and
// the oldest entries go first when the count or size bound is exceeded.
type Store struct {
	mu         sync.RWMutex
	dir        string
	maxEntries int
	maxBytes   int64
}

// NewStore opens (creating if needed) a cache directory.
func NewStore(dir string, maxEntries int, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &IOError{Op: "init", Err: err}
	}
	return &Store{
		dir:        dir,
		maxEntries: maxEntries,
		maxBytes:   maxBytes,
	}, nil
}

// Dir returns the backing directory.
func (s *Store) Dir() string {
	return s.dir
}

// Get returns the entry for key, or (nil, false) on a miss. Corrupted,
// unreadable, or mismatched entries are a miss, never an error: the caller
// recomputes and overwrites.
func (s *Store) Get(key Key) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.entryPath(key)
	entry, err := readEntry(path)
	if err != nil {
		return nil, false
	}

	// An ID collision or a stale file must never serve foreign vectors.
	if entry.Signature != key.Signature || entry.Model != key.Model {
		return nil, false
	}
	if entry.RowCount != len(entry.Vectors) {
		return nil, false
	}
	for _, rv := range entry.Vectors {
		if len(rv.Vector) != entry.Dim {
			return nil, false
		}
	}

	// Touch for LRU. Best effort: a failed touch only ages the entry.
	now := time.Now()
	_ = os.Chtimes(path, now, now)

	return entry, true
}

// Put writes the entry for key, replacing any existing one atomically, then
// applies the eviction bounds.
func (s *Store) Put(key Key, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.Signature = key.Signature
	entry.Model = key.Model
	entry.RowCount = len(entry.Vectors)
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.Dim == 0 && len(entry.Vectors) > 0 {
		entry.Dim = len(entry.Vectors[0].Vector)
	}

	if err := writeEntry(s.entryPath(key), entry); err != nil {
		return err
	}

	s.evictLocked()
	return nil
}

// Stats reports entry count, a total byte estimate, and the stored keys.
func (s *Store) Stats() (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{}
	for _, f := range s.listEntriesLocked() {
		entry, err := readEntry(f.path)
		if err != nil {
			continue
		}
		stats.EntryCount++
		stats.TotalBytes += f.size
		stats.Keys = append(stats.Keys, Key{Signature: entry.Signature, Model: entry.Model})
	}
	return stats, nil
}

// Clear removes every entry.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range s.listEntriesLocked() {
		if err := os.Remove(f.path); err != nil {
			return &IOError{Op: "clear", Err: err}
		}
	}
	return nil
}

func (s *Store) entryPath(key Key) string {
	return filepath.Join(s.dir, key.EntryID()+entryExt)
}

type entryFile struct {
	path    string
	size    int64
	modTime time.Time
}

func (s *Store) listEntriesLocked() []entryFile {
	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}

	var files []entryFile
	for _, de := range dirents {
		if de.IsDir() || filepath.Ext(de.Name()) != ".zst" {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		files = append(files, entryFile{
			path:    filepath.Join(s.dir, de.Name()),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
	}
	return files
}

// evictLocked drops least-recently-used entries until both bounds hold.
func (s *Store) evictLocked() {
	files := s.listEntriesLocked()

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.Before(files[j].modTime)
	})

	var total int64
	for _, f := range files {
		total += f.size
	}

	for len(files) > 0 {
		overCount := s.maxEntries > 0 && len(files) > s.maxEntries
		overSize := s.maxBytes > 0 && total > s.maxBytes
		if !overCount && !overSize {
			break
		}
		oldest := files[0]
		files = files[1:]
		total -= oldest.size
		_ = os.Remove(oldest.path)
	}
}

// writeEntry serializes, compresses, and atomically installs an entry file.
// The temp file lives in the same directory so the rename cannot cross
// filesystems; on any failure it is removed so no partial entry remains.
func writeEntry(path string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return &IOError{Op: "encode", Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-entry-*")
	if err != nil {
		return &IOError{Op: "write", Err: err}
	}
	tmpPath := tmp.Name()

	enc, err := zstd.NewWriter(tmp)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &IOError{Op: "write", Err: err}
	}

	if _, err := enc.Write(data); err != nil {
		enc.Close()
		tmp.Close()
		os.Remove(tmpPath)
		return &IOError{Op: "write", Err: err}
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &IOError{Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &IOError{Op: "write", Err: err}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &IOError{Op: "write", Err: err}
	}
	return nil
}

func readEntry(path string) (*Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "read", Err: err}
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, &IOError{Op: "read", Err: err}
	}
	defer dec.Close()

	var entry Entry
	if err := json.NewDecoder(dec.IOReadCloser()).Decode(&entry); err != nil {
		return nil, &IOError{Op: "decode", Err: err}
	}
	return &entry, nil
}
