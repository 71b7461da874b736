package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"duonest/pkg/lenient"
	"duonest/pkg/logger"
	"duonest/pkg/metrics"
)

// ErrNotFound is returned by a Backend when nothing has been persisted yet.
var ErrNotFound = errors.New("store: no document persisted")

// LoadStatus tells how a Load obtained its document.
type LoadStatus int

const (
	LoadOK LoadStatus = iota
	LoadAbsent
	LoadCorrupt
)

func (s LoadStatus) String() string {
	switch s {
	case LoadOK:
		return "ok"
	case LoadAbsent:
		return "absent"
	case LoadCorrupt:
		return "corrupt"
	default:
		return fmt.Sprintf("LoadStatus(%d)", int(s))
	}
}

// Backend persists the serialised document.
type Backend interface {
	// Init prepares the storage location. It runs once before serving.
	Init(ctx context.Context) error
	// Read returns the persisted bytes or ErrNotFound.
	Read(ctx context.Context) ([]byte, error)
	// Write replaces the persisted bytes.
	Write(ctx context.Context, data []byte) error
}

// Preserver is implemented by backends that can set the stored bytes aside
// before they are replaced. The store uses it once after reading a document
// it could not decode, so the next save does not destroy it.
type Preserver interface {
	// Preserve copies or moves the current document out of the way and
	// returns where it went.
	Preserve(ctx context.Context) (string, error)
}

// Store owns the single document. Every load-modify-save cycle runs under
// one mutex so concurrent requests cannot lose each other's updates.
type Store struct {
	backend Backend
	mu      sync.Mutex
	// undecodable is set when the last read returned bytes that did not
	// decode. They are preserved before the next write.
	undecodable bool
}

func New(backend Backend) *Store {
	return &Store{backend: backend}
}

func (s *Store) Init(ctx context.Context) error {
	if err := s.backend.Init(ctx); err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	return nil
}

// Load never fails: an absent or unparsable document yields the default.
func (s *Store) Load(ctx context.Context) (*Document, LoadStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Save reports false, after logging, on any serialisation or I/O error.
func (s *Store) Save(ctx context.Context, doc *Document) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, doc)
}

// View loads the document and hands it to fn without saving.
func (s *Store) View(ctx context.Context, fn func(doc *Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, _ := s.load(ctx)
	fn(doc)
}

// Update runs one full load-modify-save cycle. fn returns false to skip the
// save (nothing changed). The result is true only if a save happened and
// succeeded.
func (s *Store) Update(ctx context.Context, fn func(doc *Document) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, _ := s.load(ctx)
	if !fn(doc) {
		return false
	}
	return s.save(ctx, doc)
}

func (s *Store) load(ctx context.Context) (*Document, LoadStatus) {
	data, err := s.backend.Read(ctx)
	if errors.Is(err, ErrNotFound) {
		logger.Sugar.Debug("No stored document, using defaults")
		s.undecodable = false
		return NewDocument(), LoadAbsent
	}
	if err != nil {
		logger.Sugar.Warnf("Failed to read document, using defaults: %v", err)
		return NewDocument(), LoadCorrupt
	}

	doc, err := Decode(data)
	if err != nil {
		logger.Sugar.Warnf("Stored document is corrupt, using defaults: %v", err)
		s.undecodable = true
		return NewDocument(), LoadCorrupt
	}
	s.undecodable = false
	return doc, LoadOK
}

func (s *Store) save(ctx context.Context, doc *Document) bool {
	data, err := Encode(doc)
	if err != nil {
		logger.Sugar.Errorf("Error encoding document: %v", err)
		metrics.DocumentSaves.WithLabelValues("error").Inc()
		return false
	}
	if s.undecodable {
		if p, ok := s.backend.(Preserver); ok {
			where, err := p.Preserve(ctx)
			if err != nil {
				logger.Sugar.Errorf("Refusing to overwrite unreadable document, preserving it failed: %v", err)
				metrics.DocumentSaves.WithLabelValues("error").Inc()
				return false
			}
			logger.Sugar.Warnf("Unreadable document preserved at %s", where)
		}
		s.undecodable = false
	}
	if err := s.backend.Write(ctx, data); err != nil {
		logger.Sugar.Errorf("Error saving data: %v", err)
		metrics.DocumentSaves.WithLabelValues("error").Inc()
		return false
	}
	metrics.DocumentSaves.WithLabelValues("ok").Inc()
	return true
}

// Decode parses a stored document, filling in lists missing from older
// schemas. Scalars of the wrong type are coerced rather than rejected.
func Decode(data []byte) (*Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("empty document")
	}
	var doc Document
	if err := lenient.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	doc.normalize()
	return &doc, nil
}

// Encode serialises the document with two-space indentation. Non-ASCII
// text and HTML characters are written as-is.
func Encode(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NextID returns a millisecond timestamp id, bumped past every id already in
// the document so two creations within one millisecond never collide.
func NextID(doc *Document, now time.Time) int64 {
	id := now.UnixMilli()
	if max := doc.maxID(); id <= max {
		id = max + 1
	}
	return id
}
