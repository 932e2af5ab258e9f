package readaloud

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ReaderSession tracks one reader's position in a book: the current section
// and the playback time within its narration. Loads are guarded by a
// generation counter so that when the user opens a new book while a previous
// load is still in flight, the stale result is discarded instead of
// clobbering the fresh one.
//
// A ReaderSession is safe for concurrent use.
type ReaderSession struct {
	// ID uniquely identifies the session, for host applications that persist
	// per-session state.
	ID string

	mu         sync.Mutex
	generation uint64
	book       *Book
	section    int
	position   float64
}

// NewReaderSession creates an empty session with a fresh unique ID.
func NewReaderSession() *ReaderSession {
	return &ReaderSession{ID: uuid.NewString()}
}

// BeginLoad marks the start of a book load and returns the generation token
// that Accept requires. Any load begun earlier becomes stale.
func (rs *ReaderSession) BeginLoad() uint64 {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.generation++
	return rs.generation
}

// Accept installs the loaded book if gen is still the current generation.
// Returns false when a newer load has been begun since, in which case the
// caller should close the book it loaded.
func (rs *ReaderSession) Accept(gen uint64, b *Book) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if gen != rs.generation {
		return false
	}
	rs.book = b
	rs.section = 0
	rs.position = 0
	return true
}

// Load opens the book at path and installs it synchronously.
func (rs *ReaderSession) Load(path string) (*Book, error) {
	gen := rs.BeginLoad()
	b, err := Open(path)
	if err != nil {
		return nil, err
	}
	if !rs.Accept(gen, b) {
		b.Close()
		return nil, fmt.Errorf("readaloud: load of %s superseded", path)
	}
	return b, nil
}

// Book returns the currently installed book, or nil.
func (rs *ReaderSession) Book() *Book {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.book
}

// GoTo moves the session to the given section index and resets the playback
// position. Returns ErrInvalidSection when the index is out of range.
func (rs *ReaderSession) GoTo(section int) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.book == nil {
		return fmt.Errorf("readaloud: no book loaded: %w", ErrInvalidSection)
	}
	if section < 0 || section >= rs.book.SectionCount() {
		return fmt.Errorf("readaloud: section index %d out of range: %w", section, ErrInvalidSection)
	}
	rs.section = section
	rs.position = 0
	return nil
}

// Seek sets the playback position in seconds within the current section.
// Negative positions clamp to zero.
func (rs *ReaderSession) Seek(t float64) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if t < 0 {
		t = 0
	}
	rs.position = t
}

// Position returns the current section index and playback time.
func (rs *ReaderSession) Position() (section int, t float64) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.section, rs.position
}
