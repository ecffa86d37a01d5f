package library

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/EMargovich/TelRan-Library/internal/models"
)

// Snapshot is a full copy of the store's entities, the state surface
// handed to a persistence collaborator. Indices are derived data and are
// rebuilt on restore, so only the entities themselves are carried.
type Snapshot struct {
	Books   []models.Book
	Readers []models.Reader
	Records []models.PickRecord
}

// Snapshot copies the current state. Books and readers come out sorted by
// key; records come out in pick-day order.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Books:   make([]models.Book, 0, len(s.books)),
		Readers: make([]models.Reader, 0, len(s.readers)),
	}
	for _, book := range s.books {
		snap.Books = append(snap.Books, *book)
	}
	for _, reader := range s.readers {
		snap.Readers = append(snap.Readers, *reader)
	}
	sort.Slice(snap.Books, func(i, j int) bool { return snap.Books[i].ISBN < snap.Books[j].ISBN })
	sort.Slice(snap.Readers, func(i, j int) bool { return snap.Readers[i].ID < snap.Readers[j].ID })

	for _, day := range s.pickDays {
		for _, rec := range s.recordsByDate[day] {
			snap.Records = append(snap.Records, *rec)
		}
	}
	return snap
}

// RestoreSnapshot replaces the store's contents with the snapshot and
// rebuilds every index. The pick-period bounds are configuration, not
// state, and stay untouched.
func (s *Store) RestoreSnapshot(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.books = make(map[int64]*models.Book, len(snap.Books))
	s.readers = make(map[int]*models.Reader, len(snap.Readers))
	s.recordsByReader = make(map[int][]*models.PickRecord)
	s.recordsByBook = make(map[int64][]*models.PickRecord)
	s.recordsByDate = make(map[time.Time][]*models.PickRecord)
	s.pickDays = nil
	s.booksByAuthor = make(map[string]map[int64]struct{})

	for _, b := range snap.Books {
		book := b
		s.books[book.ISBN] = &book
		set := s.booksByAuthor[book.Author]
		if set == nil {
			set = make(map[int64]struct{})
			s.booksByAuthor[book.Author] = set
		}
		set[book.ISBN] = struct{}{}
	}
	for _, r := range snap.Readers {
		reader := r
		s.readers[reader.ID] = &reader
	}
	for _, rc := range snap.Records {
		rec := rc
		s.recordsByBook[rec.ISBN] = append(s.recordsByBook[rec.ISBN], &rec)
		s.recordsByReader[rec.ReaderID] = append(s.recordsByReader[rec.ReaderID], &rec)
		s.addToDateIndexLocked(&rec)
	}

	s.logger.Info("snapshot restored",
		zap.Int("books", len(snap.Books)),
		zap.Int("readers", len(snap.Readers)),
		zap.Int("records", len(snap.Records)))
}
