package library

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/EMargovich/TelRan-Library/internal/models"
)

// Default pick-period bounds in days, enforced at book registration
const (
	DefaultMinPickPeriod = 3
	DefaultMaxPickPeriod = 30
)

// Checkout dates before this floor are rejected as corrupt input.
var pickDateFloor = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Store is the in-memory implementation of Library. The record indices
// share *models.PickRecord references, so closing a record on return is
// visible through every index without re-synchronization. A single RWMutex
// keeps each mutation atomic with respect to readers: every mutation
// touches several indices and none of the intermediate states may be
// observed.
type Store struct {
	mu sync.RWMutex

	minPickPeriod int
	maxPickPeriod int

	books   map[int64]*models.Book
	readers map[int]*models.Reader

	recordsByReader map[int][]*models.PickRecord
	recordsByBook   map[int64][]*models.PickRecord
	recordsByDate   map[time.Time][]*models.PickRecord
	pickDays        []time.Time // keys of recordsByDate, ascending

	booksByAuthor map[string]map[int64]struct{}

	logger *zap.Logger
}

var _ Library = (*Store)(nil)

// NewStore creates an empty store with the default pick-period bounds.
// A nil logger disables logging.
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		minPickPeriod:   DefaultMinPickPeriod,
		maxPickPeriod:   DefaultMaxPickPeriod,
		books:           make(map[int64]*models.Book),
		readers:         make(map[int]*models.Reader),
		recordsByReader: make(map[int][]*models.PickRecord),
		recordsByBook:   make(map[int64][]*models.PickRecord),
		recordsByDate:   make(map[time.Time][]*models.PickRecord),
		booksByAuthor:   make(map[string]map[int64]struct{}),
		logger:          logger,
	}
}

// MinPickPeriod returns the lower registration bound in days.
func (s *Store) MinPickPeriod() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.minPickPeriod
}

// MaxPickPeriod returns the upper registration bound in days.
func (s *Store) MaxPickPeriod() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxPickPeriod
}

// SetMinPickPeriod updates the lower bound. Non-positive values are
// ignored and the previous bound is kept.
func (s *Store) SetMinPickPeriod(days int) {
	if days <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minPickPeriod = days
}

// SetMaxPickPeriod updates the upper bound. Non-positive values are
// ignored and the previous bound is kept.
func (s *Store) SetMaxPickPeriod(days int) {
	if days <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maxPickPeriod = days
}

// RegisterBook adds a new catalog entry. The book's pick period must fall
// within the configured bounds and its ISBN must be unused.
func (s *Store) RegisterBook(book models.Book) ReturnCode {
	s.mu.Lock()
	defer s.mu.Unlock()

	if book.PickPeriod < s.minPickPeriod {
		return PickPeriodTooShort
	}
	if book.PickPeriod > s.maxPickPeriod {
		return PickPeriodTooLong
	}
	if _, exists := s.books[book.ISBN]; exists {
		return BookAlreadyExists
	}

	book.State = models.BookActive
	s.books[book.ISBN] = &book

	set := s.booksByAuthor[book.Author]
	if set == nil {
		set = make(map[int64]struct{})
		s.booksByAuthor[book.Author] = set
	}
	set[book.ISBN] = struct{}{}

	s.logger.Debug("book registered",
		zap.Int64("isbn", book.ISBN),
		zap.String("author", book.Author),
		zap.Int("amount", book.Amount))
	return Ok
}

// RegisterReader adds a new library member.
func (s *Store) RegisterReader(reader *models.Reader) ReturnCode {
	if reader == nil {
		return NoReader
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.readers[reader.ID]; exists {
		return ReaderAlreadyExists
	}
	r := *reader
	s.readers[r.ID] = &r

	s.logger.Debug("reader registered", zap.Int("reader_id", r.ID))
	return Ok
}

// AddExemplars adjusts the total copy count of an existing book.
func (s *Store) AddExemplars(isbn int64, amount int) ReturnCode {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[isbn]
	if !ok {
		return NoSuchBook
	}
	book.Amount += amount

	s.logger.Debug("exemplars added",
		zap.Int64("isbn", isbn),
		zap.Int("delta", amount),
		zap.Int("amount", book.Amount))
	return Ok
}

// LookupBook returns the book with the given ISBN. Absence is a normal
// outcome, not an error. Books pending removal stay resolvable until their
// last copy comes back.
func (s *Store) LookupBook(isbn int64) (models.Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[isbn]
	if !ok {
		return models.Book{}, false
	}
	return *book, true
}

// LookupReader returns the reader with the given id.
func (s *Store) LookupReader(id int) (models.Reader, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reader, ok := s.readers[id]
	if !ok {
		return models.Reader{}, false
	}
	return *reader, true
}

// Checkout opens a loan record for the reader/book pair and claims one
// copy. Validation order: book, copies, reader, date, duplicate loan.
func (s *Store) Checkout(isbn int64, readerID int, pickDate time.Time) ReturnCode {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.books[isbn]
	if !ok || book.State == models.BookPendingRemoval {
		return NoSuchBook
	}
	if book.AmountInUse >= book.Amount {
		return NoAvailableExemplars
	}
	if _, ok := s.readers[readerID]; !ok {
		return NoReader
	}
	if pickDate.Before(pickDateFloor) {
		return InvalidPickPeriod
	}
	if s.openRecordLocked(isbn, readerID) != nil {
		return ReaderAlreadyHoldsBook
	}

	rec := &models.PickRecord{ISBN: isbn, ReaderID: readerID, PickDate: pickDate}
	s.recordsByBook[isbn] = append(s.recordsByBook[isbn], rec)
	s.recordsByReader[readerID] = append(s.recordsByReader[readerID], rec)
	s.addToDateIndexLocked(rec)
	book.AmountInUse++

	s.logger.Debug("book checked out",
		zap.Int64("isbn", isbn),
		zap.Int("reader_id", readerID),
		zap.Time("pick_date", pickDate))
	return Ok
}

// ReturnBook closes the reader's open loan for the given ISBN, computing
// the delay against the book's pick period. When the book is pending
// removal and this was its last outstanding copy, the book is evicted and
// the result carries the evicted records. With no open loan, or a zero
// return date, the empty marker is returned and nothing changes.
func (s *Store) ReturnBook(isbn int64, readerID int, returnDate time.Time) models.RemovedBookData {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.openRecordLocked(isbn, readerID)
	if rec == nil || returnDate.IsZero() {
		return models.RemovedBookData{}
	}

	book := s.books[isbn]
	rec.ReturnDate = returnDate
	rec.DelayDays = overdueDays(daysBetween(rec.PickDate, returnDate), book.PickPeriod)
	book.AmountInUse--

	s.logger.Debug("book returned",
		zap.Int64("isbn", isbn),
		zap.Int("reader_id", readerID),
		zap.Int("delay_days", rec.DelayDays))

	if book.State == models.BookPendingRemoval && book.AmountInUse <= 0 {
		return s.evictLocked(book)
	}
	b := *book
	return models.RemovedBookData{Book: &b}
}

// RemoveBook retires a catalog entry. With no copies checked out the book
// and its records are evicted immediately; otherwise removal is deferred
// until the last open loan is returned, signaled by an empty record list.
// The second value is false when the ISBN is unknown or the book is
// already pending removal.
func (s *Store) RemoveBook(isbn int64) (models.RemovedBookData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeBookLocked(isbn)
}

func (s *Store) removeBookLocked(isbn int64) (models.RemovedBookData, bool) {
	book, ok := s.books[isbn]
	if !ok || book.State == models.BookPendingRemoval {
		return models.RemovedBookData{}, false
	}

	book.State = models.BookPendingRemoval
	if book.AmountInUse > 0 {
		s.logger.Info("book removal deferred",
			zap.Int64("isbn", isbn),
			zap.Int("in_use", book.AmountInUse))
		b := *book
		return models.RemovedBookData{Book: &b, Records: []models.PickRecord{}}, true
	}
	return s.evictLocked(book), true
}

// RemoveAuthor retires every active book of the author. Books already
// pending removal are skipped.
func (s *Store) RemoveAuthor(author string) []models.RemovedBookData {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Snapshot first: removal mutates the author set being iterated.
	var active []int64
	for isbn := range s.booksByAuthor[author] {
		if s.books[isbn].State == models.BookActive {
			active = append(active, isbn)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i] < active[j] })

	var results []models.RemovedBookData
	for _, isbn := range active {
		if data, ok := s.removeBookLocked(isbn); ok {
			results = append(results, data)
		}
	}
	return results
}

// evictLocked removes the book and all of its records from every index
// and reports what was evicted.
func (s *Store) evictLocked(book *models.Book) models.RemovedBookData {
	recs := s.recordsByBook[book.ISBN]
	for _, rec := range recs {
		s.removeFromDateIndexLocked(rec)
		remaining := removeRecord(s.recordsByReader[rec.ReaderID], rec)
		if len(remaining) == 0 {
			delete(s.recordsByReader, rec.ReaderID)
		} else {
			s.recordsByReader[rec.ReaderID] = remaining
		}
	}

	delete(s.books, book.ISBN)
	delete(s.recordsByBook, book.ISBN)
	if set := s.booksByAuthor[book.Author]; set != nil {
		delete(set, book.ISBN)
		if len(set) == 0 {
			delete(s.booksByAuthor, book.Author)
		}
	}

	evicted := make([]models.PickRecord, 0, len(recs))
	for _, rec := range recs {
		evicted = append(evicted, *rec)
	}

	s.logger.Info("book evicted",
		zap.Int64("isbn", book.ISBN),
		zap.Int("records", len(evicted)))

	b := *book
	return models.RemovedBookData{Book: &b, Records: evicted}
}

// openRecordLocked finds the reader's open loan for the ISBN, if any.
// Closed records for the same pair never block a new checkout.
func (s *Store) openRecordLocked(isbn int64, readerID int) *models.PickRecord {
	for _, rec := range s.recordsByReader[readerID] {
		if rec.ISBN == isbn && rec.Open() {
			return rec
		}
	}
	return nil
}

func (s *Store) addToDateIndexLocked(rec *models.PickRecord) {
	day := dayOf(rec.PickDate)
	if _, ok := s.recordsByDate[day]; !ok {
		i := sort.Search(len(s.pickDays), func(i int) bool { return !s.pickDays[i].Before(day) })
		s.pickDays = append(s.pickDays, time.Time{})
		copy(s.pickDays[i+1:], s.pickDays[i:])
		s.pickDays[i] = day
	}
	s.recordsByDate[day] = append(s.recordsByDate[day], rec)
}

func (s *Store) removeFromDateIndexLocked(rec *models.PickRecord) {
	day := dayOf(rec.PickDate)
	remaining := removeRecord(s.recordsByDate[day], rec)
	if len(remaining) > 0 {
		s.recordsByDate[day] = remaining
		return
	}
	delete(s.recordsByDate, day)
	i := sort.Search(len(s.pickDays), func(i int) bool { return !s.pickDays[i].Before(day) })
	if i < len(s.pickDays) && s.pickDays[i].Equal(day) {
		s.pickDays = append(s.pickDays[:i], s.pickDays[i+1:]...)
	}
}

// removeRecord drops one record from a list by reference identity,
// preserving the order of the rest.
func removeRecord(recs []*models.PickRecord, target *models.PickRecord) []*models.PickRecord {
	for i, rec := range recs {
		if rec == target {
			return append(recs[:i], recs[i+1:]...)
		}
	}
	return recs
}

// dayOf normalizes a timestamp to its calendar day at UTC midnight, the
// granularity of the date index.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(dayOf(to).Sub(dayOf(from)) / (24 * time.Hour))
}

func overdueDays(loanDays, pickPeriod int) int {
	if loanDays > pickPeriod {
		return loanDays - pickPeriod
	}
	return 0
}
