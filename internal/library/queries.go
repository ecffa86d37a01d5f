package library

import (
	"sort"
	"strings"
	"time"

	"github.com/EMargovich/TelRan-Library/internal/models"
)

// BooksPickedByReader returns the distinct books the reader has ever
// checked out, in first-checkout order. Books evicted since then no longer
// appear: eviction removes their records from the reader index.
func (s *Store) BooksPickedByReader(readerID int) []models.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int64]struct{})
	var books []models.Book
	for _, rec := range s.recordsByReader[readerID] {
		if _, ok := seen[rec.ISBN]; ok {
			continue
		}
		seen[rec.ISBN] = struct{}{}
		if book, ok := s.books[rec.ISBN]; ok {
			books = append(books, *book)
		}
	}
	return books
}

// ReadersWhoPickedBook returns the distinct readers who have ever checked
// out the book, in first-checkout order.
func (s *Store) ReadersWhoPickedBook(isbn int64) []models.Reader {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int]struct{})
	var readers []models.Reader
	for _, rec := range s.recordsByBook[isbn] {
		if _, ok := seen[rec.ReaderID]; ok {
			continue
		}
		seen[rec.ReaderID] = struct{}{}
		if reader, ok := s.readers[rec.ReaderID]; ok {
			readers = append(readers, *reader)
		}
	}
	return readers
}

// BooksByAuthor returns the author's books that still have spare copies.
// Books pending removal are excluded regardless of their counters.
func (s *Store) BooksByAuthor(author string) []models.Book {
	if strings.TrimSpace(author) == "" {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var books []models.Book
	for isbn := range s.booksByAuthor[author] {
		book := s.books[isbn]
		if book.State == models.BookActive && book.Amount > book.AmountInUse {
			books = append(books, *book)
		}
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ISBN < books[j].ISBN })
	return books
}

// RecordsInDateRange returns every record picked within [from, to),
// ordered by pick day.
func (s *Store) RecordsInDateRange(from, to time.Time) []models.PickRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recordsInRangeLocked(from, to)
}

func (s *Store) recordsInRangeLocked(from, to time.Time) []models.PickRecord {
	if to.Before(from) {
		return nil
	}
	fromDay, toDay := dayOf(from), dayOf(to)
	lo := sort.Search(len(s.pickDays), func(i int) bool { return !s.pickDays[i].Before(fromDay) })
	hi := sort.Search(len(s.pickDays), func(i int) bool { return !s.pickDays[i].Before(toDay) })

	var recs []models.PickRecord
	for _, day := range s.pickDays[lo:hi] {
		for _, rec := range s.recordsByDate[day] {
			recs = append(recs, *rec)
		}
	}
	return recs
}

// ReadersCurrentlyDelaying reports every open loan overdue as of the given
// date, one entry per record: a reader holding two overdue books yields
// two entries.
func (s *Store) ReadersCurrentlyDelaying(asOf time.Time) []models.ReaderDelay {
	if asOf.IsZero() {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var delays []models.ReaderDelay
	for _, day := range s.pickDays {
		for _, rec := range s.recordsByDate[day] {
			if !rec.Open() {
				continue
			}
			overdue := overdueDays(daysBetween(rec.PickDate, asOf), s.books[rec.ISBN].PickPeriod)
			if overdue > 0 {
				delays = append(delays, models.ReaderDelay{Reader: *s.readers[rec.ReaderID], Days: overdue})
			}
		}
	}
	return delays
}

// ReadersEverDelayed reports every closed loan that came back late, one
// entry per record.
func (s *Store) ReadersEverDelayed() []models.ReaderDelay {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var delays []models.ReaderDelay
	for _, day := range s.pickDays {
		for _, rec := range s.recordsByDate[day] {
			if !rec.Open() && rec.DelayDays > 0 {
				delays = append(delays, models.ReaderDelay{Reader: *s.readers[rec.ReaderID], Days: rec.DelayDays})
			}
		}
	}
	return delays
}

// MostPopularBooks counts checkouts within [fromDate, toDate) by readers
// whose age at pick date falls in [fromAge, toAge) and returns every book
// tied at the maximum count.
func (s *Store) MostPopularBooks(fromDate, toDate time.Time, fromAge, toAge int) []models.Book {
	if fromDate.IsZero() || toDate.IsZero() || fromDate.After(toDate) {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[int64]int)
	for _, rec := range s.recordsInRangeLocked(fromDate, toDate) {
		age := wholeYears(s.readers[rec.ReaderID].BirthDate, rec.PickDate)
		if age < fromAge || age >= toAge {
			continue
		}
		counts[rec.ISBN]++
	}

	var books []models.Book
	for _, isbn := range maxKeys(counts) {
		books = append(books, *s.books[isbn])
	}
	return books
}

// MostPopularAuthors counts every checkout ever recorded against the
// author of the picked book and returns all authors tied at the maximum.
func (s *Store) MostPopularAuthors() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for isbn, recs := range s.recordsByBook {
		counts[s.books[isbn].Author] += len(recs)
	}
	return maxKeys(counts)
}

// MostActiveReaders counts checkouts within [fromDate, toDate) and returns
// every reader tied at the maximum count.
func (s *Store) MostActiveReaders(fromDate, toDate time.Time) []models.Reader {
	if fromDate.IsZero() || toDate.IsZero() {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[int]int)
	for _, rec := range s.recordsInRangeLocked(fromDate, toDate) {
		counts[rec.ReaderID]++
	}

	var readers []models.Reader
	for _, id := range maxKeys(counts) {
		readers = append(readers, *s.readers[id])
	}
	return readers
}

// maxKeys returns every key tied at the maximum count. Returning all
// maxima is deliberate policy: no single winner is ever chosen.
func maxKeys[K comparable](counts map[K]int) []K {
	best := 0
	for _, n := range counts {
		if n > best {
			best = n
		}
	}
	if best == 0 {
		return nil
	}
	var keys []K
	for k, n := range counts {
		if n == best {
			keys = append(keys, k)
		}
	}
	return keys
}

// wholeYears is the count of full calendar years between two dates.
func wholeYears(from, to time.Time) int {
	years := to.Year() - from.Year()
	if to.Month() < from.Month() || (to.Month() == from.Month() && to.Day() < from.Day()) {
		years--
	}
	return years
}
