package models

import "time"

// BookState tells whether a book is in circulation or marked for removal
// and waiting for its last checked-out copies to come back.
type BookState int

const (
	BookActive BookState = iota
	BookPendingRemoval
)

// Book represents a catalog entry, identified by its ISBN
type Book struct {
	ISBN        int64
	Author      string
	Title       string
	Amount      int // total copies owned by the library
	AmountInUse int // copies currently checked out
	PickPeriod  int // allowed loan length in days
	State       BookState
}

// Reader represents a registered library member
type Reader struct {
	ID        int
	Name      string
	Phone     string
	BirthDate time.Time
}

// PickRecord represents one loan. ReturnDate stays zero while the loan is
// open; DelayDays is meaningful only once ReturnDate is set.
type PickRecord struct {
	ISBN       int64
	ReaderID   int
	PickDate   time.Time
	ReturnDate time.Time
	DelayDays  int
}

// Open reports whether the loan has not been returned yet.
func (r PickRecord) Open() bool {
	return r.ReturnDate.IsZero()
}

// ReaderDelay pairs a reader with a delay in days, one entry per
// qualifying loan record
type ReaderDelay struct {
	Reader Reader
	Days   int
}

// RemovedBookData is the outcome of a removal or return. A nil Book means
// there was nothing to act on. A nil Records list means the book is still
// active; a non-nil list means removal is in progress, and once eviction
// happens it carries every record evicted alongside the book.
type RemovedBookData struct {
	Book    *Book
	Records []PickRecord
}
