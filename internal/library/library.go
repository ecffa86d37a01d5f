package library

import (
	"time"

	"github.com/EMargovich/TelRan-Library/internal/models"
)

// Library defines the operation set of the lending store: catalog and
// reader registration, checkout/return/removal transitions, and the
// reporting queries layered on the store's indices.
type Library interface {
	RegisterBook(book models.Book) ReturnCode
	RegisterReader(reader *models.Reader) ReturnCode
	AddExemplars(isbn int64, amount int) ReturnCode
	LookupBook(isbn int64) (models.Book, bool)
	LookupReader(id int) (models.Reader, bool)

	Checkout(isbn int64, readerID int, pickDate time.Time) ReturnCode
	ReturnBook(isbn int64, readerID int, returnDate time.Time) models.RemovedBookData
	RemoveBook(isbn int64) (models.RemovedBookData, bool)
	RemoveAuthor(author string) []models.RemovedBookData

	BooksPickedByReader(readerID int) []models.Book
	ReadersWhoPickedBook(isbn int64) []models.Reader
	BooksByAuthor(author string) []models.Book
	RecordsInDateRange(from, to time.Time) []models.PickRecord
	ReadersCurrentlyDelaying(asOf time.Time) []models.ReaderDelay
	ReadersEverDelayed() []models.ReaderDelay
	MostPopularBooks(fromDate, toDate time.Time, fromAge, toAge int) []models.Book
	MostPopularAuthors() []string
	MostActiveReaders(fromDate, toDate time.Time) []models.Reader
}
