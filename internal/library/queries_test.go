package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EMargovich/TelRan-Library/internal/models"
)

func bookISBNs(books []models.Book) []int64 {
	var isbns []int64
	for _, b := range books {
		isbns = append(isbns, b.ISBN)
	}
	return isbns
}

func readerIDs(readers []models.Reader) []int {
	var ids []int
	for _, r := range readers {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestBooksPickedByReader_DistinctFirstOccurrence(t *testing.T) {
	store := NewStore(nil)
	require.Equal(t, Ok, store.RegisterBook(testBook(1, "A", 5)))
	require.Equal(t, Ok, store.RegisterBook(testBook(2, "A", 5)))
	require.Equal(t, Ok, store.RegisterReader(testReader(1)))

	pick := date(2024, time.January, 1)
	require.Equal(t, Ok, store.Checkout(1, 1, pick))
	store.ReturnBook(1, 1, pick.AddDate(0, 0, 2))
	require.Equal(t, Ok, store.Checkout(2, 1, pick.AddDate(0, 0, 3)))
	require.Equal(t, Ok, store.Checkout(1, 1, pick.AddDate(0, 0, 4)))

	// Three records, two distinct books, first-checkout order.
	assert.Equal(t, []int64{1, 2}, bookISBNs(store.BooksPickedByReader(1)))
	assert.Empty(t, store.BooksPickedByReader(99))
}

func TestReadersWhoPickedBook_DistinctFirstOccurrence(t *testing.T) {
	store := NewStore(nil)
	require.Equal(t, Ok, store.RegisterBook(testBook(1, "A", 5)))
	require.Equal(t, Ok, store.RegisterReader(testReader(2)))
	require.Equal(t, Ok, store.RegisterReader(testReader(7)))

	pick := date(2024, time.January, 1)
	require.Equal(t, Ok, store.Checkout(1, 7, pick))
	store.ReturnBook(1, 7, pick.AddDate(0, 0, 1))
	require.Equal(t, Ok, store.Checkout(1, 2, pick.AddDate(0, 0, 2)))
	require.Equal(t, Ok, store.Checkout(1, 7, pick.AddDate(0, 0, 3)))

	assert.Equal(t, []int{7, 2}, readerIDs(store.ReadersWhoPickedBook(1)))
	assert.Empty(t, store.ReadersWhoPickedBook(99))
}

func TestBooksByAuthor(t *testing.T) {
	store := NewStore(nil)
	require.Equal(t, Ok, store.RegisterBook(testBook(1, "Carroll", 1)))
	require.Equal(t, Ok, store.RegisterBook(testBook(2, "Carroll", 2)))
	require.Equal(t, Ok, store.RegisterBook(testBook(3, "Carroll", 1)))
	require.Equal(t, Ok, store.RegisterReader(testReader(1)))
	require.Equal(t, Ok, store.RegisterReader(testReader(2)))

	pick := date(2024, time.January, 1)

	// Book 1 fully checked out, book 2 partially, book 3 pending removal.
	require.Equal(t, Ok, store.Checkout(1, 1, pick))
	require.Equal(t, Ok, store.Checkout(2, 1, pick))
	require.Equal(t, Ok, store.Checkout(3, 2, pick))
	_, ok := store.RemoveBook(3)
	require.True(t, ok)

	assert.Equal(t, []int64{2}, bookISBNs(store.BooksByAuthor("Carroll")))

	assert.Empty(t, store.BooksByAuthor(""))
	assert.Empty(t, store.BooksByAuthor("   "))
	assert.Empty(t, store.BooksByAuthor("Unknown"))
}

func TestRecordsInDateRange(t *testing.T) {
	store := NewStore(nil)
	require.Equal(t, Ok, store.RegisterBook(testBook(1, "A", 10)))
	require.Equal(t, Ok, store.RegisterReader(testReader(1)))
	require.Equal(t, Ok, store.RegisterReader(testReader(2)))
	require.Equal(t, Ok, store.RegisterReader(testReader(3)))

	jan1 := date(2024, time.January, 1)
	jan5 := date(2024, time.January, 5)
	jan9 := date(2024, time.January, 9)
	require.Equal(t, Ok, store.Checkout(1, 2, jan5))
	require.Equal(t, Ok, store.Checkout(1, 1, jan1))
	require.Equal(t, Ok, store.Checkout(1, 3, jan9))

	// Half-open interval: the upper bound day is excluded. Results come
	// back ordered by pick day even though checkouts happened out of order.
	recs := store.RecordsInDateRange(jan1, jan9)
	require.Len(t, recs, 2)
	assert.Equal(t, jan1, recs[0].PickDate)
	assert.Equal(t, jan5, recs[1].PickDate)

	assert.Len(t, store.RecordsInDateRange(jan1, jan9.AddDate(0, 0, 1)), 3)
	assert.Empty(t, store.RecordsInDateRange(jan9, jan1), "inverted range")
	assert.Empty(t, store.RecordsInDateRange(date(2023, time.June, 1), date(2023, time.July, 1)))
}

func TestReadersCurrentlyDelaying(t *testing.T) {
	store := NewStore(nil)
	require.Equal(t, Ok, store.RegisterBook(testBook(1, "A", 10)))
	require.Equal(t, Ok, store.RegisterBook(testBook(2, "A", 10)))
	require.Equal(t, Ok, store.RegisterReader(testReader(1)))
	require.Equal(t, Ok, store.RegisterReader(testReader(2)))

	pick := date(2024, time.January, 1)
	// Reader 1 holds two open loans, both overdue by the as-of date.
	require.Equal(t, Ok, store.Checkout(1, 1, pick))
	require.Equal(t, Ok, store.Checkout(2, 1, pick))
	// Reader 2 returned late: closed records never count as current delays.
	require.Equal(t, Ok, store.Checkout(1, 2, pick))
	store.ReturnBook(1, 2, pick.AddDate(0, 0, 20))

	asOf := pick.AddDate(0, 0, 12) // 12 loan days, 5 day pick period
	delays := store.ReadersCurrentlyDelaying(asOf)
	require.Len(t, delays, 2, "one entry per overdue record")
	for _, d := range delays {
		assert.Equal(t, 1, d.Reader.ID)
		assert.Equal(t, 7, d.Days)
	}

	assert.Empty(t, store.ReadersCurrentlyDelaying(time.Time{}))
	assert.Empty(t, store.ReadersCurrentlyDelaying(pick.AddDate(0, 0, 5)), "not yet overdue")
}

func TestReadersEverDelayed(t *testing.T) {
	store := NewStore(nil)
	require.Equal(t, Ok, store.RegisterBook(testBook(1, "A", 10)))
	require.Equal(t, Ok, store.RegisterReader(testReader(1)))
	require.Equal(t, Ok, store.RegisterReader(testReader(2)))

	pick := date(2024, time.January, 1)
	require.Equal(t, Ok, store.Checkout(1, 1, pick))
	store.ReturnBook(1, 1, pick.AddDate(0, 0, 9)) // 4 days late
	require.Equal(t, Ok, store.Checkout(1, 2, pick.AddDate(0, 0, 10)))
	store.ReturnBook(1, 2, pick.AddDate(0, 0, 12)) // on time

	delays := store.ReadersEverDelayed()
	require.Len(t, delays, 1)
	assert.Equal(t, 1, delays[0].Reader.ID)
	assert.Equal(t, 4, delays[0].Days)
}

func TestMostPopularBooks_TiesAndCounts(t *testing.T) {
	store := NewStore(nil)
	require.Equal(t, Ok, store.RegisterBook(testBook(1, "A", 10)))
	require.Equal(t, Ok, store.RegisterBook(testBook(2, "B", 10)))
	require.Equal(t, Ok, store.RegisterBook(testBook(3, "C", 10)))
	for id := 1; id <= 3; id++ {
		require.Equal(t, Ok, store.RegisterReader(testReader(id)))
	}

	pick := date(2024, time.January, 1)
	// Counts: book 1 -> 3, book 2 -> 3, book 3 -> 2.
	for day, isbns := range map[int][]int64{
		0: {1, 2, 3},
		1: {1, 2, 3},
		2: {1, 2},
	} {
		for i, isbn := range isbns {
			require.Equal(t, Ok, store.Checkout(isbn, i+1, pick.AddDate(0, 0, day)))
			store.ReturnBook(isbn, i+1, pick.AddDate(0, 0, day+1))
		}
	}

	popular := store.MostPopularBooks(pick, pick.AddDate(0, 1, 0), 0, 150)
	assert.ElementsMatch(t, []int64{1, 2}, bookISBNs(popular), "both maxima, never a single winner")

	assert.Empty(t, store.MostPopularBooks(time.Time{}, pick, 0, 150))
	assert.Empty(t, store.MostPopularBooks(pick, time.Time{}, 0, 150))
	assert.Empty(t, store.MostPopularBooks(pick.AddDate(0, 1, 0), pick, 0, 150), "from after to")
	assert.Empty(t, store.MostPopularBooks(pick, pick.AddDate(0, 1, 0), 90, 150), "no reader that old")
}

func TestMostPopularBooks_AgeWindow(t *testing.T) {
	store := NewStore(nil)
	require.Equal(t, Ok, store.RegisterBook(testBook(1, "A", 10)))
	require.Equal(t, Ok, store.RegisterBook(testBook(2, "B", 10)))

	young := testReader(1)
	young.BirthDate = date(2006, time.January, 10)
	old := testReader(2)
	old.BirthDate = date(1970, time.March, 1)
	require.Equal(t, Ok, store.RegisterReader(young))
	require.Equal(t, Ok, store.RegisterReader(old))

	pick := date(2024, time.January, 15)
	require.Equal(t, Ok, store.Checkout(1, 1, pick)) // reader aged 18
	require.Equal(t, Ok, store.Checkout(2, 2, pick)) // reader aged 53

	// [18, 30): the 18 year old is included, the 53 year old is not.
	popular := store.MostPopularBooks(pick, pick.AddDate(0, 0, 1), 18, 30)
	assert.Equal(t, []int64{1}, bookISBNs(popular))

	// [19, 54): only the older reader qualifies.
	popular = store.MostPopularBooks(pick, pick.AddDate(0, 0, 1), 19, 54)
	assert.Equal(t, []int64{2}, bookISBNs(popular))
}

func TestMostPopularAuthors(t *testing.T) {
	store := NewStore(nil)
	assert.Empty(t, store.MostPopularAuthors())

	require.Equal(t, Ok, store.RegisterBook(testBook(1, "Carroll", 10)))
	require.Equal(t, Ok, store.RegisterBook(testBook(2, "Tolkien", 10)))
	require.Equal(t, Ok, store.RegisterBook(testBook(3, "Austen", 10)))
	for id := 1; id <= 2; id++ {
		require.Equal(t, Ok, store.RegisterReader(testReader(id)))
	}

	pick := date(2024, time.January, 1)
	// Carroll and Tolkien get two checkouts each, Austen one.
	require.Equal(t, Ok, store.Checkout(1, 1, pick))
	require.Equal(t, Ok, store.Checkout(1, 2, pick))
	require.Equal(t, Ok, store.Checkout(2, 1, pick))
	require.Equal(t, Ok, store.Checkout(2, 2, pick))
	require.Equal(t, Ok, store.Checkout(3, 1, pick))

	assert.ElementsMatch(t, []string{"Carroll", "Tolkien"}, store.MostPopularAuthors())
}

func TestMostActiveReaders(t *testing.T) {
	store := NewStore(nil)
	require.Equal(t, Ok, store.RegisterBook(testBook(1, "A", 10)))
	require.Equal(t, Ok, store.RegisterBook(testBook(2, "A", 10)))
	for id := 1; id <= 3; id++ {
		require.Equal(t, Ok, store.RegisterReader(testReader(id)))
	}

	pick := date(2024, time.January, 1)
	// Readers 1 and 2 have two checkouts each, reader 3 has one.
	require.Equal(t, Ok, store.Checkout(1, 1, pick))
	require.Equal(t, Ok, store.Checkout(2, 1, pick))
	require.Equal(t, Ok, store.Checkout(1, 2, pick))
	require.Equal(t, Ok, store.Checkout(2, 2, pick))
	require.Equal(t, Ok, store.Checkout(1, 3, pick))

	active := store.MostActiveReaders(pick, pick.AddDate(0, 0, 1))
	assert.ElementsMatch(t, []int{1, 2}, readerIDs(active))

	assert.Empty(t, store.MostActiveReaders(time.Time{}, pick))
	assert.Empty(t, store.MostActiveReaders(pick, time.Time{}))
	outside := date(2025, time.January, 1)
	assert.Empty(t, store.MostActiveReaders(outside, outside.AddDate(0, 0, 1)))
}

func TestMostPopularAuthors_EvictedBooksDoNotCount(t *testing.T) {
	store := NewStore(nil)
	require.Equal(t, Ok, store.RegisterBook(testBook(1, "Carroll", 10)))
	require.Equal(t, Ok, store.RegisterBook(testBook(2, "Tolkien", 10)))
	require.Equal(t, Ok, store.RegisterReader(testReader(1)))

	pick := date(2024, time.January, 1)
	require.Equal(t, Ok, store.Checkout(1, 1, pick))
	store.ReturnBook(1, 1, pick.AddDate(0, 0, 1))
	require.Equal(t, Ok, store.Checkout(1, 1, pick.AddDate(0, 0, 2)))
	store.ReturnBook(1, 1, pick.AddDate(0, 0, 3))
	require.Equal(t, Ok, store.Checkout(2, 1, pick))
	store.ReturnBook(2, 1, pick.AddDate(0, 0, 1))

	assert.Equal(t, []string{"Carroll"}, store.MostPopularAuthors())

	// Evicting Carroll's book removes its records from the tally.
	_, ok := store.RemoveBook(1)
	require.True(t, ok)
	assert.Equal(t, []string{"Tolkien"}, store.MostPopularAuthors())
}
