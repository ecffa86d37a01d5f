package ch

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"

	"github.com/EMargovich/TelRan-Library/internal/library"
	"github.com/EMargovich/TelRan-Library/internal/models"
)

// Persister saves and loads full store snapshots in ClickHouse. The store
// itself knows nothing about persistence; this collaborator works entirely
// through the snapshot surface.
type Persister struct {
	conn   clickhouse.Conn
	logger *zap.Logger
}

// NewPersister opens a ClickHouse connection over the native protocol
func NewPersister(host string, port int, database, user, password string, useTLS bool, logger *zap.Logger) (*Persister, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	addr := fmt.Sprintf("%s:%d", host, port)

	options := &clickhouse.Options{
		Addr:     []string{addr},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
	}

	// Configure TLS if enabled
	if useTLS {
		options.TLS = &tls.Config{
			InsecureSkipVerify: false,
		}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	// Test the connection
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &Persister{conn: conn, logger: logger}, nil
}

// SaveSnapshot replaces the persisted state with the snapshot. Each table
// is truncated and rewritten; a snapshot is a full copy, not a delta.
func (p *Persister) SaveSnapshot(ctx context.Context, snap library.Snapshot) error {
	for _, table := range []string{"books", "readers", "pick_records"} {
		if err := p.conn.Exec(ctx, "TRUNCATE TABLE "+table); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}

	for _, book := range snap.Books {
		err := p.conn.Exec(ctx,
			`INSERT INTO books (isbn, author, title, amount, amount_in_use, pick_period, pending_removal)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			book.ISBN, book.Author, book.Title,
			int32(book.Amount), int32(book.AmountInUse), int32(book.PickPeriod),
			book.State == models.BookPendingRemoval)
		if err != nil {
			return fmt.Errorf("failed to save book %d: %w", book.ISBN, err)
		}
	}

	for _, reader := range snap.Readers {
		err := p.conn.Exec(ctx,
			`INSERT INTO readers (id, name, phone, birth_date) VALUES (?, ?, ?, ?)`,
			int32(reader.ID), reader.Name, reader.Phone, reader.BirthDate)
		if err != nil {
			return fmt.Errorf("failed to save reader %d: %w", reader.ID, err)
		}
	}

	for seq, rec := range snap.Records {
		var returnDate *time.Time
		if !rec.Open() {
			d := rec.ReturnDate
			returnDate = &d
		}
		err := p.conn.Exec(ctx,
			`INSERT INTO pick_records (seq, isbn, reader_id, pick_date, return_date, delay_days)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			int64(seq), rec.ISBN, int32(rec.ReaderID), rec.PickDate, returnDate, int32(rec.DelayDays))
		if err != nil {
			return fmt.Errorf("failed to save pick record: %w", err)
		}
	}

	p.logger.Info("snapshot saved",
		zap.Int("books", len(snap.Books)),
		zap.Int("readers", len(snap.Readers)),
		zap.Int("records", len(snap.Records)))
	return nil
}

// LoadSnapshot reads the persisted state back. Records come out in the
// order they were saved so the rebuilt indices keep their ordering.
func (p *Persister) LoadSnapshot(ctx context.Context) (library.Snapshot, error) {
	var snap library.Snapshot

	rows, err := p.conn.Query(ctx,
		`SELECT isbn, author, title, amount, amount_in_use, pick_period, pending_removal
		 FROM books ORDER BY isbn`)
	if err != nil {
		return snap, fmt.Errorf("failed to load books: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			book                  models.Book
			amount, inUse, period int32
			pending               bool
		)
		if err := rows.Scan(&book.ISBN, &book.Author, &book.Title, &amount, &inUse, &period, &pending); err != nil {
			return snap, fmt.Errorf("failed to scan book: %w", err)
		}
		book.Amount = int(amount)
		book.AmountInUse = int(inUse)
		book.PickPeriod = int(period)
		if pending {
			book.State = models.BookPendingRemoval
		}
		snap.Books = append(snap.Books, book)
	}

	readerRows, err := p.conn.Query(ctx, `SELECT id, name, phone, birth_date FROM readers ORDER BY id`)
	if err != nil {
		return snap, fmt.Errorf("failed to load readers: %w", err)
	}
	defer readerRows.Close()
	for readerRows.Next() {
		var (
			reader models.Reader
			id     int32
		)
		if err := readerRows.Scan(&id, &reader.Name, &reader.Phone, &reader.BirthDate); err != nil {
			return snap, fmt.Errorf("failed to scan reader: %w", err)
		}
		reader.ID = int(id)
		snap.Readers = append(snap.Readers, reader)
	}

	recRows, err := p.conn.Query(ctx,
		`SELECT isbn, reader_id, pick_date, return_date, delay_days FROM pick_records ORDER BY seq`)
	if err != nil {
		return snap, fmt.Errorf("failed to load pick records: %w", err)
	}
	defer recRows.Close()
	for recRows.Next() {
		var (
			rec        models.PickRecord
			readerID   int32
			delayDays  int32
			returnDate *time.Time
		)
		if err := recRows.Scan(&rec.ISBN, &readerID, &rec.PickDate, &returnDate, &delayDays); err != nil {
			return snap, fmt.Errorf("failed to scan pick record: %w", err)
		}
		rec.ReaderID = int(readerID)
		rec.DelayDays = int(delayDays)
		if returnDate != nil {
			rec.ReturnDate = *returnDate
		}
		snap.Records = append(snap.Records, rec)
	}

	p.logger.Info("snapshot loaded",
		zap.Int("books", len(snap.Books)),
		zap.Int("readers", len(snap.Readers)),
		zap.Int("records", len(snap.Records)))
	return snap, nil
}

// Close closes the database connection
func (p *Persister) Close() error {
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
