// Development harness: starts a throwaway ClickHouse container, applies
// the migrations, seeds a small catalog and exercises a snapshot
// round trip through the persister.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/pressly/goose/v3"
	clickhouseTC "github.com/testcontainers/testcontainers-go/modules/clickhouse"
	"go.uber.org/zap"

	"github.com/EMargovich/TelRan-Library/internal/library"
	"github.com/EMargovich/TelRan-Library/internal/models"
	"github.com/EMargovich/TelRan-Library/internal/persist/ch"
)

func main() {
	ctx := context.Background()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	log.Println("Starting ClickHouse testcontainer...")

	clickhouseContainer, err := clickhouseTC.Run(ctx,
		"clickhouse/clickhouse-server:latest",
		clickhouseTC.WithUsername("default"),
		clickhouseTC.WithPassword("devpassword"),
		clickhouseTC.WithDatabase("default"),
	)
	if err != nil {
		log.Fatalf("Failed to start ClickHouse container: %v", err)
	}

	// Ensure container cleanup on exit
	defer func() {
		log.Println("Stopping ClickHouse container...")
		if err := clickhouseContainer.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate container: %v", err)
		}
	}()

	host, err := clickhouseContainer.Host(ctx)
	if err != nil {
		log.Fatalf("Failed to get container host: %v", err)
	}
	port, err := clickhouseContainer.MappedPort(ctx, "9000/tcp")
	if err != nil {
		log.Fatalf("Failed to get container port: %v", err)
	}

	if err := applyMigrations(host, port.Int()); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	persister, err := ch.NewPersister(host, port.Int(), "default", "default", "devpassword", false, logger)
	if err != nil {
		log.Fatalf("Failed to connect persister: %v", err)
	}
	defer persister.Close()

	store := library.NewStore(logger)
	seed(store)

	if err := persister.SaveSnapshot(ctx, store.Snapshot()); err != nil {
		log.Fatalf("Failed to save snapshot: %v", err)
	}

	snap, err := persister.LoadSnapshot(ctx)
	if err != nil {
		log.Fatalf("Failed to load snapshot: %v", err)
	}

	restored := library.NewStore(logger)
	restored.RestoreSnapshot(snap)

	logger.Info("round trip complete",
		zap.Strings("most_popular_authors", restored.MostPopularAuthors()),
		zap.Int("books_by_author", len(restored.BooksByAuthor("Carroll"))))
}

func applyMigrations(host string, port int) error {
	dsn := fmt.Sprintf("clickhouse://default:devpassword@%s:%d/default?dial_timeout=10s", host, port)
	db, err := sql.Open("clickhouse", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.SetDialect("clickhouse"); err != nil {
		return err
	}
	return goose.Up(db, "./migrations")
}

func seed(store *library.Store) {
	store.RegisterBook(models.Book{ISBN: 1001, Author: "Carroll", Title: "Alice in Wonderland", Amount: 3, PickPeriod: 10})
	store.RegisterBook(models.Book{ISBN: 1002, Author: "Carroll", Title: "Through the Looking-Glass", Amount: 2, PickPeriod: 10})
	store.RegisterReader(&models.Reader{ID: 1, Name: "Dana", Phone: "+100", BirthDate: time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC)})

	pick := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	store.Checkout(1001, 1, pick)
	store.ReturnBook(1001, 1, pick.AddDate(0, 0, 14))
	store.Checkout(1002, 1, pick.AddDate(0, 0, 20))
}
