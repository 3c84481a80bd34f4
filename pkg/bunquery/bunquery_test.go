package bunquery

import (
	"context"
	"database/sql"
	"sync/atomic"
	"testing"

	"github.com/goliatone/go-query-cache/pkg/domain"
	"github.com/goliatone/go-query-cache/pkg/querycache"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`
	domain.RecordMeta

	Title  string `bun:"title,notnull" json:"title"`
	Banned bool   `bun:"banned" json:"banned"`
}

func setupSQLiteDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.DriverName(), "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("sql open: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	if _, err := db.NewCreateTable().Model((*Book)(nil)).IfNotExists().Exec(ctx); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

func newBookRepository(db *bun.DB) repository.Repository[*Book] {
	handlers := repository.ModelHandlers[*Book]{
		NewRecord: func() *Book { return &Book{} },
		GetID:     func(b *Book) uuid.UUID { return b.ID },
		SetID: func(b *Book, id uuid.UUID) {
			b.ID = id
		},
		GetIdentifier:      func() string { return "title" },
		GetIdentifierValue: func(b *Book) string { return b.Title },
	}
	return repository.MustNewRepository[*Book](db, handlers)
}

func seedBook(t *testing.T, repo repository.Repository[*Book], title string, banned bool) {
	t.Helper()
	book := &Book{Title: title, Banned: banned}
	book.EnsureID()
	if _, err := repo.Create(context.Background(), book); err != nil {
		t.Fatalf("seed %s: %v", title, err)
	}
}

func newBookQueryCache(t *testing.T) *querycache.Cache {
	t.Helper()
	cache, err := querycache.New(querycache.Config{
		CachePath: t.TempDir(),
		Queries: map[string]querycache.Params{
			"all_books":    nil,
			"banned_books": nil,
			"book_count":   nil,
		},
	})
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	return cache
}

func counted(fetch querycache.FetchFunc, calls *atomic.Int32) querycache.FetchFunc {
	return func(ctx context.Context, params querycache.Params) (any, error) {
		calls.Add(1)
		return fetch(ctx, params)
	}
}

func TestSelectFetcherReadThrough(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := newBookRepository(db)
	seedBook(t, repo, "Book A", false)
	seedBook(t, repo, "Book B", true)

	cache := newBookQueryCache(t)
	ctx := context.Background()

	var calls atomic.Int32
	banned := counted(Select[Book](db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("banned = ?", true)
	}), &calls)

	var books []Book
	if err := cache.Get(ctx, "banned_books", &books, banned); err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(books) != 1 || books[0].Title != "Book B" {
		t.Fatalf("unexpected result %v", books)
	}

	if err := cache.Get(ctx, "banned_books", &books, banned); err != nil {
		t.Fatalf("second get: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected one query execution, got %d", calls.Load())
	}
}

func TestListFetcherUsesRepository(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := newBookRepository(db)
	seedBook(t, repo, "Book A", false)
	seedBook(t, repo, "Book B", true)

	cache := newBookQueryCache(t)
	ctx := context.Background()

	var books []Book
	if err := cache.Get(ctx, "all_books", &books, List[Book](repo)); err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("expected 2 books, got %d", len(books))
	}
}

func TestCountFetcher(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := newBookRepository(db)
	seedBook(t, repo, "Book A", false)
	seedBook(t, repo, "Book B", true)

	cache := newBookQueryCache(t)
	ctx := context.Background()

	var count int
	if err := cache.Get(ctx, "book_count", &count, Count[Book](db, nil)); err != nil {
		t.Fatalf("get: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
}

func TestInvalidationHookClearsOnWrite(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := newBookRepository(db)
	seedBook(t, repo, "Book A", false)

	cache := newBookQueryCache(t)
	db.AddQueryHook(NewInvalidationHook(cache))
	ctx := context.Background()

	var calls atomic.Int32
	all := counted(List[Book](repo), &calls)

	var books []Book
	if err := cache.Get(ctx, "all_books", &books, all); err != nil {
		t.Fatalf("populate: %v", err)
	}
	if len(books) != 1 {
		t.Fatalf("expected 1 book, got %d", len(books))
	}

	// A write through the same DB clears every cached query.
	seedBook(t, repo, "Book B", false)

	if err := cache.Get(ctx, "all_books", &books, all); err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("stale read after write, got %d books", len(books))
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 query executions, got %d", calls.Load())
	}
}

func TestInvalidationHookIgnoresReads(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := newBookRepository(db)
	seedBook(t, repo, "Book A", false)

	cache := newBookQueryCache(t)
	db.AddQueryHook(NewInvalidationHook(cache))
	ctx := context.Background()

	var calls atomic.Int32
	all := counted(List[Book](repo), &calls)

	var books []Book
	if err := cache.Get(ctx, "all_books", &books, all); err != nil {
		t.Fatalf("populate: %v", err)
	}

	// Unrelated reads must not invalidate cached entries.
	var other []Book
	if err := db.NewSelect().Model(&other).Scan(ctx); err != nil {
		t.Fatalf("select: %v", err)
	}

	if err := cache.Get(ctx, "all_books", &books, all); err != nil {
		t.Fatalf("hit: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("read invalidated the cache, %d executions", calls.Load())
	}
}

func TestInvalidationHookAcceptFilter(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := newBookRepository(db)

	cache := newBookQueryCache(t)
	db.AddQueryHook(NewInvalidationHook(cache, WithAccept(func(event *bun.QueryEvent) bool {
		return false
	})))
	ctx := context.Background()

	var calls atomic.Int32
	all := counted(List[Book](repo), &calls)

	var books []Book
	if err := cache.Get(ctx, "all_books", &books, all); err != nil {
		t.Fatalf("populate: %v", err)
	}

	seedBook(t, repo, "Book A", false)

	if err := cache.Get(ctx, "all_books", &books, all); err != nil {
		t.Fatalf("hit: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("filtered write still invalidated, %d executions", calls.Load())
	}
}
