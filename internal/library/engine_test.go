package library

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"granthalaya/api/internal/doctree"
	"granthalaya/api/internal/store"
)

type memGateway struct {
	store.Gateway

	books    map[string]store.Book
	versions map[string]int64
}

func newMemGateway() *memGateway {
	return &memGateway{books: map[string]store.Book{}, versions: map[string]int64{}}
}

func (m *memGateway) InsertBook(ctx context.Context, book store.Book) error {
	if _, ok := m.books[book.ID]; ok {
		return store.ErrAlreadyExists
	}
	m.books[book.ID] = book
	m.versions[book.ID] = 1
	return nil
}

func (m *memGateway) LoadBook(ctx context.Context, bookID string) (store.Book, int64, error) {
	book, ok := m.books[bookID]
	if !ok {
		return store.Book{}, 0, store.ErrNotFound
	}
	return book, m.versions[bookID], nil
}

func (m *memGateway) StoreBook(ctx context.Context, book store.Book, version int64) error {
	if version != m.versions[book.ID] {
		return store.ErrVersionConflict
	}
	m.books[book.ID] = book
	m.versions[book.ID]++
	return nil
}

func (m *memGateway) ListBooks(ctx context.Context) ([]store.BookInfo, error) {
	infos := make([]store.BookInfo, 0, len(m.books))
	for _, b := range m.books {
		infos = append(infos, store.BookInfo{ID: b.ID, Title: b.Title, Author: b.Author})
	}
	return infos, nil
}

func newEngine() (*Engine, *memGateway) {
	gw := newMemGateway()
	return New(gw, store.NewLocks()), gw
}

func TestCreateBook(t *testing.T) {
	engine, _ := newEngine()
	ctx := context.Background()

	book, err := engine.CreateBook(ctx, CreateBookRequest{
		ID: " book-cs ", Title: " Charaka Samhita ", Author: "Agnivesha",
	})
	if err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	if book.ID != "book-cs" || book.Title != "Charaka Samhita" {
		t.Fatalf("fields not trimmed: %+v", book)
	}
	if book.Chapters == nil {
		t.Fatal("chapter list must start empty, not nil")
	}

	if _, err := engine.CreateBook(ctx, CreateBookRequest{ID: "book-cs"}); !errors.Is(err, ErrBookExists) {
		t.Fatalf("got %v, want ErrBookExists", err)
	}

	generated, err := engine.CreateBook(ctx, CreateBookRequest{Title: "Sushruta Samhita"})
	if err != nil {
		t.Fatalf("CreateBook without ID: %v", err)
	}
	if generated.ID == "" {
		t.Fatal("expected generated book ID")
	}
}

func TestAddChapterNesting(t *testing.T) {
	engine, _ := newEngine()
	ctx := context.Background()

	engine.CreateBook(ctx, CreateBookRequest{ID: "book-cs", Title: "Charaka Samhita"})

	root, err := engine.AddChapter(ctx, AddChapterRequest{
		BookID: "book-cs", Name: " Sutrasthana ", Topic: "fundamentals",
	})
	if err != nil {
		t.Fatalf("AddChapter root: %v", err)
	}
	if root.Name != "Sutrasthana" {
		t.Fatalf("name not trimmed: %q", root.Name)
	}

	child, err := engine.AddChapter(ctx, AddChapterRequest{
		BookID: "book-cs", ParentChapterID: root.ID, Name: "Dirghanjiviteeya",
	})
	if err != nil {
		t.Fatalf("AddChapter nested: %v", err)
	}

	book, _ := engine.GetBook(ctx, "book-cs")
	if len(book.Chapters) != 1 {
		t.Fatalf("child chapter became a root, %d roots", len(book.Chapters))
	}
	found, ok := doctree.FindChapter(book.Chapters, child.ID)
	if !ok || found.Name != "Dirghanjiviteeya" {
		t.Fatal("nested chapter not reachable by ID")
	}

	if _, err := engine.AddChapter(ctx, AddChapterRequest{BookID: "book-cs", ParentChapterID: "missing", Name: "x"}); !errors.Is(err, ErrChapterNotFound) {
		t.Fatalf("got %v, want ErrChapterNotFound", err)
	}
	if _, err := engine.AddChapter(ctx, AddChapterRequest{BookID: "missing", Name: "x"}); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("got %v, want ErrBookNotFound", err)
	}
}

func TestPublishArticle(t *testing.T) {
	engine, _ := newEngine()
	ctx := context.Background()

	engine.CreateBook(ctx, CreateBookRequest{ID: "book-cs", Title: "Charaka Samhita"})
	root, _ := engine.AddChapter(ctx, AddChapterRequest{BookID: "book-cs", Name: "Sutrasthana"})
	child, _ := engine.AddChapter(ctx, AddChapterRequest{BookID: "book-cs", ParentChapterID: root.ID, Name: "Dirghanjiviteeya"})

	content := json.RawMessage(`{"sanskrit":"...","translation":"..."}`)
	article, err := engine.PublishArticle(ctx, PublishArticleRequest{
		BookID: "book-cs", ChapterID: child.ID, Verse: " 1.41 ", Content: content,
	})
	if err != nil {
		t.Fatalf("PublishArticle: %v", err)
	}
	if article.Verse != "1.41" {
		t.Fatalf("verse not trimmed: %q", article.Verse)
	}
	if article.Comments == nil {
		t.Fatal("comment forest must start empty, not nil")
	}

	// Same verse in the same chapter collides.
	if _, err := engine.PublishArticle(ctx, PublishArticleRequest{
		BookID: "book-cs", ChapterID: child.ID, Verse: "1.41",
	}); !errors.Is(err, ErrDuplicateVerse) {
		t.Fatalf("got %v, want ErrDuplicateVerse", err)
	}

	// Same verse in a sibling chapter does not.
	if _, err := engine.PublishArticle(ctx, PublishArticleRequest{
		BookID: "book-cs", ChapterID: root.ID, Verse: "1.41",
	}); err != nil {
		t.Fatalf("verse uniqueness leaked across chapters: %v", err)
	}

	book, _ := engine.GetBook(ctx, "book-cs")
	got, ok := doctree.FindArticle(book.Chapters, child.ID, "1.41")
	if !ok {
		t.Fatal("published article not addressable")
	}
	if string(got.Content) != string(content) {
		t.Fatalf("content altered: %s", got.Content)
	}

	if _, err := engine.PublishArticle(ctx, PublishArticleRequest{
		BookID: "book-cs", ChapterID: "missing", Verse: "2.1",
	}); !errors.Is(err, ErrChapterNotFound) {
		t.Fatalf("got %v, want ErrChapterNotFound", err)
	}
}

func TestListBooks(t *testing.T) {
	engine, _ := newEngine()
	ctx := context.Background()

	engine.CreateBook(ctx, CreateBookRequest{ID: "a", Title: "A"})
	engine.CreateBook(ctx, CreateBookRequest{ID: "b", Title: "B"})

	infos, err := engine.ListBooks(ctx)
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 books, got %d", len(infos))
	}
}
