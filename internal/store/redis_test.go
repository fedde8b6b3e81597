package store

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStoreWithClient(client)
}

func TestRedisBookRoundTrip(t *testing.T) {
	s := newTestRedisStore(t)
	ctx := context.Background()

	book := Book{
		ID:    "book-cs",
		Title: "Charaka Samhita",
		Chapters: []Chapter{
			{ID: "sutra", Name: "Sutrasthana", Articles: []Article{{Verse: "1.41"}}},
		},
	}
	if err := s.InsertBook(ctx, book); err != nil {
		t.Fatalf("InsertBook: %v", err)
	}
	if err := s.InsertBook(ctx, book); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("got %v, want ErrAlreadyExists", err)
	}

	loaded, version, err := s.LoadBook(ctx, "book-cs")
	if err != nil {
		t.Fatalf("LoadBook: %v", err)
	}
	if version != 1 {
		t.Fatalf("fresh book version %d, want 1", version)
	}
	if loaded.Title != "Charaka Samhita" || len(loaded.Chapters) != 1 {
		t.Fatalf("round trip mangled book: %+v", loaded)
	}

	loaded.Chapters[0].Articles[0].Comments = []Comment{{ID: "c1", Body: "note"}}
	if err := s.StoreBook(ctx, loaded, version); err != nil {
		t.Fatalf("StoreBook: %v", err)
	}

	again, version, err := s.LoadBook(ctx, "book-cs")
	if err != nil {
		t.Fatalf("LoadBook after store: %v", err)
	}
	if version != 2 {
		t.Fatalf("version %d after one store, want 2", version)
	}
	if len(again.Chapters[0].Articles[0].Comments) != 1 {
		t.Fatal("stored mutation lost")
	}
}

func TestRedisStoreBookVersionConflict(t *testing.T) {
	s := newTestRedisStore(t)
	ctx := context.Background()

	if err := s.InsertBook(ctx, Book{ID: "book-cs"}); err != nil {
		t.Fatalf("InsertBook: %v", err)
	}

	first, version, _ := s.LoadBook(ctx, "book-cs")
	second, _, _ := s.LoadBook(ctx, "book-cs")

	first.Title = "writer one"
	if err := s.StoreBook(ctx, first, version); err != nil {
		t.Fatalf("first store: %v", err)
	}

	second.Title = "writer two"
	if err := s.StoreBook(ctx, second, version); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("got %v, want ErrVersionConflict", err)
	}

	current, _, _ := s.LoadBook(ctx, "book-cs")
	if current.Title != "writer one" {
		t.Fatalf("losing writer clobbered winner: %q", current.Title)
	}
}

func TestRedisStoreBookMissing(t *testing.T) {
	s := newTestRedisStore(t)
	ctx := context.Background()

	if _, _, err := s.LoadBook(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if err := s.StoreBook(ctx, Book{ID: "ghost"}, 3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestRedisListBooks(t *testing.T) {
	s := newTestRedisStore(t)
	ctx := context.Background()

	s.InsertBook(ctx, Book{ID: "a", Title: "A"})
	s.InsertBook(ctx, Book{ID: "b", Title: "B"})

	infos, err := s.ListBooks(ctx)
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 books, got %d", len(infos))
	}
}

func TestRedisCitationsFirstWrite(t *testing.T) {
	s := newTestRedisStore(t)
	ctx := context.Background()

	collection, version, err := s.LoadCitations(ctx)
	if err != nil {
		t.Fatalf("LoadCitations: %v", err)
	}
	if version != 0 {
		t.Fatalf("absent collection version %d, want 0", version)
	}
	if collection.Categories == nil || len(collection.Categories) != 0 {
		t.Fatalf("absent collection should be empty, got %+v", collection)
	}

	collection.Categories = append(collection.Categories, CitationCategory{
		ID: "charaka-samhita", Name: "Charaka Samhita",
		Citations: []Citation{{RefID: "cs-su-1-41"}},
	})
	if err := s.StoreCitations(ctx, collection, version); err != nil {
		t.Fatalf("StoreCitations: %v", err)
	}

	loaded, version, err := s.LoadCitations(ctx)
	if err != nil {
		t.Fatalf("LoadCitations after store: %v", err)
	}
	if version != 1 {
		t.Fatalf("version %d after first write, want 1", version)
	}
	if len(loaded.Categories) != 1 || loaded.Categories[0].Citations[0].RefID != "cs-su-1-41" {
		t.Fatalf("round trip mangled collection: %+v", loaded)
	}
}

func TestRedisDiscussionRoundTrip(t *testing.T) {
	s := newTestRedisStore(t)
	ctx := context.Background()

	discussion := Discussion{
		ID: "disc-1", Title: "Is rasa primary?",
		Answers: []Answer{}, Threads: []ManthanaThread{},
	}
	if err := s.InsertDiscussion(ctx, discussion); err != nil {
		t.Fatalf("InsertDiscussion: %v", err)
	}

	loaded, version, err := s.LoadDiscussion(ctx, "disc-1")
	if err != nil {
		t.Fatalf("LoadDiscussion: %v", err)
	}

	loaded.Threads = append(loaded.Threads, ManthanaThread{
		ID: "mt-1", Topic: "Rasa pradhanya",
		Purvapaksha: DebateEntry{Author: "purvapakshin", Stance: "purvapaksha"},
		Uttarpaksha: []DebateEntry{},
	})
	if err := s.StoreDiscussion(ctx, loaded, version); err != nil {
		t.Fatalf("StoreDiscussion: %v", err)
	}

	again, _, _ := s.LoadDiscussion(ctx, "disc-1")
	if len(again.Threads) != 1 || again.Threads[0].Purvapaksha.Stance != "purvapaksha" {
		t.Fatalf("thread round trip failed: %+v", again.Threads)
	}

	infos, err := s.ListDiscussions(ctx)
	if err != nil {
		t.Fatalf("ListDiscussions: %v", err)
	}
	if len(infos) != 1 || infos[0].ID != "disc-1" {
		t.Fatalf("unexpected listing: %+v", infos)
	}
}
