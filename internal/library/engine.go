// Package library manages book, chapter, and article lifecycle. Comment
// mutations live in package annotate.
package library

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"granthalaya/api/internal/doctree"
	"granthalaya/api/internal/store"
	"granthalaya/api/internal/util"
)

var (
	ErrBookNotFound     = errors.New("library: book not found")
	ErrBookExists       = errors.New("library: book already exists")
	ErrChapterNotFound  = errors.New("library: chapter not found")
	ErrDuplicateChapter = errors.New("library: chapter id already in use")
	ErrDuplicateVerse   = errors.New("library: verse already published in chapter")
)

type Engine struct {
	gateway store.Gateway
	locks   *store.Locks
}

func New(gateway store.Gateway, locks *store.Locks) *Engine {
	return &Engine{gateway: gateway, locks: locks}
}

type CreateBookRequest struct {
	ID     string
	Title  string
	Author string
}

// AddChapterRequest nests the new chapter under ParentChapterID when set,
// otherwise appends it to the book's root forest.
type AddChapterRequest struct {
	BookID          string
	ParentChapterID string
	Name            string
	Topic           string
}

type PublishArticleRequest struct {
	BookID    string
	ChapterID string
	Verse     string
	Content   json.RawMessage
}

func (e *Engine) CreateBook(ctx context.Context, req CreateBookRequest) (store.Book, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = util.NewID("book")
	}
	book := store.Book{
		ID:        id,
		Title:     strings.TrimSpace(req.Title),
		Author:    strings.TrimSpace(req.Author),
		Chapters:  []store.Chapter{},
		UpdatedAt: time.Now().UTC(),
	}
	err := e.gateway.InsertBook(ctx, book)
	if errors.Is(err, store.ErrAlreadyExists) {
		return store.Book{}, ErrBookExists
	}
	if err != nil {
		return store.Book{}, err
	}
	return book, nil
}

func (e *Engine) GetBook(ctx context.Context, bookID string) (store.Book, error) {
	book, _, err := e.gateway.LoadBook(ctx, bookID)
	if errors.Is(err, store.ErrNotFound) {
		return store.Book{}, ErrBookNotFound
	}
	if err != nil {
		return store.Book{}, err
	}
	return book, nil
}

func (e *Engine) ListBooks(ctx context.Context) ([]store.BookInfo, error) {
	return e.gateway.ListBooks(ctx)
}

// AddChapter appends a chapter node. The generated ID is checked against the
// flattened chapter tree so ID-only lookups stay unambiguous.
func (e *Engine) AddChapter(ctx context.Context, req AddChapterRequest) (store.Chapter, error) {
	lock := e.locks.For(req.BookID)
	lock.Lock()
	defer lock.Unlock()

	book, version, err := e.gateway.LoadBook(ctx, req.BookID)
	if errors.Is(err, store.ErrNotFound) {
		return store.Chapter{}, ErrBookNotFound
	}
	if err != nil {
		return store.Chapter{}, err
	}

	chapter := store.Chapter{
		ID:    util.NewID("ch"),
		Name:  strings.TrimSpace(req.Name),
		Topic: strings.TrimSpace(req.Topic),
	}
	for _, existing := range doctree.FlattenChapters(book.Chapters) {
		if existing.ID == chapter.ID {
			return store.Chapter{}, ErrDuplicateChapter
		}
	}

	if req.ParentChapterID == "" {
		book.Chapters = append(book.Chapters, chapter)
	} else {
		parent, ok := doctree.FindChapter(book.Chapters, req.ParentChapterID)
		if !ok {
			return store.Chapter{}, ErrChapterNotFound
		}
		parent.Children = append(parent.Children, chapter)
	}

	if err := e.gateway.StoreBook(ctx, book, version); err != nil {
		return store.Chapter{}, err
	}
	return chapter, nil
}

// PublishArticle creates the article addressed by (chapterID, verse). Verse
// labels are unique within one chapter's article list.
func (e *Engine) PublishArticle(ctx context.Context, req PublishArticleRequest) (store.Article, error) {
	lock := e.locks.For(req.BookID)
	lock.Lock()
	defer lock.Unlock()

	book, version, err := e.gateway.LoadBook(ctx, req.BookID)
	if errors.Is(err, store.ErrNotFound) {
		return store.Article{}, ErrBookNotFound
	}
	if err != nil {
		return store.Article{}, err
	}

	chapter, ok := doctree.FindChapter(book.Chapters, req.ChapterID)
	if !ok {
		return store.Article{}, ErrChapterNotFound
	}
	verse := strings.TrimSpace(req.Verse)
	for i := range chapter.Articles {
		if chapter.Articles[i].Verse == verse {
			return store.Article{}, ErrDuplicateVerse
		}
	}

	article := store.Article{
		Verse:    verse,
		Content:  req.Content,
		Comments: []store.Comment{},
	}
	chapter.Articles = append(chapter.Articles, article)

	if err := e.gateway.StoreBook(ctx, book, version); err != nil {
		return store.Article{}, err
	}
	return article, nil
}
