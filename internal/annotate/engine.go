// Package annotate mutates the threaded comment forest attached to articles.
// Every operation is load -> locate -> mutate -> store over the persistence
// gateway, serialized per book by a keyed mutex.
package annotate

import (
	"context"
	"errors"
	"strings"
	"time"

	"granthalaya/api/internal/doctree"
	"granthalaya/api/internal/store"
	"granthalaya/api/internal/util"
)

var (
	ErrBookNotFound    = errors.New("annotate: book not found")
	ErrArticleNotFound = errors.New("annotate: article not found")
	ErrCommentNotFound = errors.New("annotate: comment not found")
	ErrParentNotFound  = errors.New("annotate: parent comment not found")
)

type Engine struct {
	gateway store.Gateway
	locks   *store.Locks
}

func New(gateway store.Gateway, locks *store.Locks) *Engine {
	return &Engine{gateway: gateway, locks: locks}
}

// AddCommentRequest carries a validated comment payload. ParentCommentID
// empty means a new root-level annotation thread.
type AddCommentRequest struct {
	BookID          string
	ChapterID       string
	Verse           string
	ParentCommentID string
	AuthorID        string
	Title           string
	Body            string
	TargetText      string
}

type UpdateCommentRequest struct {
	BookID    string
	ChapterID string
	Verse     string
	CommentID string
	NewBody   string
}

type DeleteCommentRequest struct {
	BookID    string
	ChapterID string
	Verse     string
	CommentID string
}

// AddComment appends a new comment to the article's root list, or to the
// replies of ParentCommentID when set. The generated ID is unique within the
// article's forest; duplicate payloads are appended as distinct siblings, not
// merged.
func (e *Engine) AddComment(ctx context.Context, req AddCommentRequest) (store.Comment, error) {
	lock := e.locks.For(req.BookID)
	lock.Lock()
	defer lock.Unlock()

	book, version, err := e.gateway.LoadBook(ctx, req.BookID)
	if errors.Is(err, store.ErrNotFound) {
		return store.Comment{}, ErrBookNotFound
	}
	if err != nil {
		return store.Comment{}, err
	}

	article, ok := doctree.FindArticle(book.Chapters, req.ChapterID, req.Verse)
	if !ok {
		return store.Comment{}, ErrArticleNotFound
	}

	comment := store.Comment{
		ID:         util.NewCommentID(),
		AuthorID:   req.AuthorID,
		Timestamp:  time.Now().UTC(),
		Title:      strings.TrimSpace(req.Title),
		Body:       req.Body,
		TargetText: req.TargetText,
	}

	if req.ParentCommentID == "" {
		article.Comments = append(article.Comments, comment)
	} else {
		loc, ok := doctree.FindComment(&article.Comments, req.ParentCommentID)
		if !ok {
			return store.Comment{}, ErrParentNotFound
		}
		loc.Node.Replies = append(loc.Node.Replies, comment)
	}

	if err := e.gateway.StoreBook(ctx, book, version); err != nil {
		return store.Comment{}, err
	}
	return comment, nil
}

// UpdateComment replaces the body of an existing comment. Author, timestamp,
// target text, and replies are untouched.
func (e *Engine) UpdateComment(ctx context.Context, req UpdateCommentRequest) (store.Comment, error) {
	lock := e.locks.For(req.BookID)
	lock.Lock()
	defer lock.Unlock()

	book, version, err := e.gateway.LoadBook(ctx, req.BookID)
	if errors.Is(err, store.ErrNotFound) {
		return store.Comment{}, ErrBookNotFound
	}
	if err != nil {
		return store.Comment{}, err
	}

	article, ok := doctree.FindArticle(book.Chapters, req.ChapterID, req.Verse)
	if !ok {
		return store.Comment{}, ErrArticleNotFound
	}

	loc, ok := doctree.FindComment(&article.Comments, req.CommentID)
	if !ok {
		return store.Comment{}, ErrCommentNotFound
	}
	loc.Node.Body = req.NewBody

	if err := e.gateway.StoreBook(ctx, book, version); err != nil {
		return store.Comment{}, err
	}
	return *loc.Node, nil
}

// DeleteComment removes the comment and its entire reply subtree. Replies are
// not re-parented.
func (e *Engine) DeleteComment(ctx context.Context, req DeleteCommentRequest) error {
	lock := e.locks.For(req.BookID)
	lock.Lock()
	defer lock.Unlock()

	book, version, err := e.gateway.LoadBook(ctx, req.BookID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrBookNotFound
	}
	if err != nil {
		return err
	}

	article, ok := doctree.FindArticle(book.Chapters, req.ChapterID, req.Verse)
	if !ok {
		return ErrArticleNotFound
	}

	loc, ok := doctree.FindComment(&article.Comments, req.CommentID)
	if !ok {
		return ErrCommentNotFound
	}
	*loc.List = append((*loc.List)[:loc.Index], (*loc.List)[loc.Index+1:]...)

	return e.gateway.StoreBook(ctx, book, version)
}

// GetArticle returns the article and its comment forest for rendering.
func (e *Engine) GetArticle(ctx context.Context, bookID, chapterID, verse string) (store.Article, error) {
	book, _, err := e.gateway.LoadBook(ctx, bookID)
	if errors.Is(err, store.ErrNotFound) {
		return store.Article{}, ErrBookNotFound
	}
	if err != nil {
		return store.Article{}, err
	}
	article, ok := doctree.FindArticle(book.Chapters, chapterID, verse)
	if !ok {
		return store.Article{}, ErrArticleNotFound
	}
	return *article, nil
}
