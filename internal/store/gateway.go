package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound reports that no document exists at the addressed identity.
	ErrNotFound = errors.New("store: not found")
	// ErrVersionConflict reports that a concurrent writer stored the document
	// between this caller's load and store.
	ErrVersionConflict = errors.New("store: version conflict")
	// ErrAlreadyExists reports an insert against an identity already in use.
	ErrAlreadyExists = errors.New("store: already exists")
)

// Gateway loads and stores whole documents as opaque values. Every Store call
// carries the version observed at load time and fails with ErrVersionConflict
// if the stored version has moved on.
type Gateway interface {
	InsertBook(ctx context.Context, book Book) error
	LoadBook(ctx context.Context, bookID string) (Book, int64, error)
	StoreBook(ctx context.Context, book Book, version int64) error
	ListBooks(ctx context.Context) ([]BookInfo, error)

	LoadCitations(ctx context.Context) (CitationCollection, int64, error)
	StoreCitations(ctx context.Context, collection CitationCollection, version int64) error

	InsertDiscussion(ctx context.Context, discussion Discussion) error
	LoadDiscussion(ctx context.Context, discussionID string) (Discussion, int64, error)
	StoreDiscussion(ctx context.Context, discussion Discussion, version int64) error
	ListDiscussions(ctx context.Context) ([]DiscussionInfo, error)

	Ping(ctx context.Context) error
}
