package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PostgresStore persists each document as a jsonb blob with a version stamp.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) InsertBook(ctx context.Context, book Book) error {
	payload, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("marshal book: %w", err)
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO books (id, title, author, doc, version)
		VALUES ($1, $2, $3, $4, 1)
		ON CONFLICT (id) DO NOTHING
	`, book.ID, book.Title, book.Author, payload)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert book rows: %w", err)
	}
	if affected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (s *PostgresStore) LoadBook(ctx context.Context, bookID string) (Book, int64, error) {
	var payload []byte
	var version int64
	err := s.db.QueryRowContext(ctx, `SELECT doc, version FROM books WHERE id=$1`, bookID).Scan(&payload, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return Book{}, 0, ErrNotFound
	}
	if err != nil {
		return Book{}, 0, fmt.Errorf("load book %s: %w", bookID, err)
	}
	var book Book
	if err := json.Unmarshal(payload, &book); err != nil {
		return Book{}, 0, fmt.Errorf("decode book %s: %w", bookID, err)
	}
	return book, version, nil
}

func (s *PostgresStore) StoreBook(ctx context.Context, book Book, version int64) error {
	payload, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("marshal book: %w", err)
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE books
		SET doc=$2, title=$3, author=$4, version=version+1, updated_at=NOW()
		WHERE id=$1 AND version=$5
	`, book.ID, payload, book.Title, book.Author, version)
	if err != nil {
		return fmt.Errorf("store book %s: %w", book.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store book rows: %w", err)
	}
	if affected == 0 {
		return s.staleWriteError(ctx, `SELECT EXISTS(SELECT 1 FROM books WHERE id=$1)`, book.ID)
	}
	return nil
}

func (s *PostgresStore) ListBooks(ctx context.Context) ([]BookInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, author, updated_at
		FROM books
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	items := make([]BookInfo, 0)
	for rows.Next() {
		var item BookInfo
		if err := rows.Scan(&item.ID, &item.Title, &item.Author, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return items, nil
}

// The citation collection is a single row; citationCollectionID is its fixed key.
const citationCollectionID = "default"

func (s *PostgresStore) LoadCitations(ctx context.Context) (CitationCollection, int64, error) {
	var payload []byte
	var version int64
	err := s.db.QueryRowContext(ctx, `
		SELECT doc, version FROM citation_collections WHERE id=$1
	`, citationCollectionID).Scan(&payload, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return CitationCollection{Categories: []CitationCategory{}}, 0, nil
	}
	if err != nil {
		return CitationCollection{}, 0, fmt.Errorf("load citations: %w", err)
	}
	var collection CitationCollection
	if err := json.Unmarshal(payload, &collection); err != nil {
		return CitationCollection{}, 0, fmt.Errorf("decode citations: %w", err)
	}
	return collection, version, nil
}

func (s *PostgresStore) StoreCitations(ctx context.Context, collection CitationCollection, version int64) error {
	payload, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("marshal citations: %w", err)
	}
	if version == 0 {
		result, err := s.db.ExecContext(ctx, `
			INSERT INTO citation_collections (id, doc, version)
			VALUES ($1, $2, 1)
			ON CONFLICT (id) DO NOTHING
		`, citationCollectionID, payload)
		if err != nil {
			return fmt.Errorf("insert citations: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("insert citations rows: %w", err)
		}
		if affected == 0 {
			return ErrVersionConflict
		}
		return nil
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE citation_collections
		SET doc=$2, version=version+1, updated_at=NOW()
		WHERE id=$1 AND version=$3
	`, citationCollectionID, payload, version)
	if err != nil {
		return fmt.Errorf("store citations: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store citations rows: %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (s *PostgresStore) InsertDiscussion(ctx context.Context, discussion Discussion) error {
	payload, err := json.Marshal(discussion)
	if err != nil {
		return fmt.Errorf("marshal discussion: %w", err)
	}
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO discussions (id, title, doc, version)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (id) DO NOTHING
	`, discussion.ID, discussion.Title, payload)
	if err != nil {
		return fmt.Errorf("insert discussion: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert discussion rows: %w", err)
	}
	if affected == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (s *PostgresStore) LoadDiscussion(ctx context.Context, discussionID string) (Discussion, int64, error) {
	var payload []byte
	var version int64
	err := s.db.QueryRowContext(ctx, `SELECT doc, version FROM discussions WHERE id=$1`, discussionID).Scan(&payload, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return Discussion{}, 0, ErrNotFound
	}
	if err != nil {
		return Discussion{}, 0, fmt.Errorf("load discussion %s: %w", discussionID, err)
	}
	var discussion Discussion
	if err := json.Unmarshal(payload, &discussion); err != nil {
		return Discussion{}, 0, fmt.Errorf("decode discussion %s: %w", discussionID, err)
	}
	return discussion, version, nil
}

func (s *PostgresStore) StoreDiscussion(ctx context.Context, discussion Discussion, version int64) error {
	payload, err := json.Marshal(discussion)
	if err != nil {
		return fmt.Errorf("marshal discussion: %w", err)
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE discussions
		SET doc=$2, title=$3, version=version+1, updated_at=NOW()
		WHERE id=$1 AND version=$4
	`, discussion.ID, payload, discussion.Title, version)
	if err != nil {
		return fmt.Errorf("store discussion %s: %w", discussion.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store discussion rows: %w", err)
	}
	if affected == 0 {
		return s.staleWriteError(ctx, `SELECT EXISTS(SELECT 1 FROM discussions WHERE id=$1)`, discussion.ID)
	}
	return nil
}

func (s *PostgresStore) ListDiscussions(ctx context.Context) ([]DiscussionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, created_at
		FROM discussions
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list discussions: %w", err)
	}
	defer rows.Close()

	items := make([]DiscussionInfo, 0)
	for rows.Next() {
		var item DiscussionInfo
		if err := rows.Scan(&item.ID, &item.Title, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan discussion: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate discussions: %w", err)
	}
	return items, nil
}

// staleWriteError distinguishes a missing row from a version mismatch after an
// UPDATE touched zero rows.
func (s *PostgresStore) staleWriteError(ctx context.Context, existsQuery, id string) error {
	var exists bool
	if err := s.db.QueryRowContext(ctx, existsQuery, id).Scan(&exists); err != nil {
		return fmt.Errorf("check existence of %s: %w", id, err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrVersionConflict
}
