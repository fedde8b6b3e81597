package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// envelope wraps a persisted document with its version stamp.
type envelope struct {
	Version int64           `json:"version"`
	Doc     json.RawMessage `json:"doc"`
}

// RedisStore is the key-value backend of the persistence gateway. Each
// document lives under one key as a {version, doc} envelope; version checks
// run inside WATCH transactions.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisStore{client: client, prefix: "granthalaya:"}, nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "granthalaya:"}
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) bookKey(bookID string) string {
	return s.prefix + "book:" + bookID
}

func (s *RedisStore) discussionKey(discussionID string) string {
	return s.prefix + "discussion:" + discussionID
}

func (s *RedisStore) citationsKey() string {
	return s.prefix + "citations"
}

func (s *RedisStore) insert(ctx context.Context, key, setKey, id string, doc any) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	wrapped, err := json.Marshal(envelope{Version: 1, Doc: payload})
	if err != nil {
		return fmt.Errorf("wrap %s: %w", key, err)
	}
	created, err := s.client.SetNX(ctx, key, wrapped, 0).Result()
	if err != nil {
		return fmt.Errorf("insert %s: %w", key, err)
	}
	if !created {
		return ErrAlreadyExists
	}
	if err := s.client.SAdd(ctx, setKey, id).Err(); err != nil {
		return fmt.Errorf("register %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) load(ctx context.Context, key string, target any) (int64, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", key, err)
	}
	var wrapped envelope
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return 0, fmt.Errorf("decode envelope %s: %w", key, err)
	}
	if err := json.Unmarshal(wrapped.Doc, target); err != nil {
		return 0, fmt.Errorf("decode %s: %w", key, err)
	}
	return wrapped.Version, nil
}

// store replaces the document under key if its stored version still equals
// the version the caller observed at load time.
func (s *RedisStore) store(ctx context.Context, key string, doc any, version int64) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		current := int64(0)
		switch {
		case errors.Is(err, redis.Nil):
			current = 0
		case err != nil:
			return fmt.Errorf("read %s: %w", key, err)
		default:
			var wrapped envelope
			if err := json.Unmarshal(raw, &wrapped); err != nil {
				return fmt.Errorf("decode envelope %s: %w", key, err)
			}
			current = wrapped.Version
		}
		if current == 0 && version > 0 {
			return ErrNotFound
		}
		if current != version {
			return ErrVersionConflict
		}

		wrapped, err := json.Marshal(envelope{Version: version + 1, Doc: payload})
		if err != nil {
			return fmt.Errorf("wrap %s: %w", key, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, wrapped, 0)
			return nil
		})
		return err
	}

	err = s.client.Watch(ctx, txn, key)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrVersionConflict
	}
	return err
}

func (s *RedisStore) InsertBook(ctx context.Context, book Book) error {
	return s.insert(ctx, s.bookKey(book.ID), s.prefix+"books", book.ID, book)
}

func (s *RedisStore) LoadBook(ctx context.Context, bookID string) (Book, int64, error) {
	var book Book
	version, err := s.load(ctx, s.bookKey(bookID), &book)
	if err != nil {
		return Book{}, 0, err
	}
	return book, version, nil
}

func (s *RedisStore) StoreBook(ctx context.Context, book Book, version int64) error {
	book.UpdatedAt = time.Now().UTC()
	return s.store(ctx, s.bookKey(book.ID), book, version)
}

func (s *RedisStore) ListBooks(ctx context.Context) ([]BookInfo, error) {
	ids, err := s.client.SMembers(ctx, s.prefix+"books").Result()
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	items := make([]BookInfo, 0, len(ids))
	for _, id := range ids {
		book, _, err := s.LoadBook(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, BookInfo{ID: book.ID, Title: book.Title, Author: book.Author, UpdatedAt: book.UpdatedAt})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].UpdatedAt.After(items[j].UpdatedAt) })
	return items, nil
}

func (s *RedisStore) LoadCitations(ctx context.Context) (CitationCollection, int64, error) {
	var collection CitationCollection
	version, err := s.load(ctx, s.citationsKey(), &collection)
	if errors.Is(err, ErrNotFound) {
		return CitationCollection{Categories: []CitationCategory{}}, 0, nil
	}
	if err != nil {
		return CitationCollection{}, 0, err
	}
	return collection, version, nil
}

func (s *RedisStore) StoreCitations(ctx context.Context, collection CitationCollection, version int64) error {
	return s.store(ctx, s.citationsKey(), collection, version)
}

func (s *RedisStore) InsertDiscussion(ctx context.Context, discussion Discussion) error {
	return s.insert(ctx, s.discussionKey(discussion.ID), s.prefix+"discussions", discussion.ID, discussion)
}

func (s *RedisStore) LoadDiscussion(ctx context.Context, discussionID string) (Discussion, int64, error) {
	var discussion Discussion
	version, err := s.load(ctx, s.discussionKey(discussionID), &discussion)
	if err != nil {
		return Discussion{}, 0, err
	}
	return discussion, version, nil
}

func (s *RedisStore) StoreDiscussion(ctx context.Context, discussion Discussion, version int64) error {
	return s.store(ctx, s.discussionKey(discussion.ID), discussion, version)
}

func (s *RedisStore) ListDiscussions(ctx context.Context) ([]DiscussionInfo, error) {
	ids, err := s.client.SMembers(ctx, s.prefix+"discussions").Result()
	if err != nil {
		return nil, fmt.Errorf("list discussions: %w", err)
	}
	items := make([]DiscussionInfo, 0, len(ids))
	for _, id := range ids {
		discussion, _, err := s.LoadDiscussion(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, DiscussionInfo{ID: discussion.ID, Title: discussion.Title, CreatedAt: discussion.CreatedAt})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}
