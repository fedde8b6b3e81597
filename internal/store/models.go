package store

import (
	"encoding/json"
	"time"
)

// Book is the root of one scholarly document. The whole chapter/article/comment
// tree is persisted as a single blob keyed by ID.
type Book struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	Chapters  []Chapter `json:"chapters"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Chapter nests arbitrarily deep. IDs are unique across the flattened chapter
// tree of one book; lookups address a chapter by ID alone, without a path.
type Chapter struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Topic    string    `json:"topic,omitempty"`
	Articles []Article `json:"articles,omitempty"`
	Children []Chapter `json:"children,omitempty"`
}

// Article is addressed by the (chapterID, verse) pair. Verse is unique within
// its owning chapter only.
type Article struct {
	Verse    string          `json:"verse"`
	Content  json.RawMessage `json:"content,omitempty"`
	Comments []Comment       `json:"comments,omitempty"`
}

// Comment is one node of an article's annotation forest. A non-empty
// TargetText marks a root-level annotation; replies carry an empty TargetText
// and live in some ancestor's Replies list.
type Comment struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	Timestamp  time.Time `json:"timestamp"`
	Title      string    `json:"title,omitempty"`
	Body       string    `json:"body"`
	TargetText string    `json:"targetText,omitempty"`
	Replies    []Comment `json:"replies,omitempty"`
}

// Citation references a passage in a source text. RefID is unique within its
// owning category only.
type Citation struct {
	RefID    string   `json:"refId"`
	Source   string   `json:"source"`
	Location string   `json:"location"`
	Sanskrit string   `json:"sanskrit"`
	English  string   `json:"english"`
	Keywords []string `json:"keywords"`
}

// CitationCategory groups citations under a slug derived from its name.
// Citations are kept most-recent-first.
type CitationCategory struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Citations []Citation `json:"citations"`
}

// CitationCollection is the single persisted blob holding every category.
type CitationCollection struct {
	Categories []CitationCategory `json:"categories"`
}

// Discussion owns an ordered answer list and zero or more debate threads.
type Discussion struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Question  string           `json:"question,omitempty"`
	AuthorID  string           `json:"authorId,omitempty"`
	Answers   []Answer         `json:"answers"`
	Threads   []ManthanaThread `json:"threads,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

type Answer struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// ManthanaThread is a debate: one fixed thesis entry plus ordered
// counter-arguments.
type ManthanaThread struct {
	ID          string        `json:"id"`
	Topic       string        `json:"topic"`
	Purvapaksha DebateEntry   `json:"purvapaksha"`
	Uttarpaksha []DebateEntry `json:"uttarpaksha"`
	CreatedAt   time.Time     `json:"createdAt"`
}

type DebateEntry struct {
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Stance    string    `json:"stance"`
	CreatedAt time.Time `json:"createdAt"`
}

// BookInfo is the listing row for a book, without the tree payload.
type BookInfo struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DiscussionInfo is the listing row for a discussion.
type DiscussionInfo struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}
