package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"granthalaya/api/internal/config"
	"granthalaya/api/internal/store"
)

// memGateway implements the full gateway in memory with version stamping, so
// handlers run against real load-mutate-store cycles.
type memGateway struct {
	books         map[string]store.Book
	bookVersions  map[string]int64
	discussions   map[string]store.Discussion
	discVersions  map[string]int64
	citations     store.CitationCollection
	citVersion    int64
	pingErr       error
	storeBookHook func(version int64) error
}

func newMemGateway() *memGateway {
	return &memGateway{
		books:        map[string]store.Book{},
		bookVersions: map[string]int64{},
		discussions:  map[string]store.Discussion{},
		discVersions: map[string]int64{},
	}
}

func (m *memGateway) InsertBook(ctx context.Context, book store.Book) error {
	if _, ok := m.books[book.ID]; ok {
		return store.ErrAlreadyExists
	}
	m.books[book.ID] = book
	m.bookVersions[book.ID] = 1
	return nil
}

func (m *memGateway) LoadBook(ctx context.Context, bookID string) (store.Book, int64, error) {
	book, ok := m.books[bookID]
	if !ok {
		return store.Book{}, 0, store.ErrNotFound
	}
	// Deep copy through JSON so handler mutations never leak back without a
	// StoreBook call.
	raw, _ := json.Marshal(book)
	var copied store.Book
	_ = json.Unmarshal(raw, &copied)
	return copied, m.bookVersions[bookID], nil
}

func (m *memGateway) StoreBook(ctx context.Context, book store.Book, version int64) error {
	if m.storeBookHook != nil {
		if err := m.storeBookHook(version); err != nil {
			return err
		}
	}
	if version != m.bookVersions[book.ID] {
		return store.ErrVersionConflict
	}
	m.books[book.ID] = book
	m.bookVersions[book.ID]++
	return nil
}

func (m *memGateway) ListBooks(ctx context.Context) ([]store.BookInfo, error) {
	infos := make([]store.BookInfo, 0, len(m.books))
	for _, b := range m.books {
		infos = append(infos, store.BookInfo{ID: b.ID, Title: b.Title, Author: b.Author})
	}
	return infos, nil
}

func (m *memGateway) LoadCitations(ctx context.Context) (store.CitationCollection, int64, error) {
	if m.citVersion == 0 {
		return store.CitationCollection{Categories: []store.CitationCategory{}}, 0, nil
	}
	raw, _ := json.Marshal(m.citations)
	var copied store.CitationCollection
	_ = json.Unmarshal(raw, &copied)
	return copied, m.citVersion, nil
}

func (m *memGateway) StoreCitations(ctx context.Context, collection store.CitationCollection, version int64) error {
	if version != m.citVersion {
		return store.ErrVersionConflict
	}
	m.citations = collection
	m.citVersion++
	return nil
}

func (m *memGateway) InsertDiscussion(ctx context.Context, discussion store.Discussion) error {
	if _, ok := m.discussions[discussion.ID]; ok {
		return store.ErrAlreadyExists
	}
	m.discussions[discussion.ID] = discussion
	m.discVersions[discussion.ID] = 1
	return nil
}

func (m *memGateway) LoadDiscussion(ctx context.Context, discussionID string) (store.Discussion, int64, error) {
	discussion, ok := m.discussions[discussionID]
	if !ok {
		return store.Discussion{}, 0, store.ErrNotFound
	}
	raw, _ := json.Marshal(discussion)
	var copied store.Discussion
	_ = json.Unmarshal(raw, &copied)
	return copied, m.discVersions[discussionID], nil
}

func (m *memGateway) StoreDiscussion(ctx context.Context, discussion store.Discussion, version int64) error {
	if version != m.discVersions[discussion.ID] {
		return store.ErrVersionConflict
	}
	m.discussions[discussion.ID] = discussion
	m.discVersions[discussion.ID]++
	return nil
}

func (m *memGateway) ListDiscussions(ctx context.Context) ([]store.DiscussionInfo, error) {
	infos := make([]store.DiscussionInfo, 0, len(m.discussions))
	for _, d := range m.discussions {
		infos = append(infos, store.DiscussionInfo{ID: d.ID, Title: d.Title, CreatedAt: d.CreatedAt})
	}
	return infos, nil
}

func (m *memGateway) Ping(ctx context.Context) error {
	return m.pingErr
}

func newTestServer(t *testing.T) (http.Handler, *memGateway) {
	t.Helper()
	gw := newMemGateway()
	service := New(config.Config{CORSOrigin: "*"}, gw, nil, nil)
	return NewHTTPServer(service, "*").Handler(), gw
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(target); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	decodeResponse(t, rec, &body)
	return body.Code
}

func TestHealthAndReady(t *testing.T) {
	handler, gw := newTestServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("health status %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/ready", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ready status %d", rec.Code)
	}

	gw.pingErr = errors.New("store down")
	rec = doJSON(t, handler, http.MethodGet, "/api/ready", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("ready with broken store status %d", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	handler, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "trace-me")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "trace-me" {
		t.Fatalf("request ID not echoed, got %q", got)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/health", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing generated request ID")
	}
}

func TestBookLifecycle(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/books", map[string]any{
		"id": "charaka-samhita", "title": "Charaka Samhita", "author": "Agnivesha",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create book status %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/books", map[string]any{
		"id": "charaka-samhita", "title": "Duplicate",
	})
	if rec.Code != http.StatusConflict || errorCode(t, rec) != "ALREADY_EXISTS" {
		t.Fatalf("duplicate book status %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/books", map[string]any{"author": "nameless"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing title status %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/books/charaka-samhita", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get book status %d", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodGet, "/api/books/missing", nil)
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "BOOK_NOT_FOUND" {
		t.Fatalf("missing book status %d", rec.Code)
	}

	var listing struct {
		Books []store.BookInfo `json:"books"`
	}
	rec = doJSON(t, handler, http.MethodGet, "/api/books", nil)
	decodeResponse(t, rec, &listing)
	if len(listing.Books) != 1 {
		t.Fatalf("expected 1 book, got %d", len(listing.Books))
	}
}

// publishFixture builds book -> chapter -> nested chapter -> article 1.41 and
// returns the nested chapter ID.
func publishFixture(t *testing.T, handler http.Handler) string {
	t.Helper()

	rec := doJSON(t, handler, http.MethodPost, "/api/books", map[string]any{
		"id": "charaka-samhita", "title": "Charaka Samhita",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create book: %s", rec.Body.String())
	}

	var root store.Chapter
	rec = doJSON(t, handler, http.MethodPost, "/api/books/charaka-samhita/chapters", map[string]any{
		"name": "Sutrasthana",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create chapter: %s", rec.Body.String())
	}
	decodeResponse(t, rec, &root)

	var child store.Chapter
	rec = doJSON(t, handler, http.MethodPost, "/api/books/charaka-samhita/chapters", map[string]any{
		"parentChapterId": root.ID, "name": "Dirghanjiviteeya",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create nested chapter: %s", rec.Body.String())
	}
	decodeResponse(t, rec, &child)

	rec = doJSON(t, handler, http.MethodPost, "/api/books/charaka-samhita/articles", map[string]any{
		"chapterId": child.ID, "verse": "1.41",
		"content": map[string]any{"sanskrit": "..."},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("publish article: %s", rec.Body.String())
	}
	return child.ID
}

func TestPublishArticleNumericVerse(t *testing.T) {
	handler, _ := newTestServer(t)
	chapterID := publishFixture(t, handler)

	// Clients sometimes send the verse as a bare number.
	rec := doJSON(t, handler, http.MethodPost, "/api/books/charaka-samhita/articles", map[string]any{
		"chapterId": chapterID, "verse": 42,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("numeric verse status %d: %s", rec.Code, rec.Body.String())
	}
	var article store.Article
	decodeResponse(t, rec, &article)
	if article.Verse != "42" {
		t.Fatalf("numeric verse normalized to %q", article.Verse)
	}

	rec = doJSON(t, handler, http.MethodGet,
		"/api/books/charaka-samhita/article?chapterId="+chapterID+"&verse=42", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get numeric-verse article status %d", rec.Code)
	}

	// Same verse again collides.
	rec = doJSON(t, handler, http.MethodPost, "/api/books/charaka-samhita/articles", map[string]any{
		"chapterId": chapterID, "verse": "1.41",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate verse status %d", rec.Code)
	}
}

func TestCommentEndpoints(t *testing.T) {
	handler, _ := newTestServer(t)
	chapterID := publishFixture(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/books/charaka-samhita/comments", map[string]any{
		"chapterId": chapterID, "verse": "1.41",
		"authorId": "vaidya-1", "body": "On the definition of ayus", "targetText": "ayus",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add comment status %d: %s", rec.Code, rec.Body.String())
	}
	var root store.Comment
	decodeResponse(t, rec, &root)

	rec = doJSON(t, handler, http.MethodPost, "/api/books/charaka-samhita/comments", map[string]any{
		"chapterId": chapterID, "verse": "1.41",
		"parentCommentId": root.ID, "authorId": "vaidya-2", "body": "A reply",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add reply status %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPut, "/api/books/charaka-samhita/comments/"+root.ID, map[string]any{
		"chapterId": chapterID, "verse": "1.41", "body": "Revised note",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update comment status %d: %s", rec.Code, rec.Body.String())
	}
	var updated store.Comment
	decodeResponse(t, rec, &updated)
	if updated.Body != "Revised note" {
		t.Fatalf("body not updated: %q", updated.Body)
	}

	rec = doJSON(t, handler, http.MethodDelete,
		"/api/books/charaka-samhita/comments/"+root.ID+"?chapterId="+chapterID+"&verse=1.41", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete comment status %d: %s", rec.Code, rec.Body.String())
	}

	var article store.Article
	rec = doJSON(t, handler, http.MethodGet,
		"/api/books/charaka-samhita/article?chapterId="+chapterID+"&verse=1.41", nil)
	decodeResponse(t, rec, &article)
	if len(article.Comments) != 0 {
		t.Fatalf("subtree survived delete: %+v", article.Comments)
	}

	// Error mapping.
	rec = doJSON(t, handler, http.MethodPost, "/api/books/charaka-samhita/comments", map[string]any{
		"chapterId": chapterID, "verse": "9.99", "body": "x",
	})
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "ARTICLE_NOT_FOUND" {
		t.Fatalf("missing article status %d", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodPost, "/api/books/charaka-samhita/comments", map[string]any{
		"chapterId": chapterID, "verse": "1.41", "parentCommentId": "ghost", "body": "x",
	})
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "PARENT_NOT_FOUND" {
		t.Fatalf("missing parent status %d", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodPost, "/api/books/charaka-samhita/comments", map[string]any{
		"chapterId": chapterID, "verse": "1.41",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty body status %d", rec.Code)
	}
}

func TestConcurrentUpdateMapsToConflict(t *testing.T) {
	handler, gw := newTestServer(t)
	chapterID := publishFixture(t, handler)

	// Simulate a writer sneaking in between load and store.
	raced := false
	gw.storeBookHook = func(version int64) error {
		if !raced {
			raced = true
			return store.ErrVersionConflict
		}
		return nil
	}

	rec := doJSON(t, handler, http.MethodPost, "/api/books/charaka-samhita/comments", map[string]any{
		"chapterId": chapterID, "verse": "1.41", "body": "racing note",
	})
	if rec.Code != http.StatusConflict || errorCode(t, rec) != "VERSION_CONFLICT" {
		t.Fatalf("conflict status %d, code %s", rec.Code, rec.Body.String())
	}
}

func TestCitationEndpoints(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/citations", map[string]any{"name": "Charaka Samhita"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category status %d: %s", rec.Code, rec.Body.String())
	}
	var category store.CitationCategory
	decodeResponse(t, rec, &category)
	if category.ID != "charaka-samhita" {
		t.Fatalf("unexpected slug %q", category.ID)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/citations", map[string]any{"name": " charaka  samhita "})
	if rec.Code != http.StatusConflict || errorCode(t, rec) != "DUPLICATE_CATEGORY" {
		t.Fatalf("slug collision status %d", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodPost, "/api/citations", map[string]any{"name": "!!!"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty name status %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/citations/charaka-samhita/refs", map[string]any{
		"refId": "cs-su-1-41", "source": "Charaka Samhita", "location": "Sutrasthana 1.41",
		"sanskrit": "hitahitam sukham duhkham", "english": "The science of life.",
		"keywords": []string{"ayus", "definition"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add citation status %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/citations/refs/cs-su-1-41", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get citation status %d", rec.Code)
	}
	rec = doJSON(t, handler, http.MethodGet, "/api/citations/refs/missing", nil)
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "CITATION_NOT_FOUND" {
		t.Fatalf("missing citation status %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPut, "/api/citations/charaka-samhita", map[string]any{
		"name": "Charaka Samhita (Sutrasthana)",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("rename status %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodDelete, "/api/citations/charaka-samhita/refs/cs-su-1-41", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove citation status %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, handler, http.MethodDelete, "/api/citations/charaka-samhita", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete category status %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, handler, http.MethodDelete, "/api/citations/charaka-samhita", nil)
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "CATEGORY_NOT_FOUND" {
		t.Fatalf("delete missing category status %d", rec.Code)
	}
}

func TestCitationSearchEndpoint(t *testing.T) {
	handler, _ := newTestServer(t)

	doJSON(t, handler, http.MethodPost, "/api/citations", map[string]any{"name": "Charaka Samhita"})
	doJSON(t, handler, http.MethodPost, "/api/citations/charaka-samhita/refs", map[string]any{
		"refId": "cs-su-1-41", "english": "The science of life.", "keywords": []string{"ayus"},
	})

	var response struct {
		Results []store.Citation `json:"results"`
		Total   int              `json:"total"`
	}

	// Blank query returns empty, never the full corpus.
	rec := doJSON(t, handler, http.MethodGet, "/api/citations/search?q=", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("blank search status %d", rec.Code)
	}
	decodeResponse(t, rec, &response)
	if len(response.Results) != 0 {
		t.Fatalf("blank query returned %d results", len(response.Results))
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/citations/search?q=AYUS", nil)
	decodeResponse(t, rec, &response)
	if len(response.Results) != 1 || response.Results[0].RefID != "cs-su-1-41" {
		t.Fatalf("search results: %+v", response.Results)
	}
	if response.Total != 1 {
		t.Fatalf("search total %d", response.Total)
	}
}

func TestDiscussionEndpoints(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/discussions", map[string]any{
		"title": "Is rasa primary?", "question": "Which factor dominates?", "authorId": "vaidya-1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create discussion status %d: %s", rec.Code, rec.Body.String())
	}
	var discussion store.Discussion
	decodeResponse(t, rec, &discussion)

	rec = doJSON(t, handler, http.MethodPost, "/api/discussions/"+discussion.ID+"/answers", map[string]any{
		"authorId": "vaidya-2", "body": "Rasa is inferential only.",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add answer status %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/discussions/"+discussion.ID+"/manthana", map[string]any{
		"topic": "Rasa pradhanya", "author": "purvapakshin", "content": "Rasa alone determines action.",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start thread status %d: %s", rec.Code, rec.Body.String())
	}
	var thread store.ManthanaThread
	decodeResponse(t, rec, &thread)
	if thread.Purvapaksha.Stance != "purvapaksha" {
		t.Fatalf("thesis stance %q", thread.Purvapaksha.Stance)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/discussions/"+discussion.ID+"/manthana/"+thread.ID, map[string]any{
		"author": "uttarapakshin", "content": "Virya overrides rasa.", "stance": "uttarpaksha",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("counter-argument status %d: %s", rec.Code, rec.Body.String())
	}
	var afterCounter store.ManthanaThread
	decodeResponse(t, rec, &afterCounter)
	if len(afterCounter.Uttarpaksha) != 1 {
		t.Fatalf("uttarpaksha length %d", len(afterCounter.Uttarpaksha))
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/discussions/"+discussion.ID+"/manthana/ghost", map[string]any{
		"author": "x", "content": "y",
	})
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "THREAD_NOT_FOUND" {
		t.Fatalf("missing thread status %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/discussions/"+discussion.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get discussion status %d", rec.Code)
	}
	decodeResponse(t, rec, &discussion)
	if len(discussion.Answers) != 1 || len(discussion.Threads) != 1 {
		t.Fatalf("discussion state: %d answers, %d threads", len(discussion.Answers), len(discussion.Threads))
	}
}

func TestBootstrapSeedsOnce(t *testing.T) {
	gw := newMemGateway()
	service := New(config.Config{}, gw, nil, nil)
	ctx := context.Background()

	if err := service.Bootstrap(ctx); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if len(gw.books) != 1 {
		t.Fatalf("seed created %d books", len(gw.books))
	}
	if gw.citVersion == 0 {
		t.Fatal("seed did not write the citation collection")
	}
	if len(gw.discussions) != 1 {
		t.Fatalf("seed created %d discussions", len(gw.discussions))
	}

	// Second bootstrap against a populated store must not reseed.
	if err := service.Bootstrap(ctx); err != nil {
		t.Fatalf("second Bootstrap: %v", err)
	}
	if len(gw.books) != 1 {
		t.Fatal("bootstrap reseeded a populated store")
	}
}

func TestUnknownRouteAndBadBody(t *testing.T) {
	handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown route status %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/books", strings.NewReader("{not json"))
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusBadRequest {
		t.Fatalf("bad body status %d", rec2.Code)
	}
}
