package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"granthalaya/api/internal/annotate"
	"granthalaya/api/internal/citation"
	"granthalaya/api/internal/debate"
	"granthalaya/api/internal/library"
	"granthalaya/api/internal/store"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"store": map[string]any{"status": "ok"},
		}

		if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["store"] = map[string]any{
				"status": "error",
				"error":  err.Error(),
			}
		}

		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	segments := splitPath(r.URL.Path)
	if len(segments) >= 2 && segments[0] == "api" {
		switch segments[1] {
		case "books":
			s.handleBooks(w, r, segments[2:])
			return
		case "citations":
			s.handleCitations(w, r, segments[2:])
			return
		case "discussions":
			s.handleDiscussions(w, r, segments[2:])
			return
		}
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleBooks(w http.ResponseWriter, r *http.Request, rest []string) {
	switch {
	case len(rest) == 0 && r.Method == http.MethodGet:
		books, err := s.service.ListBooks(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"books": books})
		return

	case len(rest) == 0 && r.Method == http.MethodPost:
		var body struct {
			ID     string `json:"id"`
			Title  string `json:"title"`
			Author string `json:"author"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if strings.TrimSpace(body.Title) == "" {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title is required", nil)
			return
		}
		book, err := s.service.CreateBook(r.Context(), library.CreateBookRequest{
			ID:     body.ID,
			Title:  body.Title,
			Author: body.Author,
		})
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, book)
		return
	}

	if len(rest) == 0 {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	bookID := rest[0]
	rest = rest[1:]

	switch {
	case len(rest) == 0 && r.Method == http.MethodGet:
		book, err := s.service.GetBook(r.Context(), bookID)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, book)
		return

	case len(rest) == 1 && rest[0] == "history" && r.Method == http.MethodGet:
		limit := 50
		if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				limit = parsed
			}
		}
		history, err := s.service.BookHistory(r.Context(), bookID, limit)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"history": history})
		return

	case len(rest) == 2 && rest[0] == "snapshots" && r.Method == http.MethodGet:
		book, err := s.service.BookSnapshot(r.Context(), bookID, rest[1])
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, book)
		return

	case len(rest) == 1 && rest[0] == "chapters" && r.Method == http.MethodPost:
		var body struct {
			ParentChapterID string `json:"parentChapterId"`
			Name            string `json:"name"`
			Topic           string `json:"topic"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if strings.TrimSpace(body.Name) == "" {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "name is required", nil)
			return
		}
		chapter, err := s.service.AddChapter(r.Context(), library.AddChapterRequest{
			BookID:          bookID,
			ParentChapterID: body.ParentChapterID,
			Name:            body.Name,
			Topic:           body.Topic,
		})
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, chapter)
		return

	case len(rest) == 1 && rest[0] == "articles" && r.Method == http.MethodPost:
		var body struct {
			ChapterID string          `json:"chapterId"`
			Verse     json.RawMessage `json:"verse"`
			Content   json.RawMessage `json:"content"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		verse, ok := verseLabel(body.Verse)
		if !ok || strings.TrimSpace(body.ChapterID) == "" {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "chapterId and verse are required", nil)
			return
		}
		article, err := s.service.PublishArticle(r.Context(), library.PublishArticleRequest{
			BookID:    bookID,
			ChapterID: body.ChapterID,
			Verse:     verse,
			Content:   body.Content,
		})
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, article)
		return

	case len(rest) == 1 && rest[0] == "article" && r.Method == http.MethodGet:
		chapterID := strings.TrimSpace(r.URL.Query().Get("chapterId"))
		verse := strings.TrimSpace(r.URL.Query().Get("verse"))
		if chapterID == "" || verse == "" {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "chapterId and verse are required", nil)
			return
		}
		article, err := s.service.GetArticle(r.Context(), bookID, chapterID, verse)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, article)
		return

	case len(rest) == 1 && rest[0] == "comments" && r.Method == http.MethodPost:
		var body struct {
			ChapterID       string          `json:"chapterId"`
			Verse           json.RawMessage `json:"verse"`
			ParentCommentID string          `json:"parentCommentId"`
			AuthorID        string          `json:"authorId"`
			Title           string          `json:"title"`
			Body            string          `json:"body"`
			TargetText      string          `json:"targetText"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		verse, ok := verseLabel(body.Verse)
		if !ok || strings.TrimSpace(body.ChapterID) == "" {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "chapterId and verse are required", nil)
			return
		}
		if strings.TrimSpace(body.Body) == "" {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "body is required", nil)
			return
		}
		comment, err := s.service.AddComment(r.Context(), annotate.AddCommentRequest{
			BookID:          bookID,
			ChapterID:       body.ChapterID,
			Verse:           verse,
			ParentCommentID: body.ParentCommentID,
			AuthorID:        body.AuthorID,
			Title:           body.Title,
			Body:            body.Body,
			TargetText:      body.TargetText,
		})
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, comment)
		return

	case len(rest) == 2 && rest[0] == "comments" && r.Method == http.MethodPut:
		var body struct {
			ChapterID string          `json:"chapterId"`
			Verse     json.RawMessage `json:"verse"`
			Body      string          `json:"body"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		verse, ok := verseLabel(body.Verse)
		if !ok || strings.TrimSpace(body.ChapterID) == "" {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "chapterId and verse are required", nil)
			return
		}
		comment, err := s.service.UpdateComment(r.Context(), annotate.UpdateCommentRequest{
			BookID:    bookID,
			ChapterID: body.ChapterID,
			Verse:     verse,
			CommentID: rest[1],
			NewBody:   body.Body,
		})
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, comment)
		return

	case len(rest) == 2 && rest[0] == "comments" && r.Method == http.MethodDelete:
		chapterID := strings.TrimSpace(r.URL.Query().Get("chapterId"))
		verse := strings.TrimSpace(r.URL.Query().Get("verse"))
		if chapterID == "" || verse == "" {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "chapterId and verse are required", nil)
			return
		}
		err := s.service.DeleteComment(r.Context(), annotate.DeleteCommentRequest{
			BookID:    bookID,
			ChapterID: chapterID,
			Verse:     verse,
			CommentID: rest[1],
		})
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleCitations(w http.ResponseWriter, r *http.Request, rest []string) {
	switch {
	case len(rest) == 0 && r.Method == http.MethodGet:
		categories, err := s.service.ListCategories(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
		return

	case len(rest) == 0 && r.Method == http.MethodPost:
		var body struct {
			Name string `json:"name"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		category, err := s.service.CreateCategory(r.Context(), body.Name)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, category)
		return

	case len(rest) == 1 && rest[0] == "search" && r.Method == http.MethodGet:
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		limit := 20
		if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				limit = parsed
			}
		}
		writeJSON(w, http.StatusOK, s.service.SearchCitations(r.Context(), q, limit))
		return

	case len(rest) == 2 && rest[0] == "refs" && r.Method == http.MethodGet:
		cit, err := s.service.GetCitationDetails(r.Context(), rest[1])
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cit)
		return

	case len(rest) == 1 && r.Method == http.MethodPut:
		var body struct {
			Name string `json:"name"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		category, err := s.service.RenameCategory(r.Context(), rest[0], body.Name)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, category)
		return

	case len(rest) == 1 && r.Method == http.MethodDelete:
		if err := s.service.DeleteCategory(r.Context(), rest[0]); err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return

	case len(rest) == 2 && rest[1] == "refs" && r.Method == http.MethodPost:
		var body struct {
			RefID    string   `json:"refId"`
			Source   string   `json:"source"`
			Location string   `json:"location"`
			Sanskrit string   `json:"sanskrit"`
			English  string   `json:"english"`
			Keywords []string `json:"keywords"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if strings.TrimSpace(body.RefID) == "" {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "refId is required", nil)
			return
		}
		cit, err := s.service.AddCitation(r.Context(), citation.AddCitationRequest{
			CategoryID: rest[0],
			RefID:      body.RefID,
			Source:     body.Source,
			Location:   body.Location,
			Sanskrit:   body.Sanskrit,
			English:    body.English,
			Keywords:   body.Keywords,
		})
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, cit)
		return

	case len(rest) == 3 && rest[1] == "refs" && r.Method == http.MethodDelete:
		if err := s.service.RemoveCitation(r.Context(), rest[0], rest[2]); err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleDiscussions(w http.ResponseWriter, r *http.Request, rest []string) {
	switch {
	case len(rest) == 0 && r.Method == http.MethodGet:
		discussions, err := s.service.ListDiscussions(r.Context())
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"discussions": discussions})
		return

	case len(rest) == 0 && r.Method == http.MethodPost:
		var body struct {
			Title    string `json:"title"`
			Question string `json:"question"`
			AuthorID string `json:"authorId"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if strings.TrimSpace(body.Title) == "" {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title is required", nil)
			return
		}
		discussion, err := s.service.CreateDiscussion(r.Context(), debate.CreateDiscussionRequest{
			Title:    body.Title,
			Question: body.Question,
			AuthorID: body.AuthorID,
		})
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, discussion)
		return
	}

	if len(rest) == 0 {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	discussionID := rest[0]
	rest = rest[1:]

	switch {
	case len(rest) == 0 && r.Method == http.MethodGet:
		discussion, err := s.service.GetDiscussion(r.Context(), discussionID)
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, discussion)
		return

	case len(rest) == 1 && rest[0] == "answers" && r.Method == http.MethodPost:
		var body struct {
			AuthorID string `json:"authorId"`
			Body     string `json:"body"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if strings.TrimSpace(body.Body) == "" {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "body is required", nil)
			return
		}
		answer, err := s.service.AddAnswer(r.Context(), debate.AddAnswerRequest{
			DiscussionID: discussionID,
			AuthorID:     body.AuthorID,
			Body:         body.Body,
		})
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, answer)
		return

	case len(rest) == 1 && rest[0] == "manthana" && r.Method == http.MethodPost:
		var body struct {
			Topic   string `json:"topic"`
			Author  string `json:"author"`
			Content string `json:"content"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if strings.TrimSpace(body.Content) == "" {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "content is required", nil)
			return
		}
		thread, err := s.service.StartThread(r.Context(), debate.StartThreadRequest{
			DiscussionID: discussionID,
			Topic:        body.Topic,
			Author:       body.Author,
			Content:      body.Content,
		})
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, thread)
		return

	case len(rest) == 2 && rest[0] == "manthana" && r.Method == http.MethodPost:
		var body struct {
			Author  string `json:"author"`
			Content string `json:"content"`
			Stance  string `json:"stance"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if strings.TrimSpace(body.Content) == "" {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "content is required", nil)
			return
		}
		thread, err := s.service.AddCounterArgument(r.Context(), debate.EntryRequest{
			DiscussionID: discussionID,
			ThreadID:     rest[1],
			Author:       body.Author,
			Content:      body.Content,
			Stance:       body.Stance,
		})
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, thread)
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func respondError(w http.ResponseWriter, err error) {
	status, code, message, details := mapError(err)
	writeError(w, status, code, message, details)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// verseLabel accepts a verse as a JSON string or number and normalizes it to
// the string label used for addressing.
func verseLabel(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		asString = strings.TrimSpace(asString)
		return asString, asString != ""
	}
	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber.String(), true
	}
	return "", false
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	switch {
	case errors.Is(err, library.ErrBookNotFound), errors.Is(err, annotate.ErrBookNotFound):
		return http.StatusNotFound, "BOOK_NOT_FOUND", "Book not found", nil
	case errors.Is(err, library.ErrChapterNotFound):
		return http.StatusNotFound, "CHAPTER_NOT_FOUND", "Chapter not found", nil
	case errors.Is(err, annotate.ErrArticleNotFound):
		return http.StatusNotFound, "ARTICLE_NOT_FOUND", "Article not found", nil
	case errors.Is(err, annotate.ErrCommentNotFound):
		return http.StatusNotFound, "COMMENT_NOT_FOUND", "Comment not found", nil
	case errors.Is(err, annotate.ErrParentNotFound):
		return http.StatusNotFound, "PARENT_NOT_FOUND", "Parent comment not found", nil
	case errors.Is(err, citation.ErrCategoryNotFound):
		return http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found", nil
	case errors.Is(err, citation.ErrCitationNotFound):
		return http.StatusNotFound, "CITATION_NOT_FOUND", "Citation not found", nil
	case errors.Is(err, citation.ErrDuplicateCategory):
		return http.StatusConflict, "DUPLICATE_CATEGORY", "Category already exists", nil
	case errors.Is(err, citation.ErrEmptyCategoryName):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Category name is required", nil
	case errors.Is(err, debate.ErrDiscussionNotFound):
		return http.StatusNotFound, "DISCUSSION_NOT_FOUND", "Discussion not found", nil
	case errors.Is(err, debate.ErrThreadNotFound):
		return http.StatusNotFound, "THREAD_NOT_FOUND", "Thread not found", nil
	case errors.Is(err, library.ErrBookExists), errors.Is(err, library.ErrDuplicateVerse),
		errors.Is(err, library.ErrDuplicateChapter), errors.Is(err, debate.ErrDiscussionExists):
		return http.StatusConflict, "ALREADY_EXISTS", "Already exists", nil
	case errors.Is(err, store.ErrVersionConflict):
		return http.StatusConflict, "VERSION_CONFLICT", "Concurrent update detected, retry the request", nil
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}
