package app

import (
	"context"
	"encoding/json"
	"log"

	"granthalaya/api/internal/annotate"
	"granthalaya/api/internal/archive"
	"granthalaya/api/internal/citation"
	"granthalaya/api/internal/config"
	"granthalaya/api/internal/debate"
	"granthalaya/api/internal/library"
	"granthalaya/api/internal/search"
	"granthalaya/api/internal/store"
)

// Service is the coordinating facade over the engines. It owns the operation
// deadline and the advisory archive snapshots; all tree logic stays in the
// engine packages.
type Service struct {
	cfg      config.Config
	gateway  store.Gateway
	library  *library.Engine
	annotate *annotate.Engine
	citation *citation.Engine
	debate   *debate.Engine
	search   *search.Service
	archive  *archive.Service
}

// New wires the engines over one gateway and one shared lock registry. The
// citation engine doubles as the search fallback; meili and archive may be
// nil when not configured.
func New(cfg config.Config, gateway store.Gateway, meili *search.Meili, archiveService *archive.Service) *Service {
	locks := store.NewLocks()
	citationEngine := citation.New(gateway, locks)
	return &Service{
		cfg:      cfg,
		gateway:  gateway,
		library:  library.New(gateway, locks),
		annotate: annotate.New(gateway, locks),
		citation: citationEngine,
		debate:   debate.New(gateway, locks),
		search:   search.NewService(meili, citationEngine),
		archive:  archiveService,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.gateway.Ping(ctx)
}

func (s *Service) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.OpTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.OpTimeout)
}

// snapshot records the book's post-mutation state in the archive. Failures
// are logged, never surfaced; the gateway write already succeeded.
func (s *Service) snapshot(ctx context.Context, bookID, actor, message string) {
	if s.archive == nil {
		return
	}
	book, _, err := s.gateway.LoadBook(ctx, bookID)
	if err != nil {
		log.Printf("archive: reload book %s for snapshot: %v", bookID, err)
		return
	}
	if _, err := s.archive.RecordSnapshot(book, actor, message); err != nil {
		log.Printf("archive: snapshot book %s: %v", bookID, err)
	}
}

// Bootstrap seeds a sample book, citation category, and discussion when the
// store is empty, then pushes the citation collection into the search index.
func (s *Service) Bootstrap(ctx context.Context) error {
	books, err := s.gateway.ListBooks(ctx)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		if err := s.seed(ctx); err != nil {
			return err
		}
	}

	collection, _, err := s.gateway.LoadCitations(ctx)
	if err != nil {
		return err
	}
	s.search.ReindexAll(collection)
	return nil
}

func (s *Service) seed(ctx context.Context) error {
	book, err := s.library.CreateBook(ctx, library.CreateBookRequest{
		ID:     "charaka-samhita",
		Title:  "Charaka Samhita",
		Author: "Agnivesha",
	})
	if err != nil {
		return err
	}

	sutra, err := s.library.AddChapter(ctx, library.AddChapterRequest{
		BookID: book.ID,
		Name:   "Sutrasthana",
		Topic:  "Fundamental principles",
	})
	if err != nil {
		return err
	}
	dirgham, err := s.library.AddChapter(ctx, library.AddChapterRequest{
		BookID:          book.ID,
		ParentChapterID: sutra.ID,
		Name:            "Dirghanjiviteeya Adhyaya",
		Topic:           "On longevity",
	})
	if err != nil {
		return err
	}

	if _, err := s.library.PublishArticle(ctx, library.PublishArticleRequest{
		BookID:    book.ID,
		ChapterID: dirgham.ID,
		Verse:     "1.41",
		Content:   json.RawMessage(`{"sanskrit":"hitahitam sukham duhkham ayus tasya hitahitam","translation":"Ayurveda is the science of life, of what is wholesome and unwholesome."}`),
	}); err != nil {
		return err
	}

	if _, err := s.annotate.AddComment(ctx, annotate.AddCommentRequest{
		BookID:     book.ID,
		ChapterID:  dirgham.ID,
		Verse:      "1.41",
		AuthorID:   "seed",
		Title:      "Definition of ayus",
		Body:       "Note how the fourfold definition frames the rest of the chapter.",
		TargetText: "ayus",
	}); err != nil {
		return err
	}

	category, err := s.citation.CreateCategory(ctx, "Charaka Samhita")
	if err != nil {
		return err
	}
	if _, err := s.citation.AddCitation(ctx, citation.AddCitationRequest{
		CategoryID: category.ID,
		RefID:      "cs-su-1-41",
		Source:     "Charaka Samhita",
		Location:   "Sutrasthana 1.41",
		Sanskrit:   "hitahitam sukham duhkham",
		English:    "The science of life deals with the wholesome and the unwholesome.",
		Keywords:   []string{"ayus", "definition", "longevity"},
	}); err != nil {
		return err
	}

	discussion, err := s.debate.CreateDiscussion(ctx, debate.CreateDiscussionRequest{
		Title:    "Is agni the root of all digestion?",
		Question: "Sutrasthana attributes digestion wholly to agni. Does the text support exceptions?",
		AuthorID: "seed",
	})
	if err != nil {
		return err
	}
	if _, err := s.debate.StartThread(ctx, debate.StartThreadRequest{
		DiscussionID: discussion.ID,
		Topic:        "Agni as sole digestive principle",
		Author:       "seed",
		Content:      "The purvapaksha holds that all transformation of food is agni's work alone.",
	}); err != nil {
		return err
	}

	s.snapshot(ctx, book.ID, "seed", "Seed sample book")
	return nil
}

// --- Library ---

func (s *Service) CreateBook(ctx context.Context, req library.CreateBookRequest) (store.Book, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	book, err := s.library.CreateBook(ctx, req)
	if err != nil {
		return store.Book{}, err
	}
	s.snapshot(ctx, book.ID, req.Author, "Create book")
	return book, nil
}

func (s *Service) GetBook(ctx context.Context, bookID string) (store.Book, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.library.GetBook(ctx, bookID)
}

func (s *Service) ListBooks(ctx context.Context) ([]store.BookInfo, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.library.ListBooks(ctx)
}

func (s *Service) AddChapter(ctx context.Context, req library.AddChapterRequest) (store.Chapter, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	chapter, err := s.library.AddChapter(ctx, req)
	if err != nil {
		return store.Chapter{}, err
	}
	s.snapshot(ctx, req.BookID, "", "Add chapter "+chapter.Name)
	return chapter, nil
}

func (s *Service) PublishArticle(ctx context.Context, req library.PublishArticleRequest) (store.Article, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	article, err := s.library.PublishArticle(ctx, req)
	if err != nil {
		return store.Article{}, err
	}
	s.snapshot(ctx, req.BookID, "", "Publish article "+article.Verse)
	return article, nil
}

func (s *Service) GetArticle(ctx context.Context, bookID, chapterID, verse string) (store.Article, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.annotate.GetArticle(ctx, bookID, chapterID, verse)
}

// --- Annotations ---

func (s *Service) AddComment(ctx context.Context, req annotate.AddCommentRequest) (store.Comment, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	comment, err := s.annotate.AddComment(ctx, req)
	if err != nil {
		return store.Comment{}, err
	}
	s.snapshot(ctx, req.BookID, req.AuthorID, "Add comment "+comment.ID)
	return comment, nil
}

func (s *Service) UpdateComment(ctx context.Context, req annotate.UpdateCommentRequest) (store.Comment, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	comment, err := s.annotate.UpdateComment(ctx, req)
	if err != nil {
		return store.Comment{}, err
	}
	s.snapshot(ctx, req.BookID, comment.AuthorID, "Update comment "+comment.ID)
	return comment, nil
}

func (s *Service) DeleteComment(ctx context.Context, req annotate.DeleteCommentRequest) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	if err := s.annotate.DeleteComment(ctx, req); err != nil {
		return err
	}
	s.snapshot(ctx, req.BookID, "", "Delete comment "+req.CommentID)
	return nil
}

// --- Archive ---

func (s *Service) BookHistory(ctx context.Context, bookID string, limit int) ([]archive.SnapshotInfo, error) {
	if s.archive == nil {
		return []archive.SnapshotInfo{}, nil
	}
	return s.archive.History(bookID, limit)
}

func (s *Service) BookSnapshot(ctx context.Context, bookID, hash string) (store.Book, error) {
	if s.archive == nil {
		return store.Book{}, domainError(404, "NOT_FOUND", "Archive not configured", nil)
	}
	return s.archive.GetSnapshot(bookID, hash)
}

// --- Citations ---

func (s *Service) CreateCategory(ctx context.Context, name string) (store.CitationCategory, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.citation.CreateCategory(ctx, name)
}

func (s *Service) DeleteCategory(ctx context.Context, categoryID string) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.citation.DeleteCategory(ctx, categoryID)
}

func (s *Service) RenameCategory(ctx context.Context, categoryID, newName string) (store.CitationCategory, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.citation.RenameCategory(ctx, categoryID, newName)
}

func (s *Service) ListCategories(ctx context.Context) ([]store.CitationCategory, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.citation.ListCategories(ctx)
}

func (s *Service) AddCitation(ctx context.Context, req citation.AddCitationRequest) (store.Citation, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	cit, err := s.citation.AddCitation(ctx, req)
	if err != nil {
		return store.Citation{}, err
	}
	s.search.IndexCitation(req.CategoryID, cit)
	return cit, nil
}

func (s *Service) RemoveCitation(ctx context.Context, categoryID, refID string) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	if err := s.citation.RemoveCitation(ctx, categoryID, refID); err != nil {
		return err
	}
	s.search.DeleteCitation(categoryID, refID)
	return nil
}

func (s *Service) SearchCitations(ctx context.Context, query string, limit int) search.Response {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.search.Search(ctx, query, limit)
}

func (s *Service) GetCitationDetails(ctx context.Context, refID string) (store.Citation, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.citation.GetCitationDetails(ctx, refID)
}

// --- Discussions ---

func (s *Service) CreateDiscussion(ctx context.Context, req debate.CreateDiscussionRequest) (store.Discussion, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.debate.CreateDiscussion(ctx, req)
}

func (s *Service) GetDiscussion(ctx context.Context, discussionID string) (store.Discussion, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.debate.GetDiscussion(ctx, discussionID)
}

func (s *Service) ListDiscussions(ctx context.Context) ([]store.DiscussionInfo, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.debate.ListDiscussions(ctx)
}

func (s *Service) AddAnswer(ctx context.Context, req debate.AddAnswerRequest) (store.Answer, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.debate.AddAnswer(ctx, req)
}

func (s *Service) StartThread(ctx context.Context, req debate.StartThreadRequest) (store.ManthanaThread, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.debate.StartThread(ctx, req)
}

func (s *Service) AddCounterArgument(ctx context.Context, req debate.EntryRequest) (store.ManthanaThread, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.debate.AddCounterArgument(ctx, req)
}
