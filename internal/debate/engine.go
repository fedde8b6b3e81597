// Package debate manages discussions: their answer lists and Manthana debate
// threads (one fixed purvapaksha thesis plus ordered uttarpaksha
// counter-arguments).
package debate

import (
	"context"
	"errors"
	"strings"
	"time"

	"granthalaya/api/internal/store"
	"granthalaya/api/internal/util"
)

var (
	ErrDiscussionNotFound = errors.New("debate: discussion not found")
	ErrDiscussionExists   = errors.New("debate: discussion already exists")
	ErrThreadNotFound     = errors.New("debate: thread not found")
)

// StancePurvapaksha is the stance fixed on every thread's thesis entry.
const StancePurvapaksha = "purvapaksha"

type Engine struct {
	gateway store.Gateway
	locks   *store.Locks
}

func New(gateway store.Gateway, locks *store.Locks) *Engine {
	return &Engine{gateway: gateway, locks: locks}
}

type CreateDiscussionRequest struct {
	Title    string
	Question string
	AuthorID string
}

type AddAnswerRequest struct {
	DiscussionID string
	AuthorID     string
	Body         string
}

// StartThreadRequest opens a debate. The thesis entry's stance is forced to
// purvapaksha regardless of input.
type StartThreadRequest struct {
	DiscussionID string
	Topic        string
	Author       string
	Content      string
}

// EntryRequest is one counter-argument. Stance is caller-supplied and stored
// as given.
type EntryRequest struct {
	DiscussionID string
	ThreadID     string
	Author       string
	Content      string
	Stance       string
}

func (e *Engine) CreateDiscussion(ctx context.Context, req CreateDiscussionRequest) (store.Discussion, error) {
	discussion := store.Discussion{
		ID:        util.NewID("disc"),
		Title:     strings.TrimSpace(req.Title),
		Question:  req.Question,
		AuthorID:  req.AuthorID,
		Answers:   []store.Answer{},
		Threads:   []store.ManthanaThread{},
		CreatedAt: time.Now().UTC(),
	}
	err := e.gateway.InsertDiscussion(ctx, discussion)
	if errors.Is(err, store.ErrAlreadyExists) {
		return store.Discussion{}, ErrDiscussionExists
	}
	if err != nil {
		return store.Discussion{}, err
	}
	return discussion, nil
}

func (e *Engine) GetDiscussion(ctx context.Context, discussionID string) (store.Discussion, error) {
	discussion, _, err := e.gateway.LoadDiscussion(ctx, discussionID)
	if errors.Is(err, store.ErrNotFound) {
		return store.Discussion{}, ErrDiscussionNotFound
	}
	if err != nil {
		return store.Discussion{}, err
	}
	return discussion, nil
}

func (e *Engine) ListDiscussions(ctx context.Context) ([]store.DiscussionInfo, error) {
	return e.gateway.ListDiscussions(ctx)
}

func (e *Engine) AddAnswer(ctx context.Context, req AddAnswerRequest) (store.Answer, error) {
	lock := e.locks.For(req.DiscussionID)
	lock.Lock()
	defer lock.Unlock()

	discussion, version, err := e.gateway.LoadDiscussion(ctx, req.DiscussionID)
	if errors.Is(err, store.ErrNotFound) {
		return store.Answer{}, ErrDiscussionNotFound
	}
	if err != nil {
		return store.Answer{}, err
	}

	answer := store.Answer{
		ID:        util.NewID("ans"),
		AuthorID:  req.AuthorID,
		Body:      req.Body,
		CreatedAt: time.Now().UTC(),
	}
	discussion.Answers = append(discussion.Answers, answer)

	if err := e.gateway.StoreDiscussion(ctx, discussion, version); err != nil {
		return store.Answer{}, err
	}
	return answer, nil
}

// StartThread appends a new debate thread to the discussion.
func (e *Engine) StartThread(ctx context.Context, req StartThreadRequest) (store.ManthanaThread, error) {
	lock := e.locks.For(req.DiscussionID)
	lock.Lock()
	defer lock.Unlock()

	discussion, version, err := e.gateway.LoadDiscussion(ctx, req.DiscussionID)
	if errors.Is(err, store.ErrNotFound) {
		return store.ManthanaThread{}, ErrDiscussionNotFound
	}
	if err != nil {
		return store.ManthanaThread{}, err
	}

	now := time.Now().UTC()
	thread := store.ManthanaThread{
		ID:    util.NewID("mt"),
		Topic: strings.TrimSpace(req.Topic),
		Purvapaksha: store.DebateEntry{
			Author:    req.Author,
			Content:   req.Content,
			Stance:    StancePurvapaksha,
			CreatedAt: now,
		},
		Uttarpaksha: []store.DebateEntry{},
		CreatedAt:   now,
	}
	discussion.Threads = append(discussion.Threads, thread)

	if err := e.gateway.StoreDiscussion(ctx, discussion, version); err != nil {
		return store.ManthanaThread{}, err
	}
	return thread, nil
}

// AddCounterArgument appends an entry to the thread's uttarpaksha list. The
// thread list is scanned linearly; discussions hold tens of threads at most.
func (e *Engine) AddCounterArgument(ctx context.Context, req EntryRequest) (store.ManthanaThread, error) {
	lock := e.locks.For(req.DiscussionID)
	lock.Lock()
	defer lock.Unlock()

	discussion, version, err := e.gateway.LoadDiscussion(ctx, req.DiscussionID)
	if errors.Is(err, store.ErrNotFound) {
		return store.ManthanaThread{}, ErrDiscussionNotFound
	}
	if err != nil {
		return store.ManthanaThread{}, err
	}

	for i := range discussion.Threads {
		if discussion.Threads[i].ID != req.ThreadID {
			continue
		}
		entry := store.DebateEntry{
			Author:    req.Author,
			Content:   req.Content,
			Stance:    req.Stance,
			CreatedAt: time.Now().UTC(),
		}
		discussion.Threads[i].Uttarpaksha = append(discussion.Threads[i].Uttarpaksha, entry)
		if err := e.gateway.StoreDiscussion(ctx, discussion, version); err != nil {
			return store.ManthanaThread{}, err
		}
		return discussion.Threads[i], nil
	}
	return store.ManthanaThread{}, ErrThreadNotFound
}
