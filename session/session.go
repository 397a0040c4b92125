package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/barmatch/barmatch/ai"
	"github.com/barmatch/barmatch/core"
	"github.com/barmatch/barmatch/dispatch"
	"github.com/barmatch/barmatch/intent"
	"github.com/barmatch/barmatch/rank"
	"github.com/barmatch/barmatch/storage"
)

const (
	defaultTopK     = 5
	eventBufferSize = 64
)

// Config carries the services a session runs on. Extractor, Dispatcher, and
// Ranker are required; Narrator and Users are optional.
type Config struct {
	Extractor  *intent.Extractor
	Dispatcher *dispatch.Dispatcher
	Ranker     *rank.Ranker
	Narrator   ai.Narrator
	Users      storage.UserRepository
	TopK       int
	Logger     *slog.Logger
}

func (c *Config) validate() error {
	if c.Extractor == nil {
		return ErrExtractorRequired
	}
	if c.Dispatcher == nil {
		return ErrDispatcherRequired
	}
	if c.Ranker == nil {
		return ErrRankerRequired
	}
	return nil
}

// Session runs the conversational matching loop for one client. Messages go
// in, events come out; at most one match cycle is in flight, and a newer
// message supersedes the one running.
type Session struct {
	id     string
	userID string

	extractor  *intent.Extractor
	dispatcher *dispatch.Dispatcher
	ranker     *rank.Ranker
	narrator   ai.Narrator
	users      storage.UserRepository
	topK       int
	logger     *slog.Logger

	events chan Event

	mu          sync.Mutex
	store       *core.FactStore
	state       State
	cycleSeq    uint64
	cycleCancel context.CancelFunc
	lastActive  time.Time
	closed      bool

	wg sync.WaitGroup
}

// newSession builds a session and, when a user id and user repository are
// present, resumes from the stored fact snapshot.
func newSession(id, userID string, cfg Config) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	s := &Session{
		id:         id,
		userID:     userID,
		extractor:  cfg.Extractor,
		dispatcher: cfg.Dispatcher,
		ranker:     cfg.Ranker,
		narrator:   cfg.Narrator,
		users:      cfg.Users,
		topK:       topK,
		logger:     logger.With("session", id),
		events:     make(chan Event, eventBufferSize),
		store:      core.NewFactStore(),
		state:      StateConnected,
		lastActive: time.Now(),
	}

	if s.users != nil && userID != "" {
		facts, turn, err := s.users.GetFactSnapshot(context.Background(), userID)
		switch {
		case err == nil:
			s.store.Restore(facts)
			for s.store.Turn() < turn {
				s.store.AdvanceTurn()
			}
			s.state = StateAwaitingInput
			s.logger.Info("resumed fact snapshot", "facts", len(facts), "turn", turn)
		case errors.Is(err, storage.ErrNotFound):
			// First conversation for this user.
		default:
			return nil, err
		}
	}

	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// UserID returns the user id, empty for anonymous sessions.
func (s *Session) UserID() string { return s.userID }

// Events returns the outbound event stream. The channel is closed by Close.
func (s *Session) Events() <-chan Event { return s.events }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Facts returns a snapshot of the accumulated facts.
func (s *Session) Facts() []core.Fact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

// Touch records client liveness for idle sweeping.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
}

// LastActive returns the time of the last message or heartbeat.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// HandleMessage accepts one user message. A malformed message produces an
// error event and leaves the session open; a well-formed one supersedes any
// in-flight cycle and starts a new one.
func (s *Session) HandleMessage(turnID, text string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.lastActive = time.Now()

	if strings.TrimSpace(text) == "" {
		s.send(Event{Type: EventError, TurnID: turnID, Code: CodeEmptyMessage, Text: "message text is empty"})
		s.mu.Unlock()
		return nil
	}

	// Supersede the running cycle, if any. Its fact mutations so far stand;
	// its events will be dropped by the sequence guard.
	if s.cycleCancel != nil {
		s.cycleCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cycleCancel = cancel
	s.cycleSeq++
	seq := s.cycleSeq
	s.state = StateProcessing
	s.store.AdvanceTurn()
	snapshot := s.store.Clone()
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.runCycle(ctx, seq, turnID, text, snapshot)
	}()
	return nil
}

// SaveCandidate appends a profile id to the user's saved list.
func (s *Session) SaveCandidate(ctx context.Context, id core.ID) error {
	if s.users == nil || s.userID == "" {
		return ErrNoUser
	}

	saved, err := s.users.GetSavedCandidates(ctx, s.userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	for _, existing := range saved {
		if existing == id {
			return nil
		}
	}
	return s.users.PutSavedCandidates(ctx, s.userID, append(saved, id))
}

// Close shuts the session down: the running cycle is cancelled, workers are
// drained, and the event channel is closed.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.state = StateClosed
	if s.cycleCancel != nil {
		s.cycleCancel()
	}
	s.mu.Unlock()

	s.wg.Wait()
	close(s.events)
}

// runCycle executes extract -> apply -> dispatch -> rank -> stream for one
// message. Every stage checks the cycle context; once superseded, the cycle
// goes quiet.
func (s *Session) runCycle(ctx context.Context, seq uint64, turnID, text string, snapshot *core.FactStore) {
	update, err := s.extractor.Extract(ctx, snapshot, text)
	if err != nil && !errors.Is(err, intent.ErrExtractionDegraded) {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("extraction failed", "turn", turnID, "err", err)
		s.emit(seq, Event{Type: EventError, TurnID: turnID, Code: CodeInternalFailure, Text: "could not understand that message"})
		s.setState(seq, StateAwaitingInput)
		return
	}
	if err != nil {
		s.logger.Warn("extraction degraded, continuing with heuristics", "turn", turnID, "err", err)
	}

	// Apply to the live store. Mutations stand even if this cycle gets
	// superseded a moment later; merges are idempotent.
	s.mu.Lock()
	if ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	s.store.Apply(update)
	merged := s.store.Clone()
	s.mu.Unlock()

	s.persistSnapshot(merged)

	dispatched, err := s.dispatcher.Dispatch(ctx, merged)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("dispatch failed", "turn", turnID, "err", err)
			s.emit(seq, Event{Type: EventError, TurnID: turnID, Code: CodeInternalFailure, Text: "search failed, please try again"})
			s.setState(seq, StateAwaitingInput)
		}
		return
	}
	if len(dispatched.Failed) > 0 {
		s.logger.Warn("strategies failed", "turn", turnID, "failed", dispatched.Failed)
	}

	results, err := s.ranker.Rank(ctx, dispatched, merged, s.topK)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("ranking failed", "turn", turnID, "err", err)
			s.emit(seq, Event{Type: EventError, TurnID: turnID, Code: CodeInternalFailure, Text: "ranking failed, please try again"})
			s.setState(seq, StateAwaitingInput)
		}
		return
	}

	s.setState(seq, StateStreamingResult)
	narrative := s.streamNarrative(ctx, seq, turnID, text, merged, results)
	if ctx.Err() != nil {
		return
	}
	if len(results) > 0 && narrative != "" {
		results[0].Narrative = narrative
	}

	s.emit(seq, Event{Type: EventTextComplete, TurnID: turnID, Text: narrative})
	s.emit(seq, Event{Type: EventResultSet, TurnID: turnID, Results: results})
	s.emit(seq, Event{Type: EventFollowups, TurnID: turnID, Suggestions: followups(merged, len(results))})
	s.setState(seq, StateAwaitingInput)
}

// streamNarrative produces the turn's narrative text, emitting fragments as
// they arrive. Without a narrator, or when it fails, a deterministic summary
// fragment goes out instead.
func (s *Session) streamNarrative(ctx context.Context, seq uint64, turnID, query string, store *core.FactStore, results []*core.MergedResult) string {
	if s.narrator != nil {
		req := ai.NarrationRequest{
			Query:   query,
			Facts:   store.Snapshot(),
			Results: summarize(results),
		}
		narrative, err := s.narrator.Narrate(ctx, req, func(fragment string) {
			s.emit(seq, Event{Type: EventTextFragment, TurnID: turnID, Text: fragment})
		})
		if err == nil {
			return narrative
		}
		if ctx.Err() != nil {
			return ""
		}
		s.logger.Warn("narration failed, using summary fragment", "turn", turnID, "err", err)
	}

	fallback := summaryFragment(results)
	s.emit(seq, Event{Type: EventTextFragment, TurnID: turnID, Text: fallback})
	return fallback
}

// persistSnapshot saves the user's facts after a merge. Runs on a background
// context so a superseded cycle still gets its mutations stored.
func (s *Session) persistSnapshot(store *core.FactStore) {
	if s.users == nil || s.userID == "" {
		return
	}
	if err := s.users.PutFactSnapshot(context.Background(), s.userID, store.Snapshot(), store.Turn()); err != nil {
		s.logger.Error("failed to persist fact snapshot", "err", err)
	}
}

// emit delivers an event unless the cycle has been superseded or the session
// closed. The staleness check and the enqueue happen under one lock, so a
// supersession cannot land between them and let a stale event through. A
// client that stopped draining the buffer loses the event rather than
// stalling the session.
func (s *Session) emit(seq uint64, event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq != s.cycleSeq {
		return
	}
	s.send(event)
}

// send enqueues without blocking; the caller must hold s.mu with the session
// open, which is what keeps the channel writable.
func (s *Session) send(event Event) {
	select {
	case s.events <- event:
	default:
		s.logger.Warn("event buffer full, dropping event", "type", event.Type, "turn", event.TurnID)
	}
}

// setState transitions the session state if the cycle is still current.
func (s *Session) setState(seq uint64, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed && seq == s.cycleSeq {
		s.state = state
	}
}

func summarize(results []*core.MergedResult) []ai.ResultSummary {
	summaries := make([]ai.ResultSummary, len(results))
	for i, result := range results {
		summaries[i] = ai.ResultSummary{
			Name:    result.Profile.Name,
			Reasons: result.MatchReasons,
		}
	}
	return summaries
}

func summaryFragment(results []*core.MergedResult) string {
	if len(results) == 0 {
		return "I couldn't find anyone matching everything yet. Let's adjust the search."
	}
	top := results[0]
	if len(results) == 1 {
		return fmt.Sprintf("I found one match: %s looks like a strong fit.", top.Profile.Name)
	}
	return fmt.Sprintf("I found %d matches. %s looks like the strongest fit.", len(results), top.Profile.Name)
}
