package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samrosenbaum/v0-cracker-sub007/internal/extract"
	"github.com/samrosenbaum/v0-cracker-sub007/internal/model"
	"github.com/samrosenbaum/v0-cracker-sub007/internal/store"
)

// CreateSessionParams carries the caller's tuning for a new session.
// Zero values mean "unspecified" and take the configured defaults;
// negative values are invalid.
type CreateSessionParams struct {
	CaseID           string
	BatchSize        int
	ConcurrencyLimit int
}

// Scheduler admits case documents as bounded-concurrency pipelines and
// tracks live, monotonic progress per session. One live session object
// exists per id; it is mutated only under the scheduler's lock, and
// callers only ever see value snapshots.
type Scheduler struct {
	documents  store.DocumentStore
	statements store.StatementStore
	extractor  extract.Extractor
	cfg        model.BatchConfig

	mu       sync.RWMutex
	sessions map[string]*session
	order    []string // session creation order

	wg     sync.WaitGroup // in-flight item goroutines, across sessions
	ctx    context.Context
	cancel context.CancelFunc
}

// session is the live state behind one BatchSession. The work item queue
// is fixed at creation: memory is bounded by Progress.Total and the
// semaphore is the only throttle.
type session struct {
	model.BatchSession
	items     []model.WorkItem
	next      int           // next queue index to admit
	sem       chan struct{} // capacity = ConcurrencyLimit
	admitting bool          // a dispatch loop is active
}

// NewScheduler creates a scheduler over the given stores and extractor
func NewScheduler(documents store.DocumentStore, statements store.StatementStore, extractor extract.Extractor, cfg model.BatchConfig) *Scheduler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.ConcurrencyLimit <= 0 {
		cfg.ConcurrencyLimit = 5
	}
	if cfg.ItemTimeout <= 0 {
		cfg.ItemTimeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		documents:  documents,
		statements: statements,
		extractor:  extractor,
		cfg:        cfg,
		sessions:   make(map[string]*session),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// CreateSession queries the document store for the case's documents and
// builds the session's work queue in discovery order. A case with zero
// documents yields a session that is already completed.
func (s *Scheduler) CreateSession(ctx context.Context, params CreateSessionParams) (model.BatchSession, error) {
	if params.CaseID == "" {
		return model.BatchSession{}, fmt.Errorf("%w: case id is required", model.ErrInvalidArgument)
	}
	if params.BatchSize < 0 {
		return model.BatchSession{}, fmt.Errorf("%w: batch size must be positive, got %d", model.ErrInvalidArgument, params.BatchSize)
	}
	if params.ConcurrencyLimit < 0 {
		return model.BatchSession{}, fmt.Errorf("%w: concurrency limit must be positive, got %d", model.ErrInvalidArgument, params.ConcurrencyLimit)
	}

	batchSize := params.BatchSize
	if batchSize == 0 {
		batchSize = s.cfg.BatchSize
	}
	concurrency := params.ConcurrencyLimit
	if concurrency == 0 {
		concurrency = s.cfg.ConcurrencyLimit
	}

	refs, err := s.documents.ListDocuments(ctx, params.CaseID)
	if err != nil {
		return model.BatchSession{}, fmt.Errorf("list documents for case %s: %w", params.CaseID, err)
	}

	items := make([]model.WorkItem, len(refs))
	for i, ref := range refs {
		items[i] = model.WorkItem{Document: ref}
	}

	sess := &session{
		BatchSession: model.BatchSession{
			ID:               uuid.NewString(),
			CaseID:           params.CaseID,
			BatchSize:        batchSize,
			ConcurrencyLimit: concurrency,
			Status:           model.StatusPending,
			Progress:         model.Progress{Total: len(items)},
			CreatedAt:        time.Now(),
		},
		items: items,
		sem:   make(chan struct{}, concurrency),
	}

	// Nothing to do: terminal immediately, with zero counts
	if len(items) == 0 {
		sess.Status = model.StatusCompleted
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.order = append(s.order, sess.ID)
	snapshot := sess.BatchSession
	s.mu.Unlock()

	return snapshot, nil
}

// StartProcessing transitions a pending or paused session to running and
// begins dispatching its work items
func (s *Scheduler) StartProcessing(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: session %s", model.ErrNotFound, sessionID)
	}

	if !sess.Status.CanTransition(model.StatusRunning) {
		return fmt.Errorf("%w: cannot start session in status %s", model.ErrInvalidState, sess.Status)
	}

	sess.Status = model.StatusRunning

	// A dispatch loop from a previous start may still be draining toward
	// its status re-check; it will observe running and keep admitting.
	if !sess.admitting {
		sess.admitting = true
		go s.dispatch(sess)
	}

	return nil
}

// Pause stops admitting new items. In-flight items are never interrupted:
// they drain and are counted as usual.
func (s *Scheduler) Pause(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: session %s", model.ErrNotFound, sessionID)
	}

	if sess.Status.IsTerminal() {
		return fmt.Errorf("%w: cannot pause session in status %s", model.ErrInvalidState, sess.Status)
	}

	sess.Status = model.StatusPaused
	return nil
}

// GetSession returns a live snapshot of the session, including progress
func (s *Scheduler) GetSession(sessionID string) (model.BatchSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return model.BatchSession{}, fmt.Errorf("%w: session %s", model.ErrNotFound, sessionID)
	}

	return sess.BatchSession, nil
}

// ListSessions returns snapshots of the case's sessions, most recently
// created first
func (s *Scheduler) ListSessions(caseID string) []model.BatchSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sessions []model.BatchSession
	for i := len(s.order) - 1; i >= 0; i-- {
		sess := s.sessions[s.order[i]]
		if sess.CaseID == caseID {
			sessions = append(sessions, sess.BatchSession)
		}
	}

	return sessions
}

// WorkItems returns a snapshot of the session's queue, including per-item
// attempts and last errors
func (s *Scheduler) WorkItems(sessionID string) ([]model.WorkItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: session %s", model.ErrNotFound, sessionID)
	}

	items := make([]model.WorkItem, len(sess.items))
	copy(items, sess.items)
	return items, nil
}

// Close stops admission on every session and waits for in-flight items to
// drain, bounded by ctx. Sessions go terminal only after their drain.
func (s *Scheduler) Close(ctx context.Context) error {
	s.mu.Lock()
	for _, sess := range s.sessions {
		if sess.Status == model.StatusRunning {
			sess.Status = model.StatusPaused
		}
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		return fmt.Errorf("close scheduler: %w", ctx.Err())
	}
}

// dispatch is the session's admission loop. It acquires a concurrency
// slot, re-checks status under the lock, and launches one item goroutine
// per admitted item. Admission never blocks progress updates: waiting on
// the semaphore happens outside the lock, so one slow document only
// occupies its slot.
func (s *Scheduler) dispatch(sess *session) {
	for {
		s.mu.Lock()
		if sess.Status != model.StatusRunning || sess.next >= len(sess.items) {
			sess.admitting = false
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		select {
		case sess.sem <- struct{}{}:
		case <-s.ctx.Done():
			s.mu.Lock()
			sess.admitting = false
			s.mu.Unlock()
			return
		}

		// Re-check under the lock: the session may have been paused while
		// this loop waited for a slot.
		s.mu.Lock()
		if sess.Status != model.StatusRunning || sess.next >= len(sess.items) {
			sess.admitting = false
			s.mu.Unlock()
			<-sess.sem
			return
		}
		idx := sess.next
		sess.next++
		sess.Progress.InFlight++
		s.mu.Unlock()

		s.wg.Add(1)
		go s.runItem(sess, idx)
	}
}

// runItem drives one admitted work item to a settled outcome. The final
// counter update and the terminal transition happen in one critical
// section so status is always decided from a consistent snapshot of
// progress.
func (s *Scheduler) runItem(sess *session, idx int) {
	defer s.wg.Done()

	item := &sess.items[idx]
	statements, err := s.processItem(item)
	if err == nil {
		if appendErr := s.statements.Append(s.ctx, statements); appendErr != nil {
			err = fmt.Errorf("persist statements: %w", appendErr)
		}
	}

	s.mu.Lock()
	sess.Progress.InFlight--
	if err != nil {
		item.LastError = err.Error()
		sess.Progress.Failed++
	} else {
		sess.Progress.Completed++
	}

	if sess.Progress.Settled() == sess.Progress.Total && !sess.Status.IsTerminal() {
		if sess.Progress.Failed == sess.Progress.Total {
			sess.Status = model.StatusFailed
		} else {
			// Partial failure still completes; the failed count is the
			// caller's soft-failure signal.
			sess.Status = model.StatusCompleted
		}
	}
	s.mu.Unlock()

	<-sess.sem
}

// processItem runs the extraction with the retry policy: the first
// attempt plus up to MaxRetries immediate retries. Failures here are
// expected to be content-specific rather than transient-network, so there
// is no backoff.
func (s *Scheduler) processItem(item *model.WorkItem) ([]model.Statement, error) {
	var lastErr error
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		s.mu.Lock()
		item.Attempts++
		s.mu.Unlock()

		statements, err := s.extractOnce(item.Document)
		if err == nil {
			return statements, nil
		}

		lastErr = err
		if !model.IsRetryable(err) {
			break
		}
	}
	return nil, lastErr
}

// extractOnce performs one extraction attempt under the per-item timeout
func (s *Scheduler) extractOnce(ref model.DocumentRef) ([]model.Statement, error) {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.ItemTimeout)
	defer cancel()

	doc, err := s.documents.GetDocument(ctx, ref)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: load document %s", model.ErrCapabilityTimeout, ref.ID)
		}
		return nil, fmt.Errorf("%w: load document %s: %v", model.ErrExtraction, ref.ID, err)
	}

	statements, err := s.extractor.Extract(ctx, doc)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: document %s", model.ErrCapabilityTimeout, ref.ID)
		}
		if model.IsRetryable(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: document %s: %v", model.ErrExtraction, ref.ID, err)
	}

	// Assign ids and stamp provenance before persisting
	out := make([]model.Statement, len(statements))
	for i, st := range statements {
		st.ID = uuid.NewString()
		st.CaseID = ref.CaseID
		st.SourceDocumentID = ref.ID
		if st.Timestamp.IsZero() {
			st.Timestamp = doc.RetrievedAt
		}
		out[i] = st
	}

	return out, nil
}
