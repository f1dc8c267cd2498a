/*
Package journal keeps a full, append-only history of recorded actions.

The engine itself only remembers the last fifty actions. The tracker
copies every action into an ActionLog in the background so the history
can be exported later. Writes never block the caller: if the queue is
full the action is dropped.
*/
package journal

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khanglvm/retroos-brain/internal/brain"
	"github.com/khanglvm/retroos-brain/internal/storage"
)

const (
	// queueSize is the buffer size for the action queue.
	// If full, actions are dropped (non-blocking).
	queueSize = 1000

	// batchFlushSize is the number of actions that triggers an immediate flush.
	batchFlushSize = 10

	// flushInterval is how often pending actions are flushed.
	flushInterval = 50 * time.Millisecond
)

// Tracker journals actions in the background with non-blocking writes.
type Tracker struct {
	log       storage.ActionLog
	logger    *zap.Logger
	sessionID string
	queue     chan storage.ActionRecord
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	enabled   bool
	dropped   int
	mu        sync.RWMutex
}

// NewTracker starts a tracker writing to log under a fresh session id.
// A nil log yields a disabled tracker.
func NewTracker(log storage.ActionLog, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{
		log:       log,
		logger:    logger,
		sessionID: uuid.NewString(),
		queue:     make(chan storage.ActionRecord, queueSize),
		stopChan:  make(chan struct{}),
		enabled:   log != nil,
	}

	t.wg.Add(1)
	go t.run()

	return t
}

// SessionID returns the id stamped on every record of this process.
func (t *Tracker) SessionID() string {
	return t.sessionID
}

// Track queues an action (non-blocking).
func (t *Tracker) Track(action brain.UserAction) {
	if !t.IsEnabled() {
		return
	}

	select {
	case t.queue <- Record(t.sessionID, action):
	default:
		t.mu.Lock()
		t.dropped++
		t.mu.Unlock()
		t.logger.Warn("journal queue full, dropping action",
			zap.String("kind", string(action.Kind)),
			zap.String("subject", action.SubjectID),
		)
	}
}

// Stop flushes pending actions and shuts the tracker down. Actions
// tracked after Stop are ignored.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		t.mu.Lock()
		t.enabled = false
		t.mu.Unlock()

		close(t.stopChan)
		t.wg.Wait()
	})
}

// IsEnabled reports whether Track records anything.
func (t *Tracker) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Dropped returns how many actions were lost to a full queue.
func (t *Tracker) Dropped() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dropped
}

// run batches queued actions and flushes them to the log.
func (t *Tracker) run() {
	defer t.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]storage.ActionRecord, 0, batchFlushSize)

	for {
		select {
		case r := <-t.queue:
			batch = append(batch, r)
			if len(batch) >= batchFlushSize {
				t.flush(batch)
				batch = make([]storage.ActionRecord, 0, batchFlushSize)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				t.flush(batch)
				batch = make([]storage.ActionRecord, 0, batchFlushSize)
			}

		case <-t.stopChan:
			// Drain whatever is left, then exit.
			for {
				select {
				case r := <-t.queue:
					batch = append(batch, r)
				default:
					t.flush(batch)
					return
				}
			}
		}
	}
}

// flush writes a batch to the log.
func (t *Tracker) flush(batch []storage.ActionRecord) {
	if len(batch) == 0 {
		return
	}
	if err := t.log.RecordActions(batch); err != nil {
		t.logger.Warn("failed to journal actions", zap.Int("count", len(batch)), zap.Error(err))
	}
}

// Record converts an action into a journal record.
func Record(sessionID string, a brain.UserAction) storage.ActionRecord {
	r := storage.ActionRecord{
		SessionID: sessionID,
		Kind:      string(a.Kind),
		SubjectID: a.SubjectID,
		Timestamp: a.Timestamp,
	}
	if a.Duration != nil {
		d := *a.Duration
		r.Duration = &d
	}
	if a.Metadata != nil {
		r.WindowID = a.Metadata.WindowID
	}
	return r
}
