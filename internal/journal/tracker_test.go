package journal

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanglvm/retroos-brain/internal/brain"
	"github.com/khanglvm/retroos-brain/internal/storage"
)

func TestNewTracker(t *testing.T) {
	tracker := NewTracker(storage.NewMemoryStore(), nil)
	defer tracker.Stop()

	assert.True(t, tracker.IsEnabled())
	_, err := uuid.Parse(tracker.SessionID())
	assert.NoError(t, err)
}

func TestNewTracker_NilLogIsDisabled(t *testing.T) {
	tracker := NewTracker(nil, nil)
	defer tracker.Stop()

	assert.False(t, tracker.IsEnabled())
	assert.NotPanics(t, func() { tracker.Track(brain.NewAction(brain.KindAppOpen, "paint", 1)) })
}

func TestTracker_Track(t *testing.T) {
	mem := storage.NewMemoryStore()
	tracker := NewTracker(mem, nil)
	defer tracker.Stop()

	tracker.Track(brain.NewAction(brain.KindAppOpen, "paint", 1))

	assert.Eventually(t, func() bool { return mem.Len() == 1 }, time.Second, 10*time.Millisecond)

	history, err := mem.History(storage.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, tracker.SessionID(), history[0].SessionID)
	assert.Equal(t, "app_open", history[0].Kind)
}

func TestTracker_StopFlushes(t *testing.T) {
	mem := storage.NewMemoryStore()
	tracker := NewTracker(mem, nil)

	for i := 0; i < 25; i++ {
		tracker.Track(brain.NewAction(brain.KindAppFocus, "paint", int64(i)))
	}
	tracker.Stop()

	assert.Equal(t, 25, mem.Len())
	assert.Equal(t, 0, tracker.Dropped())

	// Stop is idempotent.
	assert.NotPanics(t, tracker.Stop)
}

func TestTracker_IgnoresActionsAfterStop(t *testing.T) {
	mem := storage.NewMemoryStore()
	tracker := NewTracker(mem, nil)

	tracker.Track(brain.NewAction(brain.KindAppOpen, "paint", 1))
	tracker.Stop()
	assert.False(t, tracker.IsEnabled())

	tracker.Track(brain.NewAction(brain.KindAppOpen, "snake", 2))

	history, err := mem.History(storage.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "paint", history[0].SubjectID)
	assert.Equal(t, 0, tracker.Dropped())
}

// blockingLog holds every write until release is closed.
type blockingLog struct {
	*storage.MemoryStore
	release chan struct{}
}

func (b *blockingLog) RecordActions(records []storage.ActionRecord) error {
	<-b.release
	return b.MemoryStore.RecordActions(records)
}

func TestTracker_DropsWhenQueueFull(t *testing.T) {
	log := &blockingLog{MemoryStore: storage.NewMemoryStore(), release: make(chan struct{})}
	tracker := NewTracker(log, nil)

	total := queueSize + 200
	for i := 0; i < total; i++ {
		tracker.Track(brain.NewAction(brain.KindAppFocus, "paint", int64(i)))
	}

	dropped := tracker.Dropped()
	assert.Greater(t, dropped, 0)

	close(log.release)
	tracker.Stop()
	assert.Equal(t, total-dropped, log.Len())
}

type failingLog struct{ storage.MemoryStore }

func (*failingLog) RecordActions([]storage.ActionRecord) error { return errors.New("disk full") }

func TestTracker_WriteFailureIsSwallowed(t *testing.T) {
	tracker := NewTracker(&failingLog{}, nil)
	tracker.Track(brain.NewAction(brain.KindAppOpen, "paint", 1))
	assert.NotPanics(t, tracker.Stop)
}

func TestRecord(t *testing.T) {
	drag := brain.NewAction(brain.KindWindowDrag, "paint", 10).WithWindow("w1")
	closed := brain.NewAction(brain.KindAppClose, "paint", 20).WithDuration(500)

	r := Record("s", drag)
	assert.Equal(t, storage.ActionRecord{SessionID: "s", Kind: "window_drag", SubjectID: "paint", Timestamp: 10, WindowID: "w1"}, r)

	r = Record("s", closed)
	require.NotNil(t, r.Duration)
	assert.Equal(t, int64(500), *r.Duration)
	assert.Empty(t, r.WindowID)
}

func TestWriteExport(t *testing.T) {
	mem := storage.NewMemoryStore()
	require.NoError(t, mem.RecordActions([]storage.ActionRecord{
		{SessionID: "s", Kind: "app_open", SubjectID: "paint", Timestamp: 100},
		{SessionID: "s", Kind: "app_open", SubjectID: "snake", Timestamp: 200},
	}))

	var buf bytes.Buffer
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	n, err := WriteExport(&buf, mem, storage.HistoryFilter{Since: 150}, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var doc Export
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 1, doc.Count)
	assert.True(t, now.Equal(doc.ExportedAt))
	require.Len(t, doc.Actions, 1)
	assert.Equal(t, "snake", doc.Actions[0].SubjectID)
}

func TestWriteExport_Empty(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteExport(&buf, storage.NewMemoryStore(), storage.HistoryFilter{}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Contains(t, buf.String(), `"actions": []`)
}
