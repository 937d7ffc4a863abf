package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobGuard_OnePerKey(t *testing.T) {
	var g jobGuard

	releaseA, ok := g.acquire("mindmap-a")
	require.True(t, ok)
	_, ok = g.acquire("mindmap-a")
	assert.False(t, ok, "same key is busy")

	releaseB, ok := g.acquire("mindmap-b")
	require.True(t, ok, "other keys are independent")

	releaseA()
	releaseA() // second call is a no-op
	again, ok := g.acquire("mindmap-a")
	require.True(t, ok)

	again()
	releaseB()
}

func TestJobGuard_WaitReturnsAfterRelease(t *testing.T) {
	var g jobGuard
	release, ok := g.acquire(backupJobID)
	require.True(t, ok)

	done := make(chan struct{})
	go func() {
		g.wait(context.Background())
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("wait returned while the job was running")
	case <-time.After(20 * time.Millisecond):
	}

	release()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("wait did not return after release")
	}
}

func TestJobGuard_WaitHonoursContext(t *testing.T) {
	var g jobGuard
	release, ok := g.acquire(backupJobID)
	require.True(t, ok)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	g.wait(ctx)
	assert.Less(t, time.Since(start), time.Second)
}

func TestBackupService_RejectsOverlappingRun(t *testing.T) {
	s := NewBackupService(nil, t.TempDir(), 1, nil, nil)
	release, ok := s.jobs.acquire(backupJobID)
	require.True(t, ok)
	defer release()

	_, err := s.RunNow(context.Background())
	assert.ErrorIs(t, err, ErrJobRunning)
}

func TestImportWatcher_RejectsOverlappingImport(t *testing.T) {
	w := NewImportWatcher(nil, func() string { return "mindmap-a" }, nil, nil)
	w.path = "/nonexistent/flow.json"
	release, ok := w.jobs.acquire("mindmap-a")
	require.True(t, ok)
	defer release()

	assert.ErrorIs(t, w.ImportNow(context.Background()), ErrJobRunning)
}

func TestMockEmitter_RecordsInOrder(t *testing.T) {
	m := &MockEmitter{}
	ctx := context.Background()

	m.Emit(ctx, EventMindmapChanged, MindmapEvent{MindmapID: "a"})
	m.Emit(ctx, EventMindmapHistory, nil)
	m.Emit(ctx, EventMindmapChanged, MindmapEvent{MindmapID: "b"})

	require.Len(t, m.Events, 3)
	assert.Equal(t, EventMindmapHistory, m.Events[1].Event)

	changed := m.Named(EventMindmapChanged)
	require.Len(t, changed, 2)
	assert.Equal(t, "b", changed[1].Data.(MindmapEvent).MindmapID)
	assert.Empty(t, m.Named("unknown"))
}
