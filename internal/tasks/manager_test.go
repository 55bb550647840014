// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigtune/internal/logging"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	opts = append([]Option{WithLogger(logging.NewNop())}, opts...)
	m := New(opts...)
	t.Cleanup(func() { _ = m.Shutdown(true, 3*time.Second) })
	return m
}

// waitForState polls Query until the task reaches want or the budget runs out.
func waitForState(t *testing.T, m *Manager, id string, want State) Snapshot {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	var last Snapshot
	for time.Now().Before(deadline) {
		snap, err := m.Query(id)
		if err == nil {
			last = snap
			if snap.State == want {
				return snap
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("task %s never reached %s (last: %s)", id, want, last.State)
	return Snapshot{}
}

// blockingWork returns work that holds its slot until release closes or
// cancellation lands.
func blockingWork(release <-chan struct{}) Work {
	return func(rc *RunContext) (any, error) {
		select {
		case <-release:
			return "released", nil
		case <-rc.Context().Done():
			return nil, rc.Context().Err()
		}
	}
}

type recordedEvent struct {
	kind  string
	pct   int
	text  string
	state State
	err   error
}

// eventRecorder is a thread-safe Listener capturing per-id event streams.
type eventRecorder struct {
	mu     sync.Mutex
	events map[string][]recordedEvent
}

func newEventRecorder() *eventRecorder {
	return &eventRecorder{events: make(map[string][]recordedEvent)}
}

func (r *eventRecorder) OnProgress(id string, pct int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[id] = append(r.events[id], recordedEvent{kind: "progress", pct: pct})
}

func (r *eventRecorder) OnStatus(id string, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[id] = append(r.events[id], recordedEvent{kind: "status", text: text})
}

func (r *eventRecorder) OnComplete(id string, state State, result any, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[id] = append(r.events[id], recordedEvent{kind: "complete", state: state, err: err})
}

func (r *eventRecorder) eventsFor(id string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recordedEvent, len(r.events[id]))
	copy(out, r.events[id])
	return out
}

func (r *eventRecorder) completeCount(id string) int {
	n := 0
	for _, e := range r.eventsFor(id) {
		if e.kind == "complete" {
			n++
		}
	}
	return n
}

// =============================================================================
// SUBMISSION AND SUCCESS
// =============================================================================

func TestManager_SleepTaskSucceeds(t *testing.T) {
	m := newTestManager(t)

	id, err := m.Submit(func(rc *RunContext) (any, error) {
		time.Sleep(50 * time.Millisecond)
		return map[string]any{"success": true}, nil
	}, WithName("sleeper"))
	require.NoError(t, err)

	// Queried right away the task must not be terminal yet.
	snap, err := m.Query(id)
	require.NoError(t, err)
	if snap.State != StatePending && snap.State != StateRunning {
		t.Errorf("Immediate state = %s, want Pending or Running", snap.State)
	}

	final := waitForState(t, m, id, StateSucceeded)
	result, ok := final.Result.(map[string]any)
	if !ok {
		t.Fatalf("Result type = %T, want map", final.Result)
	}
	if result["success"] != true {
		t.Errorf("Result = %v, want success true", result)
	}
	if final.Progress != 100 {
		t.Errorf("Progress = %d, want 100", final.Progress)
	}
	if final.Error != "" {
		t.Errorf("Error = %q, want empty", final.Error)
	}
}

func TestManager_IDFormatAndUniqueness(t *testing.T) {
	m := newTestManager(t)

	const n = 20
	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := m.Submit(func(rc *RunContext) (any, error) {
				return nil, nil
			}, WithName("burst"))
			if err != nil {
				t.Errorf("Submit failed: %v", err)
				return
			}
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		if seen[id] {
			t.Errorf("Duplicate id %s", id)
		}
		seen[id] = true
		if !strings.HasPrefix(id, "burst_task_") {
			t.Errorf("id %q missing name prefix", id)
		}
	}
	if len(seen) != n {
		t.Errorf("Got %d distinct ids, want %d", len(seen), n)
	}
}

func TestManager_SubmitNilWork(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Submit(nil)
	if !errors.Is(err, ErrNilWork) {
		t.Errorf("Submit(nil) error = %v, want ErrNilWork", err)
	}
}

// Submit must return immediately even when every worker slot is taken and
// work piles up behind the pool.
func TestManager_SubmitNeverBlocks(t *testing.T) {
	m := newTestManager(t, WithWorkers(1))

	release := make(chan struct{})
	defer close(release)

	_, err := m.Submit(blockingWork(release), WithName("blocker"))
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 20; i++ {
		_, err := m.Submit(blockingWork(release), WithName("queued"))
		require.NoError(t, err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("20 submits took %v, expected immediate return", elapsed)
	}

	counts := m.Counts()
	if counts.Running > 1 {
		t.Errorf("Running = %d with a single worker", counts.Running)
	}
	if counts.Pending < 19 {
		t.Errorf("Pending = %d, want at least 19 queued", counts.Pending)
	}
}

// =============================================================================
// FAILURE ISOLATION
// =============================================================================

func TestManager_ErrorBecomesFailed(t *testing.T) {
	m := newTestManager(t)
	rec := newEventRecorder()
	m.Subscribe(rec)

	id, err := m.Submit(func(rc *RunContext) (any, error) {
		return nil, errors.New("boom")
	}, WithName("failing"))
	require.NoError(t, err)

	final := waitForState(t, m, id, StateFailed)
	if !strings.Contains(final.Error, "boom") {
		t.Errorf("Error = %q, want it to contain %q", final.Error, "boom")
	}
	if final.Result != nil {
		t.Errorf("Result = %v, want nil on failure", final.Result)
	}

	events := rec.eventsFor(id)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	if last.kind != "complete" || last.state != StateFailed {
		t.Errorf("Last event = %+v, want Failed complete", last)
	}
	if last.err == nil || !strings.Contains(last.err.Error(), "boom") {
		t.Errorf("OnComplete err = %v, want boom", last.err)
	}
}

func TestManager_PanicBecomesFailedAndPoolSurvives(t *testing.T) {
	m := newTestManager(t, WithWorkers(2))

	id, err := m.Submit(func(rc *RunContext) (any, error) {
		panic("kaboom")
	}, WithName("panicking"))
	require.NoError(t, err)

	final := waitForState(t, m, id, StateFailed)
	if !strings.Contains(final.Error, "kaboom") {
		t.Errorf("Error = %q, want panic message", final.Error)
	}

	// The pool must keep executing after a panic.
	id2, err := m.Submit(func(rc *RunContext) (any, error) {
		return "still alive", nil
	}, WithName("survivor"))
	require.NoError(t, err)

	after := waitForState(t, m, id2, StateSucceeded)
	if after.Result != "still alive" {
		t.Errorf("Result = %v, want %q", after.Result, "still alive")
	}
}

// =============================================================================
// POOL BOUNDS AND AFFINITY
// =============================================================================

func TestManager_PoolBoundsConcurrency(t *testing.T) {
	const workers = 4
	const total = 10
	m := newTestManager(t, WithWorkers(workers))

	var mu sync.Mutex
	current, peak := 0, 0

	ids := make([]string, 0, total)
	for i := 0; i < total; i++ {
		id, err := m.Submit(func(rc *RunContext) (any, error) {
			mu.Lock()
			current++
			if current > peak {
				peak = current
			}
			mu.Unlock()

			time.Sleep(30 * time.Millisecond)

			mu.Lock()
			current--
			mu.Unlock()
			return nil, nil
		}, WithName("bounded"))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	for _, id := range ids {
		snap, err := m.Wait(id, 5*time.Second)
		require.NoError(t, err)
		if !snap.Terminal() {
			t.Errorf("Task %s not terminal after Wait", id)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if peak > workers {
		t.Errorf("Peak concurrency = %d, want <= %d", peak, workers)
	}
	if peak == 0 {
		t.Error("No task observed running")
	}
}

func TestManager_DedicatedLaneBypassesPool(t *testing.T) {
	m := newTestManager(t, WithWorkers(1))

	release := make(chan struct{})
	blockerID, err := m.Submit(blockingWork(release), WithName("blocker"))
	require.NoError(t, err)
	waitForState(t, m, blockerID, StateRunning)

	// The single slot is taken; a dedicated task must still run.
	id, err := m.Submit(func(rc *RunContext) (any, error) {
		return "ran beside the pool", nil
	}, WithName("urgent"), Dedicated())
	require.NoError(t, err)

	snap, err := m.Wait(id, 2*time.Second)
	require.NoError(t, err)
	if snap.State != StateSucceeded {
		t.Errorf("Dedicated task state = %s, want Succeeded", snap.State)
	}

	// The pool task is still holding its slot.
	blocker, err := m.Query(blockerID)
	require.NoError(t, err)
	if blocker.State != StateRunning {
		t.Errorf("Blocker state = %s, want still Running", blocker.State)
	}

	close(release)
	waitForState(t, m, blockerID, StateSucceeded)
}

// =============================================================================
// CANCELLATION
// =============================================================================

func TestManager_CancelPendingNeverRuns(t *testing.T) {
	m := newTestManager(t, WithWorkers(1))

	release := make(chan struct{})
	defer close(release)
	blockerID, err := m.Submit(blockingWork(release), WithName("blocker"))
	require.NoError(t, err)
	waitForState(t, m, blockerID, StateRunning)

	victimID, err := m.Submit(func(rc *RunContext) (any, error) {
		return "should not run", nil
	}, WithName("victim"))
	require.NoError(t, err)

	if !m.Cancel(victimID) {
		t.Fatal("Cancel on pending task returned false")
	}

	final := waitForState(t, m, victimID, StateCanceled)
	if !final.StartedAt.IsZero() {
		t.Error("Canceled pending task has a start time; it ran")
	}
	if final.Result != nil {
		t.Errorf("Canceled pending task produced result %v", final.Result)
	}
}

func TestManager_CancelRunningCooperative(t *testing.T) {
	m := newTestManager(t)

	id, err := m.Submit(func(rc *RunContext) (any, error) {
		for {
			if rc.Canceled() {
				return nil, rc.Context().Err()
			}
			time.Sleep(5 * time.Millisecond)
		}
	}, WithName("poller"))
	require.NoError(t, err)

	waitForState(t, m, id, StateRunning)
	if !m.Cancel(id) {
		t.Fatal("Cancel on running task returned false")
	}

	waitForState(t, m, id, StateCanceled)
}

// Work that never polls past its last check runs to natural completion and
// reports the real outcome, not Canceled.
func TestManager_CancelPastLastPollPoint(t *testing.T) {
	m := newTestManager(t)

	started := make(chan struct{})
	id, err := m.Submit(func(rc *RunContext) (any, error) {
		close(started)
		time.Sleep(40 * time.Millisecond) // no poll in here
		return "natural outcome", nil
	}, WithName("stubborn"))
	require.NoError(t, err)

	<-started
	if !m.Cancel(id) {
		t.Fatal("Cancel on running task returned false")
	}

	snap, err := m.Wait(id, 3*time.Second)
	require.NoError(t, err)
	if snap.State != StateSucceeded {
		t.Errorf("State = %s, want Succeeded despite cancel signal", snap.State)
	}
	if snap.Result != "natural outcome" {
		t.Errorf("Result = %v, want the work's own return", snap.Result)
	}
}

func TestManager_CancelUnknownID(t *testing.T) {
	m := newTestManager(t)

	if m.Cancel("no_such_task_1_0") {
		t.Error("Cancel(unknown) = true, want false")
	}
}

func TestManager_CancelAll(t *testing.T) {
	m := newTestManager(t, WithWorkers(2))

	ids := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		id, err := m.Submit(func(rc *RunContext) (any, error) {
			<-rc.Context().Done()
			return nil, rc.Context().Err()
		}, WithName("cancelable"))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	// Give the first two a moment to occupy the pool.
	time.Sleep(20 * time.Millisecond)

	if n := m.CancelAll(); n != 4 {
		t.Errorf("CancelAll signaled %d tasks, want 4", n)
	}
	for _, id := range ids {
		waitForState(t, m, id, StateCanceled)
	}
}

// =============================================================================
// EVENTS
// =============================================================================

func TestManager_EventOrderingPerTask(t *testing.T) {
	m := newTestManager(t)
	rec := newEventRecorder()
	m.Subscribe(rec)

	id, err := m.Submit(func(rc *RunContext) (any, error) {
		rc.Status("phase one")
		rc.Progress(10)
		rc.Progress(40)
		rc.Status("phase two")
		rc.Progress(90)
		return "ok", nil
	}, WithName("ordered"))
	require.NoError(t, err)

	_, err = m.Wait(id, 3*time.Second)
	require.NoError(t, err)

	events := rec.eventsFor(id)
	require.NotEmpty(t, events)

	// OnComplete is last and exactly once.
	if events[len(events)-1].kind != "complete" {
		t.Errorf("Last event = %q, want complete", events[len(events)-1].kind)
	}
	if got := rec.completeCount(id); got != 1 {
		t.Errorf("Complete count = %d, want exactly 1", got)
	}

	// Progress values arrive in emission order.
	var pcts []int
	var statuses []string
	for _, e := range events {
		switch e.kind {
		case "progress":
			pcts = append(pcts, e.pct)
		case "status":
			statuses = append(statuses, e.text)
		}
	}
	require.Equal(t, []int{10, 40, 90}, pcts)
	require.Equal(t, []string{"phase one", "phase two"}, statuses)
}

func TestManager_ExactlyOneCompleteUnderCancelRace(t *testing.T) {
	m := newTestManager(t, WithWorkers(4))
	rec := newEventRecorder()
	m.Subscribe(rec)

	const total = 20
	ids := make([]string, 0, total)
	for i := 0; i < total; i++ {
		id, err := m.Submit(func(rc *RunContext) (any, error) {
			time.Sleep(5 * time.Millisecond)
			return nil, nil
		}, WithName("racy"))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	// Hammer Cancel while tasks finish naturally.
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, id := range ids {
				m.Cancel(id)
			}
		}()
	}
	wg.Wait()

	for _, id := range ids {
		snap, err := m.Wait(id, 3*time.Second)
		require.NoError(t, err)
		if !snap.Terminal() {
			t.Errorf("Task %s not terminal", id)
		}
	}
	for _, id := range ids {
		if got := rec.completeCount(id); got != 1 {
			t.Errorf("Task %s complete count = %d, want exactly 1", id, got)
		}
	}
}

func TestManager_UnsubscribeStopsEvents(t *testing.T) {
	m := newTestManager(t)
	rec := newEventRecorder()
	unsubscribe := m.Subscribe(rec)
	unsubscribe()

	id, err := m.Submit(func(rc *RunContext) (any, error) {
		rc.Progress(50)
		return nil, nil
	}, WithName("silent"))
	require.NoError(t, err)

	_, err = m.Wait(id, 3*time.Second)
	require.NoError(t, err)

	if events := rec.eventsFor(id); len(events) != 0 {
		t.Errorf("Unsubscribed listener received %d events", len(events))
	}
}

// =============================================================================
// QUERIES AND RECORD LIFECYCLE
// =============================================================================

func TestManager_QueryUnknownID(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Query("ghost_task_9_0")
	if !errors.Is(err, ErrUnknownTask) {
		t.Errorf("Query(unknown) error = %v, want ErrUnknownTask", err)
	}
}

func TestManager_ListActiveAndCounts(t *testing.T) {
	m := newTestManager(t, WithWorkers(1))

	release := make(chan struct{})
	defer close(release)

	runningID, err := m.Submit(blockingWork(release), WithName("running"))
	require.NoError(t, err)
	waitForState(t, m, runningID, StateRunning)

	pendingID, err := m.Submit(blockingWork(release), WithName("pending"))
	require.NoError(t, err)

	active := m.ListActive()
	require.Len(t, active, 2)
	require.Contains(t, active, runningID)
	require.Contains(t, active, pendingID)

	counts := m.Counts()
	if counts.Running != 1 || counts.Pending != 1 || counts.Total != 2 {
		t.Errorf("Counts = %+v, want 1 running / 1 pending / 2 total", counts)
	}
}

func TestManager_WaitTimeout(t *testing.T) {
	m := newTestManager(t)

	release := make(chan struct{})
	defer close(release)
	id, err := m.Submit(blockingWork(release), WithName("slow"))
	require.NoError(t, err)

	snap, err := m.Wait(id, 50*time.Millisecond)
	if !errors.Is(err, ErrWaitTimeout) {
		t.Errorf("Wait error = %v, want ErrWaitTimeout", err)
	}
	if snap.Terminal() {
		t.Errorf("Snapshot state = %s, want non-terminal", snap.State)
	}
}

func TestManager_AcknowledgeRemovesRecordEarly(t *testing.T) {
	m := newTestManager(t) // default retention keeps records for seconds

	id, err := m.Submit(func(rc *RunContext) (any, error) {
		return nil, nil
	}, WithName("acked"))
	require.NoError(t, err)

	_, err = m.Wait(id, 3*time.Second)
	require.NoError(t, err)

	if !m.Acknowledge(id) {
		t.Fatal("Acknowledge on finished task returned false")
	}
	if _, err := m.Query(id); !errors.Is(err, ErrUnknownTask) {
		t.Errorf("Query after Acknowledge error = %v, want ErrUnknownTask", err)
	}
	if m.Acknowledge(id) {
		t.Error("Second Acknowledge returned true")
	}
}

func TestManager_AcknowledgeRejectsLiveTask(t *testing.T) {
	m := newTestManager(t)

	release := make(chan struct{})
	defer close(release)
	id, err := m.Submit(blockingWork(release), WithName("live"))
	require.NoError(t, err)
	waitForState(t, m, id, StateRunning)

	if m.Acknowledge(id) {
		t.Error("Acknowledge on running task returned true")
	}
}

func TestManager_ReapRemovesExpiredRecords(t *testing.T) {
	// Retention zero: finished records are gone on the next sweep. The
	// interval is long so only the manual Reap below runs.
	m := newTestManager(t, WithRetention(0), WithReapInterval(time.Hour))

	id, err := m.Submit(func(rc *RunContext) (any, error) {
		return nil, nil
	}, WithName("ephemeral"))
	require.NoError(t, err)

	_, err = m.Wait(id, 3*time.Second)
	require.NoError(t, err)

	if removed := m.Reap(); removed != 1 {
		t.Errorf("Reap removed %d records, want 1", removed)
	}
	if _, err := m.Query(id); !errors.Is(err, ErrUnknownTask) {
		t.Errorf("Query after reap error = %v, want ErrUnknownTask", err)
	}
}

func TestManager_ReaperRunsPeriodically(t *testing.T) {
	m := newTestManager(t, WithRetention(0), WithReapInterval(20*time.Millisecond))

	id, err := m.Submit(func(rc *RunContext) (any, error) {
		return nil, nil
	}, WithName("swept"))
	require.NoError(t, err)

	_, err = m.Wait(id, 3*time.Second)
	require.NoError(t, err)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := m.Query(id); errors.Is(err, ErrUnknownTask) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("Reaper never removed the finished record")
}

// A live task must not be reaped no matter how old its submission is.
func TestManager_ReapSkipsLiveTasks(t *testing.T) {
	m := newTestManager(t, WithRetention(0), WithReapInterval(time.Hour))

	release := make(chan struct{})
	defer close(release)
	id, err := m.Submit(blockingWork(release), WithName("longlived"))
	require.NoError(t, err)
	waitForState(t, m, id, StateRunning)

	if removed := m.Reap(); removed != 0 {
		t.Errorf("Reap removed %d records while task was live", removed)
	}
	if _, err := m.Query(id); err != nil {
		t.Errorf("Live task reaped: %v", err)
	}
}

// =============================================================================
// SHUTDOWN
// =============================================================================

func TestManager_ShutdownRejectsEverything(t *testing.T) {
	m := New(WithLogger(logging.NewNop()))

	require.NoError(t, m.Shutdown(true, time.Second))

	if _, err := m.Submit(func(rc *RunContext) (any, error) { return nil, nil }); !errors.Is(err, ErrShutdown) {
		t.Errorf("Submit after shutdown error = %v, want ErrShutdown", err)
	}
	if _, err := m.Query("any"); !errors.Is(err, ErrShutdown) {
		t.Errorf("Query after shutdown error = %v, want ErrShutdown", err)
	}
	if _, err := m.Wait("any", time.Second); !errors.Is(err, ErrShutdown) {
		t.Errorf("Wait after shutdown error = %v, want ErrShutdown", err)
	}
	if m.Cancel("any") {
		t.Error("Cancel after shutdown returned true")
	}
	if n := m.CancelAll(); n != 0 {
		t.Errorf("CancelAll after shutdown = %d, want 0", n)
	}
	if m.Acknowledge("any") {
		t.Error("Acknowledge after shutdown returned true")
	}
	if ids := m.ListActive(); ids != nil {
		t.Errorf("ListActive after shutdown = %v, want nil", ids)
	}
	if err := m.Shutdown(true, time.Second); !errors.Is(err, ErrShutdown) {
		t.Errorf("Second Shutdown error = %v, want ErrShutdown", err)
	}
}

func TestManager_ShutdownZeroTimeoutReturnsPromptly(t *testing.T) {
	m := New(WithLogger(logging.NewNop()))

	// A task that ignores cancellation and sleeps well past the test.
	_, err := m.Submit(func(rc *RunContext) (any, error) {
		time.Sleep(500 * time.Millisecond)
		return nil, nil
	}, WithName("straggler"))
	require.NoError(t, err)

	// Let it start so shutdown genuinely has a running task to abandon.
	time.Sleep(20 * time.Millisecond)

	start := time.Now()
	err = m.Shutdown(true, 0)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrShutdownTimeout) {
		t.Errorf("Shutdown error = %v, want ErrShutdownTimeout", err)
	}
	if elapsed > 250*time.Millisecond {
		t.Errorf("Shutdown took %v, want prompt return", elapsed)
	}
}

func TestManager_ShutdownZeroTimeoutIdlePool(t *testing.T) {
	m := New(WithLogger(logging.NewNop()))

	if err := m.Shutdown(true, 0); err != nil {
		t.Errorf("Shutdown of idle manager = %v, want nil", err)
	}
}

func TestManager_ShutdownWaitsForCooperativeTasks(t *testing.T) {
	m := New(WithLogger(logging.NewNop()))
	rec := newEventRecorder()
	m.Subscribe(rec)

	ids := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		id, err := m.Submit(func(rc *RunContext) (any, error) {
			<-rc.Context().Done()
			return nil, rc.Context().Err()
		}, WithName("cooperative"))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	time.Sleep(20 * time.Millisecond)

	start := time.Now()
	err := m.Shutdown(true, 3*time.Second)
	if err != nil {
		t.Errorf("Shutdown = %v, want nil for cooperative tasks", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Shutdown took %v, want fast drain", elapsed)
	}

	// Every task got its single Canceled completion before Shutdown returned.
	for _, id := range ids {
		events := rec.eventsFor(id)
		require.NotEmpty(t, events, "no events for %s", id)
		last := events[len(events)-1]
		if last.kind != "complete" || last.state != StateCanceled {
			t.Errorf("Task %s last event = %+v, want Canceled complete", id, last)
		}
	}
}

func TestManager_ShutdownCancelsPendingTasks(t *testing.T) {
	m := New(WithLogger(logging.NewNop()), WithWorkers(1))
	rec := newEventRecorder()
	m.Subscribe(rec)

	blockerID, err := m.Submit(blockingWork(nil), WithName("blocker"))
	require.NoError(t, err)

	pendingID, err := m.Submit(func(rc *RunContext) (any, error) {
		return "never", nil
	}, WithName("stuck"))
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	require.NoError(t, m.Shutdown(true, 3*time.Second))

	for _, id := range []string{blockerID, pendingID} {
		if got := rec.completeCount(id); got != 1 {
			t.Errorf("Task %s complete count = %d, want 1", id, got)
		}
		events := rec.eventsFor(id)
		last := events[len(events)-1]
		if last.state != StateCanceled {
			t.Errorf("Task %s final state = %s, want Canceled", id, last.state)
		}
	}
}
