package facts

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lcalzada-xor/factmap/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// scriptedSource answers from a fixed script, one entry per call.
// A nil entry is a failed fetch.
type scriptedSource struct {
	mu      sync.Mutex
	script  []*domain.Fact
	calls   int
	panicAt int // 1-based call that panics, 0 for never
	// panicValue overrides the default panic message when set
	panicValue interface{}
	gate       chan struct{}
}

func (s *scriptedSource) RandomFact(ctx context.Context) (domain.Fact, bool) {
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return domain.Fact{}, false
		}
	}
	s.mu.Lock()
	s.calls++
	call := s.calls
	var entry *domain.Fact
	if call-1 < len(s.script) {
		entry = s.script[call-1]
	}
	s.mu.Unlock()

	if s.panicAt == call {
		if s.panicValue != nil {
			panic(s.panicValue)
		}
		panic("connection pool exhausted")
	}
	if entry == nil {
		return domain.Fact{}, false
	}
	return *entry, true
}

func (s *scriptedSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func fact(id string) *domain.Fact {
	return &domain.Fact{ID: id, Text: "fact " + id, Source: domain.UnknownSource}
}

// MockRecorder captures finished runs
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(run domain.FetchRun) {
	m.Called(run)
}

// recordingNotifier keeps every facts state it was told about
type recordingNotifier struct {
	mu     sync.Mutex
	states []domain.FactsState
}

func (n *recordingNotifier) NotifyFacts(state domain.FactsState) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.states = append(n.states, state)
}
func (n *recordingNotifier) NotifyMap(domain.MapState) {}
func (n *recordingNotifier) NotifyNav(domain.NavState) {}

func (n *recordingNotifier) Statuses() []domain.FactsStatus {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []domain.FactsStatus
	for _, s := range n.states {
		out = append(out, s.Status)
	}
	return out
}

func TestBuildList_KeepsSuccessesInOrder(t *testing.T) {
	for k := 0; k <= 10; k++ {
		t.Run(fmt.Sprintf("%d of 10", k), func(t *testing.T) {
			// Interleave failures so order is actually exercised
			script := make([]*domain.Fact, 10)
			var want []string
			placed := 0
			for i := 0; i < 10 && placed < k; i++ {
				if i%2 == 1 || 10-i <= k-placed {
					id := fmt.Sprintf("f%d", i)
					script[i] = fact(id)
					want = append(want, id)
					placed++
				}
			}
			require.Equal(t, k, placed)

			src := &scriptedSource{script: script}
			list, attempts := BuildList(context.Background(), src, 10)

			assert.Equal(t, 10, attempts)
			assert.Equal(t, 10, src.Calls())
			require.Len(t, list, k)
			var got []string
			for _, f := range list {
				got = append(got, f.ID)
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestBuildList_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &scriptedSource{script: []*domain.Fact{fact("1")}}
	list, attempts := BuildList(ctx, src, 10)

	assert.Empty(t, list)
	assert.NotNil(t, list)
	assert.Equal(t, 0, attempts)
}

func TestService_InitialState(t *testing.T) {
	svc := NewService(&scriptedSource{}, 0, nil)

	st := svc.State()
	assert.Equal(t, domain.FactsLoading, st.Status)
	assert.Empty(t, st.Facts)
	assert.Equal(t, DefaultCount, svc.count)
}

func TestService_OpenLoadsOnce(t *testing.T) {
	src := &scriptedSource{script: []*domain.Fact{fact("1"), nil, fact("3")}}
	rec := new(MockRecorder)
	rec.On("Record", mock.MatchedBy(func(r domain.FetchRun) bool {
		return r.Trigger == domain.TriggerInitial &&
			r.Outcome == domain.OutcomeLoaded &&
			r.Attempts == 10 && r.Succeeded == 2 && r.ID != ""
	})).Return().Once()

	svc := NewService(src, 10, rec)

	assert.True(t, svc.Open(context.Background()))
	svc.Wait()
	assert.False(t, svc.Open(context.Background()), "second open must not refetch")
	svc.Wait()

	st := svc.State()
	assert.Equal(t, domain.FactsLoaded, st.Status)
	require.Len(t, st.Facts, 2)
	assert.Equal(t, "1", st.Facts[0].ID)
	assert.Equal(t, "3", st.Facts[1].ID)
	assert.Empty(t, st.Error)
	assert.Equal(t, 10, src.Calls())
	rec.AssertExpectations(t)
}

func TestService_AllFailuresIsEmptyList(t *testing.T) {
	svc := NewService(&scriptedSource{}, 10, nil)
	svc.Open(context.Background())
	svc.Wait()

	st := svc.State()
	assert.Equal(t, domain.FactsLoaded, st.Status)
	assert.NotNil(t, st.Facts)
	assert.Empty(t, st.Facts)
	assert.Empty(t, st.Error)
}

func TestService_PanicBecomesErrorState(t *testing.T) {
	t.Run("Initial", func(t *testing.T) {
		src := &scriptedSource{script: []*domain.Fact{fact("1"), fact("2")}, panicAt: 3}
		rec := new(MockRecorder)
		rec.On("Record", mock.MatchedBy(func(r domain.FetchRun) bool {
			return r.Outcome == domain.OutcomeError && r.Error == "connection pool exhausted"
		})).Return()

		svc := NewService(src, 10, rec)
		svc.Open(context.Background())
		svc.Wait()

		st := svc.State()
		assert.Equal(t, domain.FactsError, st.Status)
		assert.Equal(t, "Failed to load facts: connection pool exhausted", st.Error)
		assert.Empty(t, st.Facts, "no partial list on error")
		rec.AssertExpectations(t)
	})

	t.Run("Refresh", func(t *testing.T) {
		src := &scriptedSource{panicAt: 1}
		svc := NewService(src, 10, nil)
		svc.Refresh(context.Background())
		svc.Wait()

		st := svc.State()
		assert.Equal(t, domain.FactsError, st.Status)
		assert.Equal(t, "Failed to refresh facts: connection pool exhausted", st.Error)
	})
}

func TestService_RefreshShowsLoadingImmediately(t *testing.T) {
	src := &scriptedSource{script: []*domain.Fact{fact("1"), fact("2")}}
	notifier := &recordingNotifier{}
	svc := NewService(src, 2, nil)
	svc.SetNotifier(notifier)

	svc.Open(context.Background())
	svc.Wait()
	require.Len(t, svc.State().Facts, 2)

	// Hold the next sequence so the intermediate state is observable
	src.gate = make(chan struct{})
	svc.Refresh(context.Background())

	st := svc.State()
	assert.Equal(t, domain.FactsLoading, st.Status)
	assert.Empty(t, st.Facts, "stale list must not be visible mid-refresh")

	close(src.gate)
	svc.Wait()

	assert.Equal(t, domain.FactsLoaded, svc.State().Status)
	assert.Equal(t, []domain.FactsStatus{
		domain.FactsLoading, domain.FactsLoaded,
		domain.FactsLoading, domain.FactsLoaded,
	}, notifier.Statuses())
}

func TestService_RefreshRecoversFromError(t *testing.T) {
	src := &scriptedSource{panicAt: 1, script: []*domain.Fact{nil, fact("a")}}
	svc := NewService(src, 1, nil)

	svc.Open(context.Background())
	svc.Wait()
	require.Equal(t, domain.FactsError, svc.State().Status)

	svc.Refresh(context.Background())
	svc.Wait()

	st := svc.State()
	assert.Equal(t, domain.FactsLoaded, st.Status)
	require.Len(t, st.Facts, 1)
	assert.Equal(t, "a", st.Facts[0].ID)
	assert.Empty(t, st.Error)
}

func TestService_OverlappingRefreshLatestWins(t *testing.T) {
	gate := make(chan struct{})
	src := &scriptedSource{gate: gate, script: []*domain.Fact{fact("x"), fact("y"), fact("z")}}

	var mu sync.Mutex
	var outcomes []domain.RunOutcome
	rec := new(MockRecorder)
	rec.On("Record", mock.Anything).Run(func(args mock.Arguments) {
		mu.Lock()
		defer mu.Unlock()
		outcomes = append(outcomes, args.Get(0).(domain.FetchRun).Outcome)
	}).Return()

	svc := NewService(src, 1, rec)
	svc.Refresh(context.Background())
	svc.Refresh(context.Background())

	// Let the surviving sequence through; the first one was cancelled while blocked
	close(gate)
	svc.Wait()

	st := svc.State()
	assert.Equal(t, domain.FactsLoaded, st.Status)
	assert.Len(t, st.Facts, 1)

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []domain.RunOutcome{domain.OutcomeSuperseded, domain.OutcomeLoaded}, outcomes)
}

func TestService_RefreshDetachedFromCallerContext(t *testing.T) {
	src := &scriptedSource{script: []*domain.Fact{fact("1")}, gate: make(chan struct{})}
	svc := NewService(src, 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	svc.Refresh(ctx)
	cancel() // the request that triggered the refresh is gone

	close(src.gate)
	svc.Wait()

	st := svc.State()
	assert.Equal(t, domain.FactsLoaded, st.Status)
	assert.Len(t, st.Facts, 1)
}

func TestService_CloseCancelsInFlight(t *testing.T) {
	src := &scriptedSource{gate: make(chan struct{})}
	svc := NewService(src, 10, nil)
	svc.Open(context.Background())

	done := make(chan struct{})
	go func() {
		svc.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not cancel the running sequence")
	}

	assert.Equal(t, domain.FactsLoading, svc.State().Status)
	assert.False(t, svc.Open(context.Background()))
}

func TestService_StateIsACopy(t *testing.T) {
	svc := NewService(&scriptedSource{script: []*domain.Fact{fact("1")}}, 1, nil)
	svc.Open(context.Background())
	svc.Wait()

	st := svc.State()
	st.Facts[0].Text = "changed"

	assert.Equal(t, "fact 1", svc.State().Facts[0].Text)
}

func TestService_PanicWithoutMessage(t *testing.T) {
	src := &scriptedSource{panicAt: 1, panicValue: ""}
	rec := new(MockRecorder)
	rec.On("Record", mock.MatchedBy(func(r domain.FetchRun) bool {
		return r.Outcome == domain.OutcomeError && r.Error == unknownFailure
	})).Return()

	svc := NewService(src, 10, rec)
	svc.Open(context.Background())
	svc.Wait()

	st := svc.State()
	assert.Equal(t, domain.FactsError, st.Status)
	assert.Equal(t, "Failed to load facts: unknown error", st.Error)
	assert.NotNil(t, st.Facts)
	rec.AssertExpectations(t)
}

func TestService_RefreshReturnsLoadingSnapshot(t *testing.T) {
	src := &scriptedSource{script: []*domain.Fact{fact("1")}}
	svc := NewService(src, 1, nil)

	for i := 0; i < 50; i++ {
		st := svc.Refresh(context.Background())
		assert.Equal(t, domain.FactsLoading, st.Status)
		assert.Empty(t, st.Facts)
		svc.Wait()
	}

	svc.Close()
	st := svc.Refresh(context.Background())
	assert.Equal(t, domain.FactsLoaded, st.Status, "closed service reports its current state")
}

func TestService_ResetDiscardsList(t *testing.T) {
	src := &scriptedSource{}
	notifier := &recordingNotifier{}
	svc := NewService(src, 10, nil)
	svc.SetNotifier(notifier)

	require.True(t, svc.Open(context.Background()))
	svc.Wait()
	require.Equal(t, domain.FactsLoaded, svc.State().Status)

	svc.Reset()
	assert.Equal(t, domain.FactsLoading, svc.State().Status)

	require.True(t, svc.Open(context.Background()), "open after reset loads again")
	svc.Wait()
	assert.Equal(t, 20, src.Calls())
	assert.Equal(t, []domain.FactsStatus{
		domain.FactsLoading, domain.FactsLoaded,
		domain.FactsLoading,
		domain.FactsLoading, domain.FactsLoaded,
	}, notifier.Statuses())
}

func TestService_ResetCancelsSequenceInFlight(t *testing.T) {
	src := &scriptedSource{script: []*domain.Fact{fact("1")}, gate: make(chan struct{})}
	rec := new(MockRecorder)
	rec.On("Record", mock.MatchedBy(func(r domain.FetchRun) bool {
		return r.Outcome == domain.OutcomeSuperseded
	})).Return()

	svc := NewService(src, 10, rec)
	svc.Open(context.Background())
	svc.Reset()
	close(src.gate)
	svc.Wait()

	st := svc.State()
	assert.Equal(t, domain.FactsLoading, st.Status, "a discarded sequence never writes state")
	assert.Empty(t, st.Facts)
	rec.AssertExpectations(t)
}
