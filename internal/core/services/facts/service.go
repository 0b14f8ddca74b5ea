package facts

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/factmap/internal/core/domain"
	"github.com/lcalzada-xor/factmap/internal/core/ports"
	"github.com/lcalzada-xor/factmap/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultCount is how many facts one sequence asks for.
const DefaultCount = 10

// unknownFailure stands in for a recovered panic that carried no message.
const unknownFailure = "unknown error"

// Service owns the facts screen state.
//
// Every Open or Refresh starts a new fetch sequence on its own goroutine.
// A refresh cancels the sequence in flight; only the newest sequence may
// write the visible state, so overlapping refreshes cannot interleave.
type Service struct {
	source   ports.FactSource
	recorder ports.RunRecorder
	count    int

	mu         sync.Mutex
	notifier   ports.StateNotifier
	state      domain.FactsState
	generation uint64
	cancel     context.CancelFunc
	started    bool
	closed     bool

	wg sync.WaitGroup
}

// NewService creates the facts screen. recorder may be nil.
func NewService(source ports.FactSource, count int, recorder ports.RunRecorder) *Service {
	if count <= 0 {
		count = DefaultCount
	}
	return &Service{
		source:   source,
		recorder: recorder,
		count:    count,
		state:    domain.NewLoadingState(),
	}
}

// SetNotifier registers the receiver of state changes.
func (s *Service) SetNotifier(n ports.StateNotifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = n
}

// State returns a copy of the current screen state.
func (s *Service) State() domain.FactsState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Open runs the initial load the first time the screen is shown after
// construction or Reset. It reports whether a sequence was started.
func (s *Service) Open(ctx context.Context) bool {
	_, ok := s.start(ctx, domain.TriggerInitial)
	return ok
}

// Refresh cancels any sequence in flight and starts a new one.
// It returns the Loading state it installed, or the current state once closed.
func (s *Service) Refresh(ctx context.Context) domain.FactsState {
	st, _ := s.start(ctx, domain.TriggerRefresh)
	return st
}

// Reset discards the screen: the sequence in flight is cancelled and the
// list dropped, so the next Open loads from scratch.
func (s *Service) Reset() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.generation++
	s.started = false
	s.state = domain.NewLoadingState()
	snapshot := s.state.Clone()
	notifier := s.notifier
	s.mu.Unlock()

	if notifier != nil {
		notifier.NotifyFacts(snapshot)
	}
}

// Wait blocks until no sequence is running.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Close cancels the sequence in flight and waits for it to exit.
func (s *Service) Close() {
	s.mu.Lock()
	s.closed = true
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Service) start(ctx context.Context, trigger domain.FetchTrigger) (domain.FactsState, bool) {
	s.mu.Lock()
	if s.closed || (trigger == domain.TriggerInitial && s.started) {
		st := s.state.Clone()
		s.mu.Unlock()
		return st, false
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation

	// Detach from the caller's cancellation (usually an HTTP request) but keep its values.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.started = true
	s.state = domain.NewLoadingState()
	snapshot := s.state.Clone()
	notifier := s.notifier
	s.wg.Add(1)
	s.mu.Unlock()

	if notifier != nil {
		notifier.NotifyFacts(snapshot)
	}

	go s.run(runCtx, cancel, gen, trigger)
	return snapshot.Clone(), true
}

func (s *Service) run(ctx context.Context, cancel context.CancelFunc, gen uint64, trigger domain.FetchTrigger) {
	defer s.wg.Done()
	defer cancel()

	ctx, span := otel.Tracer("factmap/facts").Start(ctx, "FetchSequence")
	defer span.End()

	run := domain.FetchRun{
		ID:        uuid.NewString(),
		Trigger:   trigger,
		StartedAt: time.Now().UTC(),
	}

	var (
		list      []domain.Fact
		failure   string
		recovered bool
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				recovered = true
				failure = fmt.Sprint(r)
				if failure == "" {
					failure = unknownFailure
				}
				log.Printf("facts: sequence %s aborted: %s", run.ID, failure)
			}
		}()
		list, run.Attempts = BuildList(ctx, s.source, s.count)
	}()

	run.FinishedAt = time.Now().UTC()
	run.Succeeded = len(list)

	next := domain.FactsState{UpdatedAt: run.FinishedAt}
	if recovered {
		next.Status = domain.FactsError
		next.Facts = []domain.Fact{}
		next.Error = errorMessage(trigger, failure)
		run.Outcome = domain.OutcomeError
		run.Error = failure
	} else {
		next.Status = domain.FactsLoaded
		next.Facts = list
		run.Outcome = domain.OutcomeLoaded
	}

	s.mu.Lock()
	current := gen == s.generation && !s.closed
	var notifier ports.StateNotifier
	if current {
		s.state = next
		s.cancel = nil
		notifier = s.notifier
	} else {
		run.Outcome = domain.OutcomeSuperseded
	}
	s.mu.Unlock()

	span.SetAttributes(
		attribute.String("facts.trigger", string(trigger)),
		attribute.String("facts.outcome", string(run.Outcome)),
		attribute.Int("facts.succeeded", run.Succeeded),
	)
	telemetry.FetchSequences.WithLabelValues(string(trigger), string(run.Outcome)).Inc()
	if run.Outcome == domain.OutcomeLoaded {
		telemetry.FactsPerSequence.Observe(float64(run.Succeeded))
	}

	if notifier != nil {
		notifier.NotifyFacts(next.Clone())
	}
	if s.recorder != nil {
		s.recorder.Record(run)
	}
}

// BuildList calls source n times in order and keeps the facts that arrived.
// It stops early only when ctx is cancelled. attempts is the number of calls made.
func BuildList(ctx context.Context, source ports.FactSource, n int) (list []domain.Fact, attempts int) {
	list = make([]domain.Fact, 0, n)
	for attempts < n {
		if ctx.Err() != nil {
			break
		}
		attempts++
		if fact, ok := source.RandomFact(ctx); ok {
			list = append(list, fact)
		}
	}
	return list, attempts
}

func errorMessage(trigger domain.FetchTrigger, reason string) string {
	if trigger == domain.TriggerRefresh {
		return "Failed to refresh facts: " + reason
	}
	return "Failed to load facts: " + reason
}

var _ ports.FactsService = (*Service)(nil)
