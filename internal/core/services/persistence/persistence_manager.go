package persistence

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lcalzada-xor/factmap/internal/core/domain"
	"github.com/lcalzada-xor/factmap/internal/core/ports"
)

// PersistenceManager handles background batch writing of fetch runs to storage.
type PersistenceManager struct {
	storage     ports.RunRepository
	persistChan chan domain.FetchRun
	batchSize   int
	interval    time.Duration
	enabled     bool
	mu          sync.RWMutex
	done        chan struct{}
}

// NewPersistenceManager creates a new manager.
func NewPersistenceManager(storage ports.RunRepository, bufferSize int) *PersistenceManager {
	return &PersistenceManager{
		storage:     storage,
		persistChan: make(chan domain.FetchRun, bufferSize),
		batchSize:   50,
		interval:    5 * time.Second,
		enabled:     true, // Enabled by default
		done:        make(chan struct{}),
	}
}

// Record queues a run for persistence if enabled.
// It never blocks the fetch sequence: when the queue is full the run is dropped.
func (p *PersistenceManager) Record(run domain.FetchRun) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.enabled {
		return
	}
	select {
	case p.persistChan <- run:
	default:
		log.Printf("persistence: queue full, dropping run %s", run.ID)
	}
}

// IsEnabled returns the current persistence status.
func (p *PersistenceManager) IsEnabled() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.enabled
}

// SetEnabled toggles the persistence logic.
func (p *PersistenceManager) SetEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = enabled
}

// Start begins the persistence loop. The buffer is flushed when ctx ends.
func (p *PersistenceManager) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	buffer := make([]domain.FetchRun, 0, p.batchSize)

	go func() {
		defer close(p.done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				p.flushBuffer(p.drain(buffer))
				return
			case run := <-p.persistChan:
				buffer = append(buffer, run)
				if len(buffer) >= p.batchSize {
					p.flushBuffer(buffer)
					buffer = buffer[:0]
				}
			case <-ticker.C:
				if len(buffer) > 0 {
					p.flushBuffer(buffer)
					buffer = buffer[:0]
				}
			}
		}
	}()
}

// drain appends whatever is still queued.
func (p *PersistenceManager) drain(buffer []domain.FetchRun) []domain.FetchRun {
	for {
		select {
		case run := <-p.persistChan:
			buffer = append(buffer, run)
		default:
			return buffer
		}
	}
}

// Done is closed once the loop has exited and flushed.
func (p *PersistenceManager) Done() <-chan struct{} {
	return p.done
}

func (p *PersistenceManager) flushBuffer(buffer []domain.FetchRun) {
	if len(buffer) == 0 || p.storage == nil {
		return
	}
	// Shutdown flushes run after the loop context is gone
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.storage.SaveRunsBatch(ctx, buffer); err != nil {
		log.Printf("[DB-ERR] Failed to batch save runs: %v", err)
	}
}

var _ ports.RunRecorder = (*PersistenceManager)(nil)
