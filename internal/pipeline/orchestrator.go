// Package pipeline loads batches of documents into the library in the
// background, so a reader's next pages are ready before they are opened.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrQueueFull = errors.New("prefetch queue is full")

// Config sizes the worker pool.
type Config struct {
	Workers            int
	QueueSize          int
	MaxConcurrentLoads int
	JobTTL             time.Duration
}

// Orchestrator manages the prefetch worker pool.
type Orchestrator struct {
	jobs   *JobStore
	queue  chan *Job
	loader Loader
	log    *slog.Logger
	cfg    Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOrchestrator(cfg Config, loader Loader, log *slog.Logger) *Orchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	return &Orchestrator{
		jobs:   NewJobStore(cfg.JobTTL),
		queue:  make(chan *Job, cfg.QueueSize),
		loader: loader,
		log:    log,
		cfg:    cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.Workers {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.loader, o.log, o.cfg.MaxConcurrentLoads)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop shuts the pool down. Submit must not be called afterwards.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues urls for loading.
func (o *Orchestrator) Submit(urls []string, refresh bool) (JobSnapshot, error) {
	now := time.Now()
	job := &Job{
		ID:        uuid.Must(uuid.NewV7()).String(),
		URLs:      urls,
		Refresh:   refresh,
		Status:    StatusQueued,
		Phase:     "queued",
		Progress:  Progress{Total: len(urls)},
		CreatedAt: now,
		UpdatedAt: now,
	}
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return job.Snapshot(), nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return job.Snapshot(), fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.QueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) (JobSnapshot, bool) {
	job := o.jobs.Get(id)
	if job == nil {
		return JobSnapshot{}, false
	}
	return job.Snapshot(), true
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
