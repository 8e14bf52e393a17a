package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/depeele/summarization/internal/library"
)

// Loader brings a document into the library.
type Loader interface {
	Load(ctx context.Context, url string, refresh, forceRank bool) (*library.Entry, error)
}

// Worker processes a single prefetch job.
type Worker struct {
	loader        Loader
	log           *slog.Logger
	maxConcurrent int
}

func NewWorker(loader Loader, log *slog.Logger, maxConcurrent int) *Worker {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Worker{loader: loader, log: log, maxConcurrent: maxConcurrent}
}

type loadResult struct {
	url       string
	sentences int
	err       error
}

// Process loads every URL of the job, at most maxConcurrent at a time.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)
	job.SetStatus(StatusLoading, "loading")

	sem := make(chan struct{}, w.maxConcurrent)
	results := make(chan loadResult, len(job.URLs))

	for _, u := range job.URLs {
		sem <- struct{}{}
		go func(u string) {
			defer func() { <-sem }()
			e, err := w.loader.Load(ctx, u, job.Refresh, false)
			r := loadResult{url: u, err: err}
			if err == nil {
				r.sentences = len(e.Doc.Sentences())
			}
			results <- r
		}(u)
	}

	loaded, failed := 0, 0
	for range job.URLs {
		r := <-results
		if r.err != nil {
			log.Warn("prefetch failed", "url", r.url, "error", r.err)
			job.RecordFailed(fmt.Sprintf("%s: %s", r.url, r.err))
			failed++
			continue
		}
		job.RecordLoaded()
		loaded++
		log.Debug("prefetched", "url", r.url, "sentences", r.sentences)
	}

	switch {
	case failed == 0:
		job.SetStatus(StatusCompleted, "done")
	case loaded == 0:
		job.SetStatus(StatusFailed, "loading")
	default:
		job.SetStatus(StatusPartial, "done")
	}
	log.Info("prefetch complete", "loaded", loaded, "failed", failed)
}
