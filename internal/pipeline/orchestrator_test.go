package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/depeele/summarization/internal/doctree"
	"github.com/depeele/summarization/internal/library"
	"github.com/depeele/summarization/internal/segment"
)

type stubLoader struct {
	mu     sync.Mutex
	loaded []string
	fail   map[string]bool
}

func (l *stubLoader) Load(_ context.Context, url string, _, _ bool) (*library.Entry, error) {
	if l.fail[url] {
		return nil, errors.New("boom")
	}
	l.mu.Lock()
	l.loaded = append(l.loaded, url)
	l.mu.Unlock()
	doc := &doctree.Document{URL: url, Sections: []*doctree.Section{{
		Paragraphs: []*doctree.Paragraph{segment.Paragraph("One. Two.")},
	}}}
	doctree.AssignIDs(doc)
	return library.NewEntry(doc, ""), nil
}

func testLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWorker_Process(t *testing.T) {
	tests := []struct {
		name string
		fail map[string]bool
		want JobStatus
	}{
		{"all loaded", nil, StatusCompleted},
		{"some failed", map[string]bool{"b": true}, StatusPartial},
		{"all failed", map[string]bool{"a": true, "b": true, "c": true}, StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &Job{ID: "j", URLs: []string{"a", "b", "c"}, Progress: Progress{Total: 3}}
			w := NewWorker(&stubLoader{fail: tt.fail}, testLog(), 2)
			w.Process(context.Background(), job)

			snap := job.Snapshot()
			if snap.Status != tt.want {
				t.Errorf("expected status %q, got %q", tt.want, snap.Status)
			}
			if snap.Progress.Loaded+snap.Progress.Failed != 3 {
				t.Errorf("expected every url accounted for, got %+v", snap.Progress)
			}
			if snap.Progress.Failed != len(tt.fail) {
				t.Errorf("expected %d failures, got %d", len(tt.fail), snap.Progress.Failed)
			}
		})
	}
}

func TestOrchestrator_SubmitAndComplete(t *testing.T) {
	loader := &stubLoader{}
	o := NewOrchestrator(Config{Workers: 2, QueueSize: 4, MaxConcurrentLoads: 2, JobTTL: time.Hour}, loader, testLog())
	o.Start(context.Background())
	defer o.Stop()

	snap, err := o.Submit([]string{"https://example.com/a", "https://example.com/b"}, false)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if snap.ID == "" || snap.Progress.Total != 2 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		got, ok := o.GetJob(snap.ID)
		if !ok {
			t.Fatal("job disappeared")
		}
		if got.Status == StatusCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job did not complete, last status %q", got.Status)
		}
		time.Sleep(5 * time.Millisecond)
	}

	loader.mu.Lock()
	defer loader.mu.Unlock()
	if len(loader.loaded) != 2 {
		t.Errorf("expected 2 loads, got %v", loader.loaded)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	o := NewOrchestrator(Config{Workers: 1, QueueSize: 1, JobTTL: time.Hour}, &stubLoader{}, testLog())

	if _, err := o.Submit([]string{"a"}, false); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	snap, err := o.Submit([]string{"b"}, false)
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if snap.Status != StatusFailed {
		t.Errorf("expected rejected job to be failed, got %q", snap.Status)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}
}

func TestOrchestrator_GetUnknownJob(t *testing.T) {
	o := NewOrchestrator(Config{}, &stubLoader{}, testLog())
	if _, ok := o.GetJob("missing"); ok {
		t.Error("expected unknown job to be absent")
	}
}
