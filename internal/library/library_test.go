package library

import (
	"context"
	"testing"
	"time"

	"github.com/depeele/summarization/internal/doctree"
	"github.com/depeele/summarization/internal/rank"
	"github.com/depeele/summarization/internal/segment"
)

func testDoc(url string) *doctree.Document {
	para := segment.Paragraph("Alpha one. Beta two. Gamma three.")
	doc := &doctree.Document{URL: url, Sections: []*doctree.Section{{Paragraphs: []*doctree.Paragraph{para}}}}
	doctree.AssignIDs(doc)
	para.Sentences[0].Rank = doctree.NewRank(0.9)
	para.Sentences[2].Rank = doctree.NewRank(0.2)
	return doc
}

func TestContentHashHex_Consistency(t *testing.T) {
	h := ContentHashHex([]byte("hello world"))
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestNewEntry_BuildsViews(t *testing.T) {
	e := NewEntry(testDoc("https://example.com/a"), "")
	if e.Stream.Len() == 0 {
		t.Fatal("expected tokens in stream")
	}
	if e.Table.Ranked() != 2 {
		t.Errorf("expected 2 ranked sentences, got %d", e.Table.Ranked())
	}
	th := e.Table.Threshold(1)
	if th != (rank.Threshold{Bucket: 20, Found: true}) {
		t.Errorf("expected threshold 20, got %+v", th)
	}
}

func TestLibrary_PutGetDelete(t *testing.T) {
	lib := New(time.Hour)
	if changed := lib.Put(NewEntry(testDoc("https://example.com/a"), "h1")); !changed {
		t.Error("first put should report a change")
	}
	if changed := lib.Put(NewEntry(testDoc("https://example.com/a"), "h1")); changed {
		t.Error("same content should not report a change")
	}
	if changed := lib.Put(NewEntry(testDoc("https://example.com/a"), "h2")); !changed {
		t.Error("new content should report a change")
	}

	if _, ok := lib.Get("https://example.com/a#frag"); !ok {
		t.Error("lookup should ignore the fragment")
	}
	if got := lib.URLs(); len(got) != 1 || got[0] != "https://example.com/a" {
		t.Errorf("unexpected urls %v", got)
	}
	if !lib.Delete("https://example.com/a") || lib.Delete("https://example.com/a") {
		t.Error("expected delete to succeed once")
	}
}

func TestLibrary_Cleanup(t *testing.T) {
	lib := New(time.Minute)
	old := NewEntry(testDoc("https://example.com/old"), "")
	old.LoadedAt = time.Now().Add(-2 * time.Minute)
	lib.Put(old)
	lib.Put(NewEntry(testDoc("https://example.com/new"), ""))

	if n := lib.Cleanup(); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if _, ok := lib.Get("https://example.com/old"); ok {
		t.Error("expired entry should be gone")
	}
}

func TestLibrary_StartStop(t *testing.T) {
	lib := New(time.Nanosecond)
	lib.Put(NewEntry(testDoc("https://example.com/a"), ""))
	lib.Start(context.Background(), time.Millisecond)
	deadline := time.Now().Add(time.Second)
	for len(lib.URLs()) > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	lib.Stop()
	if len(lib.URLs()) != 0 {
		t.Error("expected background cleanup to evict the entry")
	}
}
