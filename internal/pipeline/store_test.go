package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/lucasnoah/puzzlefactory/internal/words"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir())
}

func TestSaveContextWritesWrittenKeys(t *testing.T) {
	s := newTestStore(t)
	pc := NewContext("run-1", FromText("fruit game"))
	if err := pc.Set(KeyBrainstorm, &Concept{Theme: "fruits", Words: []string{"kiwi"}}); err != nil {
		t.Fatal(err)
	}

	if err := s.SaveContext(pc); err != nil {
		t.Fatalf("SaveContext: %v", err)
	}

	var c Concept
	if err := ReadJSON(filepath.Join(s.RunDir("run-1"), "brainstorm_result.json"), &c); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if c.Theme != "fruits" {
		t.Errorf("Theme = %q, want %q", c.Theme, "fruits")
	}

	var req GameRequest
	if err := ReadJSON(filepath.Join(s.RunDir("run-1"), "request.json"), &req); err != nil {
		t.Fatalf("ReadJSON request: %v", err)
	}
	if req.Difficulty != words.Medium || req.WordCount != DefaultWordCount {
		t.Errorf("request = %+v, want defaults", req)
	}

	if _, err := os.Stat(filepath.Join(s.RunDir("run-1"), "picked_words.json")); !os.IsNotExist(err) {
		t.Errorf("picked_words.json should not exist, stat err = %v", err)
	}
}

func TestSaveAndGetRecord(t *testing.T) {
	s := newTestStore(t)
	rec := &RunRecord{RunID: "run-7", State: StateDone, Success: true, Ready: true}
	if err := s.SaveRecord(rec); err != nil {
		t.Fatalf("SaveRecord: %v", err)
	}
	if rec.CreatedAt == "" {
		t.Error("CreatedAt should be stamped")
	}

	got, err := s.GetRecord("run-7")
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if got.State != StateDone || !got.Ready {
		t.Errorf("record = %+v", got)
	}
}

func TestGetRecordNotFound(t *testing.T) {
	_, err := newTestStore(t).GetRecord("missing")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestListSkipsIncompleteRuns(t *testing.T) {
	s := newTestStore(t)
	for _, id := range []string{"b", "a"} {
		if err := s.SaveRecord(&RunRecord{RunID: id, CreatedAt: "2026-01-01T00:00:00Z"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(s.RunDir("partial"), 0o755); err != nil {
		t.Fatal(err)
	}

	runs, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("len(runs) = %d, want 2", len(runs))
	}
	if runs[0].RunID != "a" || runs[1].RunID != "b" {
		t.Errorf("order = %s,%s, want a,b", runs[0].RunID, runs[1].RunID)
	}
}

func TestListMissingBaseDir(t *testing.T) {
	runs, err := NewStore(filepath.Join(t.TempDir(), "nope")).List()
	if err != nil || runs != nil {
		t.Errorf("List() = %v, %v; want nil, nil", runs, err)
	}
}

func TestSaveText(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveText("r", "answer_key.txt", "ANSWER KEY"); err != nil {
		t.Fatalf("SaveText: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(s.RunDir("r"), "answer_key.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ANSWER KEY" {
		t.Errorf("content = %q", data)
	}
}

func TestWriteAtomicConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := WriteJSON(path, map[string]int{"n": 1}); err != nil {
				t.Errorf("WriteJSON: %v", err)
			}
		}()
	}
	wg.Wait()

	var got map[string]int
	if err := ReadJSON(path, &got); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got["n"] != 1 {
		t.Errorf("n = %d, want 1", got["n"])
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".artifact-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}
