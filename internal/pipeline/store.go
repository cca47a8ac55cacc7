package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// RunRecord is the summary written once a run finishes.
type RunRecord struct {
	RunID          string             `json:"run_id"`
	Request        GameRequest        `json:"request"`
	State          State              `json:"state"`
	Success        bool               `json:"success"`
	Ready          bool               `json:"ready_for_publication"`
	Error          string             `json:"error,omitempty"`
	FailedStage    State              `json:"failed_stage,omitempty"`
	ExecutionTime  float64            `json:"execution_time"`            // seconds
	StageDurations map[string]float64 `json:"stage_durations,omitempty"` // seconds
	GateFailures   []string           `json:"gate_failures,omitempty"`
	CreatedAt      string             `json:"created_at"`
}

// Store writes the artifacts of finished runs to disk, one directory per
// run. It is an export target only; runs never read it back.
type Store struct {
	baseDir string
}

// NewStore creates a Store rooted at baseDir.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// BaseDir returns the store's root directory.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// RunDir returns the directory holding a run's artifacts.
func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

// SaveContext writes every key present in the context as <key>.json.
func (s *Store) SaveContext(pc *Context) error {
	dir := s.RunDir(pc.RunID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	if err := WriteJSON(filepath.Join(dir, "request.json"), pc.Request); err != nil {
		return fmt.Errorf("write request.json: %w", err)
	}
	for _, k := range pc.Written() {
		v, _ := pc.Get(k)
		if err := WriteJSON(filepath.Join(dir, string(k)+".json"), v); err != nil {
			return fmt.Errorf("write %s.json: %w", k, err)
		}
	}
	return nil
}

// SaveRecord writes the run summary.
func (s *Store) SaveRecord(rec *RunRecord) error {
	if rec.CreatedAt == "" {
		rec.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	return WriteJSON(filepath.Join(s.RunDir(rec.RunID), "run.json"), rec)
}

// SaveText writes a named text artifact such as the answer key.
func (s *Store) SaveText(runID, name, text string) error {
	return WriteAtomic(filepath.Join(s.RunDir(runID), name), []byte(text))
}

// GetRecord reads the summary of a run.
func (s *Store) GetRecord(runID string) (*RunRecord, error) {
	var rec RunRecord
	if err := ReadJSON(filepath.Join(s.RunDir(runID), "run.json"), &rec); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("run %s not found", runID)
		}
		return nil, err
	}
	return &rec, nil
}

// List returns every recorded run, oldest first.
func (s *Store) List() ([]RunRecord, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir %s: %w", s.baseDir, err)
	}

	var runs []RunRecord
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		rec, err := s.GetRecord(entry.Name())
		if err != nil {
			continue // skip incomplete runs
		}
		runs = append(runs, *rec)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAt == runs[j].CreatedAt {
			return runs[i].RunID < runs[j].RunID
		}
		return runs[i].CreatedAt < runs[j].CreatedAt
	})
	return runs, nil
}
