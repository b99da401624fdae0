// Package history keeps one JSON line per finished practice run.
package history

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"strum-trainer/config"
	"strum-trainer/debug"
	"strum-trainer/evaluate"
)

const fileName = "history.jsonl"

type Record struct {
	ID           string    `json:"id"`
	Pattern      string    `json:"pattern"`
	BPM          int       `json:"bpm"`
	Started      time.Time `json:"started"`
	Ended        time.Time `json:"ended"`
	Steps        int       `json:"steps"`
	Hits         int       `json:"hits"`
	Misses       int       `json:"misses"`
	MeanDevMs    float64   `json:"meanDevMs"`
	MeanAbsDevMs float64   `json:"meanAbsDevMs"`
	Verdict      string    `json:"verdict"`
}

// NewRecord stamps a summary with a fresh id
func NewRecord(patternID string, bpm int, started, ended time.Time, s evaluate.Summary) Record {
	return Record{
		ID:           uuid.New().String(),
		Pattern:      patternID,
		BPM:          bpm,
		Started:      started,
		Ended:        ended,
		Steps:        s.Steps,
		Hits:         s.Hits,
		Misses:       s.Misses,
		MeanDevMs:    s.MeanDevMs,
		MeanAbsDevMs: s.MeanAbsDevMs,
		Verdict:      s.Verdict.String(),
	}
}

// Path returns ~/.config/strum-trainer/history.jsonl
func Path() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Append writes r as one line at the end of path
func Append(path string, r Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(r); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// Load reads every record in path. A missing file is an empty history.
func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read decodes JSON lines, skipping lines that do not parse
func Read(r io.Reader) ([]Record, error) {
	var out []Record
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			debug.Log("history", "line %d: %v", line, err)
			continue
		}
		out = append(out, rec)
	}
	return out, scanner.Err()
}

// Best returns the record with the lowest mean absolute deviation per
// pattern. Runs without any scored step are ignored.
func Best(records []Record) map[string]Record {
	best := map[string]Record{}
	for _, r := range records {
		if r.Hits == 0 {
			continue
		}
		if cur, ok := best[r.Pattern]; !ok || r.MeanAbsDevMs < cur.MeanAbsDevMs {
			best[r.Pattern] = r
		}
	}
	return best
}
