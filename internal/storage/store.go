// Package storage keeps completed runs on disk: metadata.json, a stats.csv
// table and, when recording was enabled, frames.jsonl.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/swarmsim/internal/metrics"
)

const (
	metadataFile = "metadata.json"
	statsFile    = "stats.csv"
	framesFile   = "frames.jsonl"
)

var ErrRunClosed = errors.New("storage: run closed")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Frames    int                `json:"frames"`
	Worlds    int                `json:"worlds"`
	Live      int                `json:"live"`
	Pooled    int                `json:"pooled"`
	Fallbacks int                `json:"fallbacks"`
	Recorded  int                `json:"recorded_frames"`
	Elapsed   time.Duration      `json:"elapsed_ns"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Run is an open run directory.
type Run struct {
	ID  string
	Dir string

	stats       *os.File
	wroteHeader bool
	frames      *os.File
	closed      bool
}

// Create opens a new run directory named after name and the current time.
func (s *Store) Create(name string) (*Run, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	base := fmt.Sprintf("%s_%d", name, time.Now().Unix())
	id := base
	for i := 1; ; i++ {
		err := os.Mkdir(filepath.Join(s.baseDir, id), 0755)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return nil, err
		}
		id = fmt.Sprintf("%s-%d", base, i)
	}
	return &Run{ID: id, Dir: filepath.Join(s.baseDir, id)}, nil
}

// Frames returns the writer for recorded frames, creating the file on
// first use.
func (r *Run) Frames() (io.Writer, error) {
	if r.closed {
		return nil, ErrRunClosed
	}
	if r.frames == nil {
		f, err := os.Create(filepath.Join(r.Dir, framesFile))
		if err != nil {
			return nil, err
		}
		r.frames = f
	}
	return r.frames, nil
}

// AppendStats writes rows to stats.csv. The header is written once.
func (r *Run) AppendStats(rows []metrics.FrameStats) error {
	if r.closed {
		return ErrRunClosed
	}
	if len(rows) == 0 {
		return nil
	}
	if r.stats == nil {
		f, err := os.Create(filepath.Join(r.Dir, statsFile))
		if err != nil {
			return err
		}
		r.stats = f
	}
	if !r.wroteHeader {
		if err := gocsv.Marshal(rows, r.stats); err != nil {
			return fmt.Errorf("storage: write stats: %w", err)
		}
		r.wroteHeader = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(rows, r.stats); err != nil {
		return fmt.Errorf("storage: write stats: %w", err)
	}
	return nil
}

// Close writes metadata.json and closes every open file.
func (r *Run) Close(meta RunMetadata) error {
	if r.closed {
		return ErrRunClosed
	}
	r.closed = true
	meta.ID = r.ID

	var errs []error
	if r.stats != nil {
		errs = append(errs, r.stats.Close())
	}
	if r.frames != nil {
		errs = append(errs, r.frames.Close())
	}

	f, err := os.Create(filepath.Join(r.Dir, metadataFile))
	if err != nil {
		errs = append(errs, err)
		return errors.Join(errs...)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	errs = append(errs, enc.Encode(meta), f.Close())
	return errors.Join(errs...)
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadStats(runID string) ([]metrics.FrameStats, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, statsFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows := make([]metrics.FrameStats, 0)
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("storage: read stats: %w", err)
	}
	return rows, nil
}

// OpenFrames opens the recorded frames of a run for reading.
func (s *Store) OpenFrames(runID string) (*os.File, error) {
	return os.Open(filepath.Join(s.baseDir, runID, framesFile))
}
