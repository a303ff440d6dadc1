package storage

import (
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/san-kum/swarmsim/internal/metrics"
)

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	run, err := st.Create("flocking")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if run.ID == "" {
		t.Error("expected non-empty run id")
	}

	if err := run.AppendStats([]metrics.FrameStats{{Frame: 0, Live: 10, MeanSpeed: 1.5}}); err != nil {
		t.Fatal(err)
	}
	if err := run.AppendStats([]metrics.FrameStats{{Frame: 10, Live: 9}, {Frame: 20, Live: 8, Pooled: 2}}); err != nil {
		t.Fatal(err)
	}
	w, err := run.Frames()
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprintln(w, `{"frame":0}`)

	meta := RunMetadata{
		Name:      "flocking",
		Timestamp: time.Now(),
		Seed:      42,
		Frames:    21,
		Metrics:   map[string]float64{"mean_speed": 1.5},
	}
	if err := run.Close(meta); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	got, err := st.Load(run.ID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.ID != run.ID || got.Seed != 42 || got.Metrics["mean_speed"] != 1.5 {
		t.Errorf("unexpected metadata %+v", got)
	}

	rows, err := st.LoadStats(run.ID)
	if err != nil {
		t.Fatalf("load stats failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows with a single header, got %d", len(rows))
	}
	if rows[0].MeanSpeed != 1.5 || rows[2].Pooled != 2 {
		t.Errorf("unexpected rows %+v", rows)
	}

	f, err := st.OpenFrames(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	data, _ := io.ReadAll(f)
	if string(data) != "{\"frame\":0}\n" {
		t.Errorf("unexpected frames %q", data)
	}
}

func TestRunClosed(t *testing.T) {
	st := New(t.TempDir())
	run, err := st.Create("x")
	if err != nil {
		t.Fatal(err)
	}
	if err := run.Close(RunMetadata{}); err != nil {
		t.Fatal(err)
	}
	if err := run.Close(RunMetadata{}); !errors.Is(err, ErrRunClosed) {
		t.Errorf("expected ErrRunClosed, got %v", err)
	}
	if err := run.AppendStats([]metrics.FrameStats{{}}); !errors.Is(err, ErrRunClosed) {
		t.Errorf("expected ErrRunClosed, got %v", err)
	}
	if _, err := st.LoadStats(run.ID); err == nil {
		t.Error("expected missing stats error")
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())

	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	base := time.Now()
	for i := 0; i < 3; i++ {
		run, err := st.Create("walkers")
		if err != nil {
			t.Fatal(err)
		}
		if err := run.Close(RunMetadata{Name: "walkers", Timestamp: base.Add(time.Duration(-i) * time.Minute)}); err != nil {
			t.Fatal(err)
		}
	}

	runs, err = st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if !runs[0].Timestamp.Before(runs[2].Timestamp) {
		t.Error("expected runs oldest first")
	}
}
