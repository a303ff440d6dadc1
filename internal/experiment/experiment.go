// Package experiment runs a configured scene headless and persists the
// results.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/swarmsim/internal/config"
	"github.com/san-kum/swarmsim/internal/metrics"
	"github.com/san-kum/swarmsim/internal/record"
	"github.com/san-kum/swarmsim/internal/scene"
	"github.com/san-kum/swarmsim/internal/sim"
	"github.com/san-kum/swarmsim/internal/storage"
)

var ErrNotSetup = errors.New("experiment: not set up")

type Result struct {
	ID   string
	Meta storage.RunMetadata
	Rows []metrics.FrameStats
}

type Experiment struct {
	cfg *config.Config
	log *zap.Logger

	scene     *scene.Scene
	collector *metrics.Collector
	recorder  *record.Recorder
	run       *storage.Run
}

func New(cfg *config.Config, log *zap.Logger) *Experiment {
	if log == nil {
		log = zap.NewNop()
	}
	return &Experiment{cfg: cfg, log: log}
}

// Setup builds the scene and attaches stats collection. With a store, a
// run directory is opened and recorded frames stream into it.
func (e *Experiment) Setup(st *storage.Store) error {
	if e.cfg.Frames <= 0 {
		return fmt.Errorf("%w: a headless run needs a positive frame count", config.ErrInvalid)
	}
	sc, err := scene.Build(e.cfg, e.log)
	if err != nil {
		return err
	}
	e.scene = sc

	every := e.cfg.StatsEvery
	if every == 0 {
		every = config.DefaultStatsEvery
	}
	e.collector = metrics.NewCollector(every, metrics.DefaultMetrics()...)
	sc.Sim.AddObserver(e.collector)

	if st != nil {
		run, err := st.Create(e.cfg.Name)
		if err != nil {
			return err
		}
		e.run = run
	}

	rc := e.cfg.Record
	if rc.Enabled {
		if e.run == nil {
			return fmt.Errorf("experiment: recording needs a store")
		}
		w, err := e.run.Frames()
		if err != nil {
			return e.discard(err)
		}
		e.recorder, err = record.New(w, record.Options{
			Start:       rc.Start,
			End:         rc.End,
			Precision:   rc.Precision,
			ItemFields:  rc.ItemFields,
			WorldFields: rc.WorldFields,
			Logger:      e.log,
			OnComplete: func(n int) error {
				e.log.Info("recorded frames written", zap.Int("frames", n), zap.String("run", e.run.ID))
				return nil
			},
		})
		if err != nil {
			return e.discard(err)
		}
		sc.Sim.AddObserver(e.recorder)
	}
	return nil
}

// discard closes a run whose setup failed so none of its files stay open.
func (e *Experiment) discard(err error) error {
	if e.run == nil {
		return err
	}
	cerr := e.run.Close(storage.RunMetadata{
		Name:      e.cfg.Name,
		Timestamp: time.Now(),
		Seed:      e.cfg.Seed,
	})
	e.run = nil
	return errors.Join(err, cerr)
}

// Sim exposes the built simulation, for attaching renderers or pointers.
func (e *Experiment) Sim() *sim.Simulation {
	if e.scene == nil {
		return nil
	}
	return e.scene.Sim
}

// Run steps until the configured frame count or ctx is canceled. A
// canceled run is still saved with the frames it completed.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.scene == nil {
		return nil, ErrNotSetup
	}
	s := e.scene.Sim

	start := time.Now()
	n, runErr := s.Run(ctx, -1)
	elapsed := time.Since(start)

	meta := storage.RunMetadata{
		Name:      e.cfg.Name,
		Timestamp: start,
		Seed:      e.cfg.Seed,
		Frames:    n,
		Worlds:    len(s.Worlds()),
		Live:      s.Count(),
		Pooled:    s.PoolSize(""),
		Fallbacks: s.Fallbacks(),
		Elapsed:   elapsed,
		Metrics:   e.collector.Summary(),
	}
	if e.recorder != nil {
		meta.Recorded = e.recorder.Frames()
	}

	res := &Result{Meta: meta, Rows: e.collector.Rows()}
	if e.run != nil {
		res.ID = e.run.ID
		res.Meta.ID = e.run.ID
		// Close runs even when the stats write fails.
		if err := errors.Join(e.run.AppendStats(res.Rows), e.run.Close(meta)); err != nil {
			return res, err
		}
	}

	e.log.Info("run finished",
		zap.String("name", e.cfg.Name),
		zap.Int("frames", n),
		zap.Int("live", meta.Live),
		zap.Duration("elapsed", elapsed),
	)
	return res, runErr
}
