// Package record writes per-frame entity and world data over an inclusive
// frame range as JSON lines.
package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/swarmsim/internal/sim"
	"github.com/san-kum/swarmsim/internal/vector"
)

var ErrUnknownField = errors.New("record: unknown field")

const DefaultPrecision = 4

// ItemFields and WorldFields are the allow-lists of recordable fields.
var (
	ItemFields = []string{
		"id", "name", "width", "height", "scale", "location", "velocity",
		"angle", "minSpeed", "maxSpeed", "hue", "saturation", "lightness",
		"color", "opacity",
	}
	WorldFields = []string{"id", "name", "width", "height", "resolution", "colorMode"}
)

type Options struct {
	// Start and End bound the recorded frames, both inclusive. A negative
	// End records until the simulation stops.
	Start int
	End   int

	Precision   int
	ItemFields  []string
	WorldFields []string

	// OnComplete runs once after End has been written. Leaving it nil is
	// an error that surfaces from the step that records End.
	OnComplete func(frames int) error

	Logger *zap.Logger
}

// Frame is one recorded line.
type Frame struct {
	Frame  int              `json:"frame"`
	Worlds []map[string]any `json:"worlds"`
	Items  []map[string]any `json:"items"`
}

var _ sim.Observer = (*Recorder)(nil)

// Recorder is a sim.Observer.
type Recorder struct {
	opts    Options
	enc     *json.Encoder
	log     *zap.Logger
	scale   float64
	written int
	started bool
	done    bool
}

func New(w io.Writer, opts Options) (*Recorder, error) {
	if opts.Start < 0 {
		opts.Start = 0
	}
	if opts.End >= 0 && opts.End < opts.Start {
		return nil, fmt.Errorf("record: end frame %d before start %d", opts.End, opts.Start)
	}
	if opts.Precision <= 0 {
		opts.Precision = DefaultPrecision
	}
	if len(opts.ItemFields) == 0 {
		opts.ItemFields = ItemFields
	}
	if len(opts.WorldFields) == 0 {
		opts.WorldFields = WorldFields
	}
	if err := allowed(opts.ItemFields, ItemFields); err != nil {
		return nil, err
	}
	if err := allowed(opts.WorldFields, WorldFields); err != nil {
		return nil, err
	}
	if opts.OnComplete == nil {
		opts.OnComplete = func(int) error { return sim.ErrHookNotImplemented }
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{
		opts:  opts,
		enc:   json.NewEncoder(w),
		log:   log,
		scale: math.Pow(10, float64(opts.Precision)),
	}, nil
}

func allowed(fields, list []string) error {
	for _, f := range fields {
		ok := false
		for _, a := range list {
			if f == a {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, f)
		}
	}
	return nil
}

func (r *Recorder) Frames() int { return r.written }
func (r *Recorder) Done() bool  { return r.done }

// OnFrame records the frame that just finished stepping.
func (r *Recorder) OnFrame(s *sim.Simulation) error {
	frame := s.Clock()
	if r.done || frame < r.opts.Start {
		return nil
	}
	if !r.started {
		r.started = true
		r.log.Info("recording started", zap.Int("frame", frame), zap.Int("end", r.opts.End))
	}

	if err := r.enc.Encode(r.build(s, frame)); err != nil {
		return fmt.Errorf("record: frame %d: %w", frame, err)
	}
	r.written++

	if r.opts.End >= 0 && frame >= r.opts.End {
		r.done = true
		r.log.Info("recording complete", zap.Int("frames", r.written))
		return r.opts.OnComplete(r.written)
	}
	return nil
}

func (r *Recorder) build(s *sim.Simulation, frame int) Frame {
	out := Frame{
		Frame:  frame,
		Worlds: make([]map[string]any, 0, len(s.Worlds())),
		Items:  make([]map[string]any, 0, s.Count()),
	}
	for i, w := range s.Worlds() {
		m := make(map[string]any, len(r.opts.WorldFields))
		for _, f := range r.opts.WorldFields {
			m[f] = r.worldField(i, w, f)
		}
		out.Worlds = append(out.Worlds, m)
	}
	for _, e := range s.Live() {
		m := make(map[string]any, len(r.opts.ItemFields))
		for _, f := range r.opts.ItemFields {
			m[f] = r.itemField(e, f)
		}
		out.Items = append(out.Items, m)
	}
	return out
}

func (r *Recorder) worldField(i int, w *sim.World, f string) any {
	switch f {
	case "id":
		return i
	case "name":
		return w.Name
	case "width":
		return r.round(w.Width)
	case "height":
		return r.round(w.Height)
	case "resolution":
		return r.round(w.Resolution)
	case "colorMode":
		return string(w.ColorMode)
	}
	return nil
}

func (r *Recorder) itemField(e *sim.Entity, f string) any {
	switch f {
	case "id":
		return e.ID
	case "name":
		return e.Name
	case "width":
		return r.round(e.Width)
	case "height":
		return r.round(e.Height)
	case "scale":
		return r.round(e.Scale)
	case "location":
		return r.vec(e.Location)
	case "velocity":
		return r.vec(e.Velocity)
	case "angle":
		return r.round(e.Angle)
	case "minSpeed":
		return r.round(e.MinSpeed)
	case "maxSpeed":
		return r.round(e.MaxSpeed)
	case "hue":
		return r.round(e.Hue)
	case "saturation":
		return r.round(e.Saturation)
	case "lightness":
		return r.round(e.Lightness)
	case "color":
		return []int{int(e.Color[0]), int(e.Color[1]), int(e.Color[2])}
	case "opacity":
		return r.round(e.Opacity)
	}
	return nil
}

func (r *Recorder) vec(v vector.Vector) map[string]float64 {
	return map[string]float64{"x": r.round(v.X), "y": r.round(v.Y)}
}

func (r *Recorder) round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*r.scale) / r.scale
}

// Read decodes every frame written by a Recorder.
func Read(rd io.Reader) ([]Frame, error) {
	dec := json.NewDecoder(rd)
	frames := make([]Frame, 0)
	for {
		var f Frame
		if err := dec.Decode(&f); err != nil {
			if errors.Is(err, io.EOF) {
				return frames, nil
			}
			return frames, fmt.Errorf("record: decode frame %d: %w", len(frames), err)
		}
		frames = append(frames, f)
	}
}
