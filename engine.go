package orrery

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/gonum/floats"
	"golang.org/x/time/rate"
)

// ErrStopped is returned when starting an engine which was already stopped.
var ErrStopped = errors.New("engine stopped")

// Scheduler paces the tick loop: Wait blocks until the next frame is due.
// A *rate.Limiter is a Scheduler.
type Scheduler interface {
	Wait(ctx context.Context) error
}

// NewFrameLimiter returns a scheduler releasing fps frames per second, one at a time.
func NewFrameLimiter(fps float64) *rate.Limiter {
	if fps <= 0 || math.IsInf(fps, 0) || math.IsNaN(fps) {
		fps = FrameRate
	}
	return rate.NewLimiter(rate.Limit(fps), 1)
}

// EngineConfig configures an Engine.
type EngineConfig struct {
	Seed      SeedMode
	Epoch     time.Time // Used by SeedEpoch, defaults to now.
	RandSeed  int64     // Used by SeedRandom and the asteroid belt, defaults to the current time.
	Asteroids AsteroidBelt
	Logger    kitlog.Logger
	Metrics   *Metrics
	Renderers []Renderer
}

// Engine owns the bodies of one view and advances them once per frame.
// Bodies are only touched by the goroutine calling Tick, Frame or Run; Stop may be
// called from anywhere.
type Engine struct {
	Table     Table // Including the generated asteroids.
	bodies    []*Body
	byName    map[string]*Body
	flagged   map[string]bool // RandomPhase rows, asteroids included.
	randomAll bool            // The view's own table flags no row.
	conf      EngineConfig
	src       *rand.Rand
	logger    kitlog.Logger
	ticks     uint64
	running   atomic.Bool
	stopChan  chan struct{}
	stopOnce  sync.Once
	renderers []string
}

// NewEngine builds the bodies of the table (plus the configured asteroids) ordered parents first.
func NewEngine(t Table, conf EngineConfig) (*Engine, error) {
	if conf.RandSeed == 0 {
		conf.RandSeed = time.Now().UnixNano()
	}
	if conf.Epoch.IsZero() {
		conf.Epoch = time.Now().UTC()
	}
	if conf.Logger == nil {
		conf.Logger = kitlog.NewNopLogger()
	}
	src := rand.New(rand.NewSource(conf.RandSeed))
	asteroids, err := conf.Asteroids.WithDefaults(t).Generate(src)
	if err != nil {
		return nil, err
	}
	table := t
	table.Bodies = append(append(make([]BodySpec, 0, len(t.Bodies)+len(asteroids)), t.Bodies...), asteroids...)
	bodies, err := table.Build()
	if err != nil {
		return nil, err
	}
	e := &Engine{
		Table:    table,
		bodies:   bodies,
		byName:   make(map[string]*Body, len(bodies)),
		conf:     conf,
		src:      src,
		logger:   kitlog.With(conf.Logger, "table", t.Name),
		stopChan: make(chan struct{}),
	}
	for _, b := range bodies {
		e.byName[b.Name] = b
	}
	e.randomAll = true
	for _, spec := range t.Bodies {
		if spec.RandomPhase {
			e.randomAll = false
		}
	}
	e.flagged = make(map[string]bool)
	for _, spec := range table.Bodies {
		if spec.RandomPhase {
			e.flagged[spec.Name] = true
		}
	}
	for _, r := range conf.Renderers {
		e.renderers = append(e.renderers, fmt.Sprintf("%T", r))
	}
	e.logger.Log("level", "info", "subsys", "engine", "bodies", len(bodies), "asteroids", len(asteroids), "seed", conf.Seed)
	return e, nil
}

// AddRenderer appends a renderer. It must be called from the goroutine driving the engine.
func (e *Engine) AddRenderer(r Renderer) {
	e.conf.Renderers = append(e.conf.Renderers, r)
	e.renderers = append(e.renderers, fmt.Sprintf("%T", r))
}

// Start seeds the initial phase angles and arms the engine. Starting a running engine does nothing.
func (e *Engine) Start() error {
	select {
	case <-e.stopChan:
		return ErrStopped
	default:
	}
	if e.running.Load() {
		return nil
	}
	seedPhases(e.bodies, e.conf.Seed, e.flagged, e.randomAll, e.conf.Epoch, e.src)
	e.conf.Metrics.SetBodies(len(e.bodies))
	e.running.Store(true)
	e.logger.Log("level", "info", "subsys", "engine", "status", "started")
	return nil
}

// Stop disarms the engine for good: later frames are ignored and Run returns.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		e.running.Store(false)
		close(e.stopChan)
		e.logger.Log("level", "info", "subsys", "engine", "status", "stopped")
	})
}

// Running returns whether frames currently advance the bodies.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Frame is the per-refresh callback. It ticks only while the engine is running and
// returns whether it did.
func (e *Engine) Frame() bool {
	if !e.running.Load() {
		return false
	}
	e.Tick()
	return true
}

// Tick advances every body by one tick, parents before their children, and hands
// the resulting frame to every renderer. Renderer failures are logged and ignored.
// Tick does not need Start, which makes it usable for headless stepping, but it is
// inert once the engine is stopped.
func (e *Engine) Tick() {
	select {
	case <-e.stopChan:
		return
	default:
	}
	start := time.Now()
	for _, b := range e.bodies {
		b.Advance()
	}
	e.ticks++
	if len(e.conf.Renderers) > 0 {
		f := e.Snapshot()
		for i, r := range e.conf.Renderers {
			if err := r.Render(f); err != nil {
				e.logger.Log("level", "warning", "subsys", "render", "renderer", e.renderers[i], "tick", e.ticks, "err", err)
				e.conf.Metrics.RecordRenderError(e.renderers[i])
			}
		}
	}
	e.conf.Metrics.RecordTick(time.Since(start))
}

// Run starts the engine if needed and calls Frame each time sched releases a frame,
// until Stop is called or ctx is done. The engine is stopped when Run returns.
func (e *Engine) Run(ctx context.Context, sched Scheduler) error {
	if err := e.Start(); err != nil {
		return err
	}
	defer e.Stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-e.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()
	for {
		if err := sched.Wait(ctx); err != nil {
			select {
			case <-e.stopChan:
				return nil
			default:
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if !e.Frame() {
			return nil
		}
	}
}

// Ticks returns the number of ticks performed.
func (e *Engine) Ticks() uint64 {
	return e.ticks
}

// Bodies returns the bodies in update order.
func (e *Engine) Bodies() []*Body {
	return e.bodies
}

// Body returns the named body or nil.
func (e *Engine) Body(name string) *Body {
	return e.byName[name]
}

// Snapshot returns the current frame.
func (e *Engine) Snapshot() Frame {
	f := Frame{Tick: e.ticks, Bodies: make([]BodyState, len(e.bodies))}
	for i, b := range e.bodies {
		f.Bodies[i] = b.State()
	}
	return f
}

// Extent returns how far from the origin any body can reach, radius included.
func (e *Engine) Extent() float64 {
	if len(e.bodies) == 0 {
		return 0
	}
	reaches := make([]float64, len(e.bodies))
	for i, b := range e.bodies {
		reaches[i] = b.Radius
		for cur := b; cur != nil; cur = cur.Parent {
			reaches[i] += math.Max(cur.a, cur.b)
		}
	}
	return floats.Max(reaches)
}
