package view

import (
	"fmt"
	"math"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/papo1011/orrery"
	"github.com/papo1011/orrery/feeds"
)

const (
	hudRows     = 2
	ringSamples = 180
	tiltedView  = 1.1 // radians
	zoomStep    = 1.25
	yawStep     = 0.1
)

var bodyColors = map[string]tcell.Color{
	"Sun":     tcell.ColorYellow,
	"Mercury": tcell.ColorSilver,
	"Venus":   tcell.ColorOrange,
	"Earth":   tcell.ColorDodgerBlue,
	"Moon":    tcell.ColorWhite,
	"Mars":    tcell.ColorRed,
	"Jupiter": tcell.ColorTan,
	"Saturn":  tcell.ColorKhaki,
	"Uranus":  tcell.ColorLightCyan,
	"Neptune": tcell.ColorBlue,
}

// Terminal draws a top-down (or tilted) view of the engine on a tcell screen.
// Render runs on the engine goroutine, HandleEvent on the input goroutine.
type Terminal struct {
	screen tcell.Screen
	engine *orrery.Engine
	board  *feeds.Board
	extent float64

	mu     sync.Mutex
	camera orrery.Camera
	zoom   float64
}

// NewTerminal returns a terminal view of e. The board may be nil.
func NewTerminal(screen tcell.Screen, e *orrery.Engine, board *feeds.Board) *Terminal {
	extent := e.Extent()
	if extent <= 0 {
		extent = 1
	}
	return &Terminal{screen: screen, engine: e, board: board, extent: extent, zoom: 1}
}

// Zoom returns the current zoom factor.
func (t *Terminal) Zoom() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.zoom
}

// Camera returns the current camera.
func (t *Terminal) Camera() orrery.Camera {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.camera
}

// HandleEvent applies one input event and returns false once the view should close,
// in which case the engine is stopped.
func (t *Terminal) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		t.screen.Sync()
	case *tcell.EventKey:
		t.mu.Lock()
		defer t.mu.Unlock()
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q':
			t.engine.Stop()
			return false
		case ev.Rune() == '+' || ev.Rune() == '=':
			t.zoom *= zoomStep
		case ev.Rune() == '-':
			t.zoom /= zoomStep
		case ev.Rune() == 't':
			if t.camera.Tilt == 0 {
				t.camera.Tilt = tiltedView
			} else {
				t.camera.Tilt = 0
			}
		case ev.Key() == tcell.KeyLeft:
			t.camera.Yaw = math.Mod(t.camera.Yaw-yawStep, 2*math.Pi)
		case ev.Key() == tcell.KeyRight:
			t.camera.Yaw = math.Mod(t.camera.Yaw+yawStep, 2*math.Pi)
		}
	}
	return true
}

// HandleEvents polls the screen until the view is closed or the screen is finalized.
func (t *Terminal) HandleEvents() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil || !t.HandleEvent(ev) {
			return
		}
	}
}

// project returns the screen cell of a scene position.
func (t *Terminal) project(cam orrery.Camera, scale float64, w, h int, R []float64) (int, int) {
	u, v, _ := cam.Project(R)
	// Cells are about twice as tall as they are wide.
	col := float64(w)/2 + u*scale*2
	row := float64(h-hudRows)/2 + v*scale
	return int(math.Round(col)), int(math.Round(row))
}

// Render implements the orrery.Renderer interface.
func (t *Terminal) Render(f orrery.Frame) error {
	w, h := t.screen.Size()
	if w <= 0 || h <= hudRows {
		return fmt.Errorf("terminal too small: %dx%d", w, h)
	}
	t.mu.Lock()
	cam, zoom := t.camera, t.zoom
	t.mu.Unlock()
	scale := zoom * math.Min(float64(w)/4, float64(h-hudRows)/2) / t.extent

	t.screen.Clear()
	ring := tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	for _, b := range t.engine.Bodies() {
		if b.Fixed() || b.Radius < 1 {
			continue
		}
		for _, R := range b.Path(ringSamples) {
			col, row := t.project(cam, scale, w, h, R)
			t.set(col, row, w, h, '·', ring)
		}
	}
	for _, b := range f.Bodies {
		col, row := t.project(cam, scale, w, h, b.Position[:])
		style := tcell.StyleDefault
		if c, ok := bodyColors[b.Name]; ok {
			style = style.Foreground(c)
		}
		glyph := '.'
		if b.Radius >= 1 && b.Name != "" {
			glyph = []rune(b.Name)[0]
		}
		if b.Name == "Sun" {
			glyph = '@'
		}
		t.set(col, row, w, h, glyph, style)
	}

	hud := tcell.StyleDefault.Reverse(true)
	t.text(0, h-2, w, fmt.Sprintf(" %s  tick %s  bodies %d  zoom %.2fx  yaw %.0f°  q quit  +/- zoom  t tilt  ←/→ yaw ",
		t.engine.Table.Name, humanize.Comma(int64(f.Tick)), len(f.Bodies), zoom, orrery.Rad2deg(cam.Yaw)), hud)
	t.text(0, h-1, w, t.feedLine(), tcell.StyleDefault)
	t.screen.Show()
	return nil
}

func (t *Terminal) feedLine() string {
	if t.board == nil {
		return " feeds disabled"
	}
	s := t.board.Snapshot()
	line := fmt.Sprintf(" near-Earth objects today: %d", len(s.NEOs))
	if fb, ok := s.LatestFireball(); ok {
		line += fmt.Sprintf("  latest fireball %s: %s radiated, %.2f kt", humanize.Time(fb.Date), humanize.SI(fb.Energy*1e10, "J"), fb.ImpactE)
	}
	if s.LastError != "" {
		line += "  (stale)"
	}
	return line
}

func (t *Terminal) set(col, row, w, h int, r rune, style tcell.Style) {
	if col < 0 || row < 0 || col >= w || row >= h-hudRows {
		return
	}
	t.screen.SetContent(col, row, r, nil, style)
}

func (t *Terminal) text(col, row, w int, s string, style tcell.Style) {
	for _, r := range s {
		if col >= w {
			return
		}
		t.screen.SetContent(col, row, r, nil, style)
		col++
	}
}
