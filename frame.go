package orrery

// BodyState is what a renderer receives for one body.
type BodyState struct {
	Name      string     `json:"name"`
	Texture   string     `json:"texture,omitempty"`
	Radius    float64    `json:"radius"`
	Position  [3]float64 `json:"position"`
	RotationY float64    `json:"rotationY"`
}

// Frame is the state of every body after one tick.
type Frame struct {
	Tick   uint64      `json:"tick"`
	Bodies []BodyState `json:"bodies"`
}

// Body returns the state of the named body.
func (f Frame) Body(name string) (BodyState, bool) {
	for _, b := range f.Bodies {
		if b.Name == name {
			return b, true
		}
	}
	return BodyState{}, false
}

// Renderer consumes one frame per tick. Errors are logged by the engine and otherwise ignored.
type Renderer interface {
	Render(f Frame) error
}

// RendererFunc adapts a function to a Renderer.
type RendererFunc func(f Frame) error

// Render implements the Renderer interface.
func (fn RendererFunc) Render(f Frame) error {
	return fn(f)
}
