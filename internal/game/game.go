package game

import (
	"context"
	"time"

	"deltaeditor/internal/log"
	"deltaeditor/internal/world"
)

// Game steps a world's scripts without a window, at a fixed frame time.
type Game struct {
	World *world.World
	Frame int

	// Debug timing (ms)
	updateMs float64
}

func New(w *world.World) *Game {
	return &Game{World: w}
}

// Run starts the scene and advances it frames times by deltaTime. It stops
// early when ctx is done and returns ctx's error.
func (g *Game) Run(ctx context.Context, frames int, deltaTime float32) error {
	g.World.Start()
	for range frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		g.Update(deltaTime)
	}
	log.Debug(log.CatWorld, "play finished", "frames", g.Frame, "lastUpdateMs", g.updateMs)
	return nil
}

func (g *Game) Update(deltaTime float32) {
	updateStart := time.Now()
	g.World.Update(deltaTime)
	g.Frame++
	g.updateMs = float64(time.Since(updateStart).Microseconds()) / 1000.0
}

// UpdateMs is the duration of the last Update in milliseconds.
func (g *Game) UpdateMs() float64 {
	return g.updateMs
}
