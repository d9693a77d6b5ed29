package core

import (
	"math"
	"math/rand"
)

// RandomWalk is the bounded ground mobility model of the IoT devices
type RandomWalk struct {
	Step     float64 // maximum displacement per axis per slot
	AreaSize float64
	rng      *rand.Rand
}

// NewRandomWalk creates a random walk drawing from rng
func NewRandomWalk(step, areaSize float64, rng *rand.Rand) *RandomWalk {
	return &RandomWalk{
		Step:     step,
		AreaSize: areaSize,
		rng:      rng,
	}
}

// Next perturbs x and y by U[-step, step], clamps them to the area and pins
// the device to the ground
func (w *RandomWalk) Next(current Position) Position {
	return Position{
		X: clamp(current.X+w.uniform(-w.Step, w.Step), 0, w.AreaSize),
		Y: clamp(current.Y+w.uniform(-w.Step, w.Step), 0, w.AreaSize),
		Z: 0,
	}
}

func (w *RandomWalk) uniform(lo, hi float64) float64 {
	return lo + w.rng.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
