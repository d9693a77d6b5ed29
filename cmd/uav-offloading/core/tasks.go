package core

import (
	"math/rand"
)

// TaskParams controls the stochastic task generator
type TaskParams struct {
	Probability  float64
	DataSizeMin  float64 // megabits
	DataSizeMax  float64
	IntensityMin float64 // cycles per bit
	IntensityMax float64
	DeadlineMin  int // slots after creation
	DeadlineMax  int
}

// TaskGenerator emits at most one task per device per slot
type TaskGenerator struct {
	params TaskParams
	rng    *rand.Rand
}

// NewTaskGenerator creates a generator drawing from rng
func NewTaskGenerator(params TaskParams, rng *rand.Rand) *TaskGenerator {
	return &TaskGenerator{params: params, rng: rng}
}

// Generate draws the tasks of one slot. The result follows device order.
func (g *TaskGenerator) Generate(devices []*IoTDevice, slot int) []Task {
	var tasks []Task

	for _, d := range devices {
		if g.rng.Float64() >= g.params.Probability {
			continue
		}
		tasks = append(tasks, Task{
			DeviceID:             d.ID,
			Position:             d.Position,
			DataSize:             g.uniform(g.params.DataSizeMin, g.params.DataSizeMax),
			ComputationIntensity: g.uniform(g.params.IntensityMin, g.params.IntensityMax),
			Deadline:             slot + g.deadlineOffset(),
			CreatedAt:            slot,
		})
	}

	return tasks
}

func (g *TaskGenerator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func (g *TaskGenerator) deadlineOffset() int {
	span := g.params.DeadlineMax - g.params.DeadlineMin
	if span <= 0 {
		return g.params.DeadlineMin
	}
	return g.params.DeadlineMin + g.rng.Intn(span+1)
}
