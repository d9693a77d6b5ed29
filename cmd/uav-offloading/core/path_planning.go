package core

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// PathPlanner moves each UAV toward the device that most recently achieved
// the best offloading efficiency
type PathPlanner struct {
	AreaSize     float64
	FlyingHeight float64
	MaxSpeed     float64 // meters per slot
	rng          *rand.Rand
}

// NewPathPlanner creates a planner. rng is only used while no efficiency
// signal exists yet.
func NewPathPlanner(areaSize, flyingHeight, maxSpeed float64, rng *rand.Rand) *PathPlanner {
	return &PathPlanner{
		AreaSize:     areaSize,
		FlyingHeight: flyingHeight,
		MaxSpeed:     maxSpeed,
		rng:          rng,
	}
}

// Next returns the UAV position after one slot
func (p *PathPlanner) Next(uav Position, devices []*IoTDevice, snapshot EfficiencySnapshot) Position {
	target, ok := BestTarget(devices, snapshot)
	if !ok {
		target = Position{
			X: p.rng.Float64() * p.AreaSize,
			Y: p.rng.Float64() * p.AreaSize,
			Z: p.FlyingHeight,
		}
	}
	return MoveTowards(uav, target, p.MaxSpeed)
}

// BestTarget returns the current position of the device with the highest
// snapshot efficiency. devices must be in ascending id order; the first
// device wins a tie. Snapshot ids without a device are skipped.
func BestTarget(devices []*IoTDevice, snapshot EfficiencySnapshot) (Position, bool) {
	var best *IoTDevice
	bestEfficiency := 0.0

	for _, d := range devices {
		eff, ok := snapshot[d.ID]
		if !ok {
			continue
		}
		if best == nil || eff > bestEfficiency {
			best = d
			bestEfficiency = eff
		}
	}

	if best == nil {
		return Position{}, false
	}
	return best.Position, true
}

// MoveTowards steps from current toward target by at most maxSpeed
func MoveTowards(current, target Position, maxSpeed float64) Position {
	delta := r3.Sub(target, current)
	distance := r3.Norm(delta)

	if distance == 0 || distance <= maxSpeed {
		return target
	}

	return r3.Add(current, r3.Scale(maxSpeed/distance, delta))
}
