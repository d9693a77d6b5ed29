package core

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// OffloadingEngine greedily assigns each task to the covering UAV with the
// best energy efficiency, or keeps it on the device when no UAV covers it.
// It owns the processed-volume utility and the efficiency snapshot.
type OffloadingEngine struct {
	energy         *EnergyModel
	channel        ChannelModel
	coverageRadius float64

	processedVolume float64
	decisionCount   int
	snapshot        EfficiencySnapshot
}

// NewOffloadingEngine creates a decision engine. The energy model is only
// read for its equations, decisions are not applied here.
func NewOffloadingEngine(energy *EnergyModel, channel ChannelModel, coverageRadius float64) *OffloadingEngine {
	return &OffloadingEngine{
		energy:         energy,
		channel:        channel,
		coverageRadius: coverageRadius,
		snapshot:       make(EfficiencySnapshot),
	}
}

// Decide makes one decision per task, in task order
func (e *OffloadingEngine) Decide(tasks []Task, uavs []*UAV) []Decision {
	decisions := make([]Decision, 0, len(tasks))
	for _, t := range tasks {
		d := e.evaluate(t, uavs)
		e.commit(d)
		decisions = append(decisions, d)
	}
	return decisions
}

// DecideConcurrent evaluates tasks on up to workers goroutines and then
// commits them in task order, so the result equals Decide. UAV positions
// must not change while it runs.
func (e *OffloadingEngine) DecideConcurrent(ctx context.Context, tasks []Task, uavs []*UAV, workers int) ([]Decision, error) {
	if workers <= 1 || len(tasks) < 2 {
		return e.Decide(tasks, uavs), nil
	}

	decisions := make([]Decision, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			decisions[i] = e.evaluate(tasks[i], uavs)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("offloading decisions interrupted: %w", err)
	}

	for _, d := range decisions {
		e.commit(d)
	}

	return decisions, nil
}

// evaluate is a pure function of the task, the UAV positions and the
// model constants
func (e *OffloadingEngine) evaluate(t Task, uavs []*UAV) Decision {
	var best *UAV
	bestEfficiency := 0.0

	offloadEnergy := e.energy.UAVComputationEnergy(t) + e.energy.IoTTransmissionEnergy(t)

	for _, u := range uavs {
		if Distance(t.Position, u.Position) > e.coverageRadius {
			continue
		}
		eff := efficiency(t.DataSize, offloadEnergy)
		if best == nil || eff > bestEfficiency {
			best = u
			bestEfficiency = eff
		}
	}

	if best == nil {
		return Decision{
			DeviceID:         t.DeviceID,
			UAVID:            NoUAV,
			Task:             t,
			Offloaded:        false,
			EnergyEfficiency: efficiency(t.DataSize, e.energy.IoTComputationEnergy(t)),
		}
	}

	return Decision{
		DeviceID:         t.DeviceID,
		UAVID:            best.ID,
		Task:             t,
		Offloaded:        true,
		EnergyEfficiency: bestEfficiency,
		ChannelRate:      e.channel.LinkRate(t.Position, best.Position),
	}
}

func (e *OffloadingEngine) commit(d Decision) {
	e.processedVolume += d.Task.DataSize
	e.snapshot[d.DeviceID] = d.EnergyEfficiency
	e.decisionCount++
}

// efficiency is megabits per joule, 0 when no energy is spent
func efficiency(dataSize, energy float64) float64 {
	if energy <= 0 {
		return 0
	}
	return dataSize / energy
}

// ProcessedVolume is the system utility: total megabits decided so far
func (e *OffloadingEngine) ProcessedVolume() float64 {
	return e.processedVolume
}

// DecisionCount is the number of tasks decided so far
func (e *OffloadingEngine) DecisionCount() int {
	return e.decisionCount
}

// Snapshot returns a copy of the latest efficiency per device
func (e *OffloadingEngine) Snapshot() EfficiencySnapshot {
	return e.snapshot.Copy()
}
