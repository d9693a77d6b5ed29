package core

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// HardwareProfile holds the dynamic-power constants of a processor
type HardwareProfile struct {
	Kappa        float64 // effective switched capacitance
	CPUFrequency float64 // Hz
}

// computationEnergy is κ·f²·D·C
func (h HardwareProfile) computationEnergy(t Task) float64 {
	return h.Kappa * h.CPUFrequency * h.CPUFrequency * t.DataSize * t.ComputationIntensity
}

// EnergyParams holds the constants of the energy equations
type EnergyParams struct {
	UAV               HardwareProfile
	IoT               HardwareProfile
	TransmissionPower float64 // watts
	NominalDataRate   float64 // bits per second
}

// EnergyModel converts decisions into joules and keeps per-entity running
// totals. It is not safe for concurrent use.
type EnergyModel struct {
	params    EnergyParams
	uavEnergy map[int]float64
	iotEnergy map[int]float64
}

// NewEnergyModel creates an energy model with zeroed accumulators for the
// given UAV and device ids
func NewEnergyModel(params EnergyParams, uavIDs, deviceIDs []int) *EnergyModel {
	m := &EnergyModel{
		params:    params,
		uavEnergy: make(map[int]float64, len(uavIDs)),
		iotEnergy: make(map[int]float64, len(deviceIDs)),
	}
	for _, id := range uavIDs {
		m.uavEnergy[id] = 0
	}
	for _, id := range deviceIDs {
		m.iotEnergy[id] = 0
	}
	return m
}

// Params returns the constants the model was built with
func (m *EnergyModel) Params() EnergyParams {
	return m.params
}

// UAVComputationEnergy is the energy a UAV spends executing the task. The
// fleet is homogeneous so the executing UAV does not matter.
func (m *EnergyModel) UAVComputationEnergy(t Task) float64 {
	return m.params.UAV.computationEnergy(t)
}

// IoTComputationEnergy is the energy a device spends executing the task itself
func (m *EnergyModel) IoTComputationEnergy(t Task) float64 {
	return m.params.IoT.computationEnergy(t)
}

// IoTTransmissionEnergy is the energy a device spends uploading the task at
// the nominal data rate
func (m *EnergyModel) IoTTransmissionEnergy(t Task) float64 {
	return m.params.TransmissionPower * (t.DataSize / m.params.NominalDataRate)
}

// ApplyDecision charges one decision to the accumulators. Applying the same
// decision twice charges it twice.
func (m *EnergyModel) ApplyDecision(d Decision) {
	if d.Offloaded {
		m.uavEnergy[d.UAVID] += m.UAVComputationEnergy(d.Task)
		m.iotEnergy[d.DeviceID] += m.IoTTransmissionEnergy(d.Task)
		return
	}
	m.iotEnergy[d.DeviceID] += m.IoTComputationEnergy(d.Task)
}

// ApplyDecisions charges decisions in order
func (m *EnergyModel) ApplyDecisions(decisions []Decision) {
	for _, d := range decisions {
		m.ApplyDecision(d)
	}
}

// UAVEnergy returns the cumulative computation energy of one UAV
func (m *EnergyModel) UAVEnergy(id int) float64 {
	return m.uavEnergy[id]
}

// DeviceEnergy returns the cumulative energy of one device
func (m *EnergyModel) DeviceEnergy(id int) float64 {
	return m.iotEnergy[id]
}

// UAVTotals returns a copy of the UAV accumulators
func (m *EnergyModel) UAVTotals() map[int]float64 {
	return copyTotals(m.uavEnergy)
}

// DeviceTotals returns a copy of the device accumulators
func (m *EnergyModel) DeviceTotals() map[int]float64 {
	return copyTotals(m.iotEnergy)
}

// TotalUAVEnergy sums all UAV accumulators
func (m *EnergyModel) TotalUAVEnergy() float64 {
	return sumTotals(m.uavEnergy)
}

// TotalDeviceEnergy sums all device accumulators
func (m *EnergyModel) TotalDeviceEnergy() float64 {
	return sumTotals(m.iotEnergy)
}

// TotalEnergy sums every accumulator
func (m *EnergyModel) TotalEnergy() float64 {
	return m.TotalUAVEnergy() + m.TotalDeviceEnergy()
}

func copyTotals(src map[int]float64) map[int]float64 {
	out := make(map[int]float64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// sumTotals adds values in id order so repeated calls give bit-identical sums
func sumTotals(src map[int]float64) float64 {
	ids := make([]int, 0, len(src))
	for id := range src {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	values := make([]float64, len(ids))
	for i, id := range ids {
		values[i] = src[id]
	}
	return floats.Sum(values)
}
